package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Text is a scraped scalar kept in string form. Scrapers emit prices and
// counts as strings or numbers depending on the source page; both decode.
type Text string

// UnmarshalJSON accepts a JSON string, number or boolean.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*t = Text(fmt.Sprint(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected a scalar value: %w", err)
		}
		*t = Text(n.String())
	}
	return nil
}

// Product is one product entry embedded in a category. Optional fields are
// pointers so a record that omits a field never clears a stored value.
type Product struct {
	ID           ID      `json:"id,omitempty" jsonschema:"description=Product identifier; JSON string or number"`
	URL          *string `json:"url,omitempty"`
	CategoryPath *string `json:"category_path,omitempty" jsonschema:"description=Path of the owning category"`
	Category     *string `json:"category,omitempty" jsonschema:"description=Legacy owning category name"`

	Name                  *Text    `json:"name,omitempty"`
	Available             *Text    `json:"available,omitempty"`
	AverageCustomerReview *Text    `json:"average_customer_review,omitempty"`
	FirstAvailable        *Text    `json:"first_available,omitempty"`
	ASIN                  *Text    `json:"asin,omitempty"`
	Brand                 *Text    `json:"brand,omitempty"`
	ItemModelNumber       *Text    `json:"item_model_number,omitempty"`
	Reviews               []string `json:"reviews,omitempty"`
	RatingChange          *Text    `json:"rating_change,omitempty"`
	Video                 *Text    `json:"video,omitempty"`
	CurrentPrice          *Text    `json:"current_price,omitempty"`
	CountCustomerReviews  *Text    `json:"count_customer_reviews,omitempty"`
	PreviousPrice         *Text    `json:"previous_price,omitempty"`
	Image                 []string `json:"image,omitempty"`
	IsDisplayed           *bool    `json:"isDisplayed,omitempty"`
	ExtraField1           *Text    `json:"extraField1,omitempty"`
	ExtraField2           *Text    `json:"extraField2,omitempty"`
	ExtraField3           *Text    `json:"extraField3,omitempty"`
	ExtraField4           *Text    `json:"extraField4,omitempty"`

	WasUpdated *bool      `json:"wasUpdated,omitempty"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`

	Extra Fields `json:"-"`
}

// Category is a persisted category document with its embedded products.
type Category struct {
	ID         ID         `json:"id,omitempty"`
	URL        *string    `json:"url,omitempty"`
	Path       *string    `json:"path,omitempty" jsonschema:"description=Hierarchical category path; authoritative identity"`
	Name       *string    `json:"name,omitempty"`
	Products   []Product  `json:"products,omitempty"`
	WasUpdated *bool      `json:"wasUpdated,omitempty"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`

	Extra Fields `json:"-"`
}

type (
	productJSON  Product
	categoryJSON Category
)

var (
	productKeys  = jsonKeys(reflect.TypeOf(productJSON{}))
	categoryKeys = jsonKeys(reflect.TypeOf(categoryJSON{}))
)

func (p *Product) UnmarshalJSON(data []byte) error {
	var v productJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, productKeys)
	if err != nil {
		return err
	}
	*p = Product(v)
	p.Extra = extra
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(productJSON(p), p.Extra)
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var v categoryJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraFields(data, categoryKeys)
	if err != nil {
		return err
	}
	*c = Category(v)
	c.Extra = extra
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(categoryJSON(c), c.Extra)
}

// NormalizeIdentity canonicalises the fields used to match the category.
func (c *Category) NormalizeIdentity() {
	c.ID = ID(Canonical(string(c.ID)))
	canonicalPtr(c.Path)
	canonicalPtr(c.URL)
	canonicalPtr(c.Name)
}

// NormalizeIdentity canonicalises the fields used to match the product and
// its owning category.
func (p *Product) NormalizeIdentity() {
	p.ID = ID(Canonical(string(p.ID)))
	canonicalPtr(p.URL)
	canonicalPtr(p.CategoryPath)
	canonicalPtr(p.Category)
}

// FindProduct returns the embedded product with the given id.
func (c *Category) FindProduct(id string) *Product {
	id = Canonical(id)
	for i := range c.Products {
		if string(c.Products[i].ID) == id {
			return &c.Products[i]
		}
	}
	return nil
}

// Label returns the most descriptive identity the category carries, for logs.
func (c *Category) Label() string {
	switch {
	case c.Path != nil && *c.Path != "":
		return *c.Path
	case c.URL != nil && *c.URL != "":
		return *c.URL
	case c.Name != nil && *c.Name != "":
		return *c.Name
	}
	return string(c.ID)
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// TextPtr returns a pointer to the given text value
func TextPtr(s string) *Text {
	t := Text(s)
	return &t
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}
