package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID is a product or category identifier. Scraped batches carry ids as JSON
// strings or numbers; both decode into the same string form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(Canonical(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Empty reports whether the id carries no value after canonicalisation.
func (id ID) Empty() bool {
	return Canonical(string(id)) == ""
}

// Canonical returns the comparison form of an identity value: trimmed and
// NFC normalized.
func Canonical(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// canonicalPtr canonicalises a present value in place.
func canonicalPtr(s *string) {
	if s != nil {
		*s = Canonical(*s)
	}
}
