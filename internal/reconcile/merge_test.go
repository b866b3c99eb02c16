package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/comparely/catalog-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCategory_ShallowOverride(t *testing.T) {
	dst := &types.Category{
		ID:    "cat_1",
		Path:  types.StringPtr("/a"),
		Name:  types.StringPtr("Old"),
		URL:   types.StringPtr("http://old"),
		Extra: types.Fields{"keep": json.RawMessage(`1`), "replace": json.RawMessage(`"x"`)},
	}
	src := &types.Category{
		ID:    "cat_other",
		Path:  types.StringPtr("/a"),
		Name:  types.StringPtr("New"),
		Extra: types.Fields{"replace": json.RawMessage(`"y"`), "added": json.RawMessage(`true`)},
	}

	require.NoError(t, MergeCategory(dst, src))
	assert.Equal(t, types.ID("cat_1"), dst.ID)
	assert.Equal(t, "New", *dst.Name)
	assert.Equal(t, "http://old", *dst.URL)
	assert.JSONEq(t, `1`, string(dst.Extra["keep"]))
	assert.JSONEq(t, `"y"`, string(dst.Extra["replace"]))
	assert.JSONEq(t, `true`, string(dst.Extra["added"]))
	assert.Equal(t, types.ID("cat_other"), src.ID)
}

func TestMergeCategory_EmptyProductsKeepStored(t *testing.T) {
	dst := &types.Category{Path: types.StringPtr("/a"), Products: []types.Product{{ID: "p1"}}}
	require.NoError(t, MergeCategory(dst, &types.Category{Path: types.StringPtr("/a")}))
	assert.Len(t, dst.Products, 1)
}

func TestMergeProduct(t *testing.T) {
	dst := &types.Product{
		ID:           "p1",
		CurrentPrice: types.TextPtr("9.99"),
		Brand:        types.TextPtr("Acme"),
		IsDisplayed:  types.BoolPtr(true),
		Image:        []string{"a.jpg"},
	}
	src := &types.Product{
		ID:           "p1",
		CurrentPrice: types.TextPtr("8.99"),
		IsDisplayed:  types.BoolPtr(false),
		Image:        []string{"b.jpg", "c.jpg"},
	}

	require.NoError(t, MergeProduct(dst, src))
	assert.Equal(t, types.Text("8.99"), *dst.CurrentPrice)
	assert.Equal(t, types.Text("Acme"), *dst.Brand)
	assert.False(t, *dst.IsDisplayed)
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, dst.Image)
}

func TestMergeProduct_AdoptsIDWhenMissing(t *testing.T) {
	dst := &types.Product{URL: types.StringPtr("http://shop/p1")}
	require.NoError(t, MergeProduct(dst, &types.Product{ID: "p1", URL: types.StringPtr("http://shop/p1")}))
	assert.Equal(t, types.ID("p1"), dst.ID)
}

func TestStamp(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &types.Category{}
	stampCategory(c, now)
	assert.True(t, c.LastUpdate.Equal(now))
	assert.True(t, *c.WasUpdated)

	p := &types.Product{}
	stampProduct(p, now)
	assert.True(t, p.LastUpdate.Equal(now))
	assert.True(t, *p.WasUpdated)
}
