package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

// form builds a payload the way a urlencoded or multipart body would.
func form(kv ...string) payload {
	p := payload{}
	for i := 0; i+1 < len(kv); i += 2 {
		r := p[kv[i]]
		r.values = append(r.values, kv[i+1])
		p[kv[i]] = r
	}
	return p
}

func violationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.ValidationFailed, ae.Kind)
	out := map[string]string{}
	for _, v := range ae.Violations {
		out[v.Field] = v.Message
	}
	return out
}

func TestParseCreateDefaults(t *testing.T) {
	in, err := parseCreate(form("name", "Moon Ring", "price", "49.90", "category", "Rings"))
	require.NoError(t, err)

	assert.Equal(t, "Moon Ring", in.Name)
	assert.True(t, decimal.RequireFromString("49.9").Equal(in.Price))
	assert.Equal(t, DefaultMaterial, in.Material)
	assert.True(t, in.IsVisible)
	assert.False(t, in.IsFeatured)
	assert.Equal(t, 1, in.StockQuantity)
	assert.Equal(t, []string{}, in.GalleryImages)
	assert.Nil(t, in.Description)
	assert.False(t, in.Weight.Valid)
}

func TestParseCreateCollectsEveryViolation(t *testing.T) {
	_, err := parseCreate(form("price", "-1", "is_featured", "maybe", "weight", "heavy", "stock_quantity", "-3"))
	got := violationFields(t, err)

	assert.Equal(t, "name is required", got["name"])
	assert.Equal(t, "category is required", got["category"])
	assert.Equal(t, "price must be a non-negative number", got["price"])
	assert.Equal(t, "is_featured must be a boolean", got["is_featured"])
	assert.Equal(t, "weight must be a non-negative number", got["weight"])
	assert.Equal(t, "stock_quantity must be a non-negative integer", got["stock_quantity"])
}

func TestParseCreateRejectsBlankRequiredFields(t *testing.T) {
	_, err := parseCreate(form("name", "  ", "price", "", "category", "Rings"))
	got := violationFields(t, err)
	assert.Equal(t, "name is required", got["name"])
	assert.Equal(t, "price is required", got["price"])
	assert.NotContains(t, got, "category")
}

func TestParseCreateEnforcesColumnLimits(t *testing.T) {
	_, err := parseCreate(form(
		"name", "Moon Ring", "category", "Rings",
		"price", "12.345", "weight", "1000000", "stock_quantity", "2147483648",
	))
	got := violationFields(t, err)
	assert.Equal(t, "price must have at most 2 decimal places", got["price"])
	assert.Equal(t, "weight must be less than 1000000", got["weight"])
	assert.Equal(t, "stock_quantity must be at most 2147483647", got["stock_quantity"])

	_, err = parseCreate(form("name", "Moon Ring", "category", "Rings", "price", "123456789012345678901234567890"))
	assert.Equal(t, "price must be less than 100000000", violationFields(t, err)["price"])

	in, err := parseCreate(form(
		"name", "Moon Ring", "category", "Rings",
		"price", "99999999.99", "weight", "999999.990", "stock_quantity", "2147483647",
	))
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", in.Price.String())
	assert.Equal(t, "999999.99", in.Weight.Decimal.String())
	assert.Equal(t, 2147483647, in.StockQuantity)
}

func TestParseCreateBooleansAndGallery(t *testing.T) {
	in, err := parseCreate(form(
		"name", "Star Pendant", "price", "120", "category", "Pendants",
		"is_featured", "YES", "is_visible", "off",
		"gallery_images", `["/uploads/a.png","/uploads/b.png"]`,
	))
	require.NoError(t, err)
	assert.True(t, in.IsFeatured)
	assert.False(t, in.IsVisible)
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.png"}, in.GalleryImages)

	in, err = parseCreate(form(
		"name", "Star Pendant", "price", "120", "category", "Pendants",
		"gallery_images", "/uploads/c.png", "gallery_images", "/uploads/d.png",
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/c.png", "/uploads/d.png"}, in.GalleryImages)
}

func TestParseUpdateOnlySetsSuppliedFields(t *testing.T) {
	u, err := parseUpdate(form("price", "10"))
	require.NoError(t, err)

	assert.True(t, u.Price.Set)
	assert.True(t, decimal.NewFromInt(10).Equal(u.Price.Value))
	assert.False(t, u.Name.Set)
	assert.False(t, u.Description.Set)
	assert.False(t, u.IsVisible.Set)
	assert.False(t, u.GalleryImages.Set)
}

func TestParseUpdateClearsNullableFields(t *testing.T) {
	p := form("description", "", "dimensions", "")
	p["weight"] = rawValue{null: true}

	u, err := parseUpdate(p)
	require.NoError(t, err)
	assert.True(t, u.Description.Set)
	assert.Nil(t, u.Description.Value)
	assert.True(t, u.Dimensions.Set)
	assert.Nil(t, u.Dimensions.Value)
	assert.True(t, u.Weight.Set)
	assert.False(t, u.Weight.Value.Valid)
}

func TestParseUpdateAppliesCreateRules(t *testing.T) {
	p := form("name", "", "is_visible", "maybe", "price", "-1")
	p["is_featured"] = rawValue{null: true}

	_, err := parseUpdate(p)
	got := violationFields(t, err)
	assert.Equal(t, "name is required", got["name"])
	assert.Equal(t, "is_visible must be a boolean", got["is_visible"])
	assert.Equal(t, "is_featured must be a boolean", got["is_featured"])
	assert.Equal(t, "price must be a non-negative number", got["price"])
}

func TestParseVisibility(t *testing.T) {
	v, err := parseVisibility(form("is_visible", "0"))
	require.NoError(t, err)
	assert.False(t, v)

	_, err = parseVisibility(form())
	assert.Equal(t, "is_visible is required", violationFields(t, err)["is_visible"])

	_, err = parseVisibility(form("is_visible", "maybe"))
	assert.Equal(t, "is_visible must be a boolean", violationFields(t, err)["is_visible"])
}

func TestJSONValue(t *testing.T) {
	assert.True(t, jsonValue(nil).null)
	assert.Equal(t, []string{"true"}, jsonValue(true).values)
	assert.Equal(t, []string{"a", "b"}, jsonValue([]any{"a", "b"}).values)
	assert.True(t, jsonValue(map[string]any{"x": 1}).invalid)
	assert.True(t, jsonValue([]any{map[string]any{}}).invalid)
}
