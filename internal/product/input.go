package product

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
	"github.com/anuvataru/jewelry-catalog/internal/validation"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// rawValue is one submitted field before validation.
type rawValue struct {
	values  []string
	null    bool
	invalid bool
}

func (r rawValue) first() string {
	if len(r.values) == 0 {
		return ""
	}
	return strings.TrimSpace(r.values[0])
}

// empty is true for JSON null and for an empty form value.
func (r rawValue) empty() bool {
	return r.null || r.first() == ""
}

type payload map[string]rawValue

// readPayload collects the submitted fields from a multipart, urlencoded or
// JSON body. Only fields actually present end up in the map.
func readPayload(c *fiber.Ctx) (payload, error) {
	p := payload{}
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperr.Validation([]apperr.Violation{{Field: "body", Message: "malformed multipart body"}})
		}
		for k, vs := range form.Value {
			p[k] = rawValue{values: vs}
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			r := p[string(k)]
			r.values = append(r.values, string(v))
			p[string(k)] = r
		})
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		body := c.Body()
		if len(bytes.TrimSpace(body)) == 0 {
			return p, nil
		}
		var m map[string]any
		dec := jsonAPI.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, apperr.Validation([]apperr.Violation{{Field: "body", Message: "malformed JSON body"}})
		}
		for k, v := range m {
			p[k] = jsonValue(v)
		}
	case len(c.Body()) == 0:
	default:
		return nil, apperr.New(apperr.UnsupportedMediaType, "unsupported content type")
	}
	return p, nil
}

func jsonValue(v any) rawValue {
	switch t := v.(type) {
	case nil:
		return rawValue{null: true}
	case string:
		return rawValue{values: []string{t}}
	case bool:
		return rawValue{values: []string{strconv.FormatBool(t)}}
	case json.Number:
		return rawValue{values: []string{t.String()}}
	case float64:
		return rawValue{values: []string{strconv.FormatFloat(t, 'f', -1, 64)}}
	case []any:
		r := rawValue{values: make([]string, 0, len(t))}
		for _, e := range t {
			ev := jsonValue(e)
			if ev.null || ev.invalid || len(ev.values) != 1 {
				return rawValue{invalid: true}
			}
			r.values = append(r.values, ev.values[0])
		}
		return r
	}
	// named string types, e.g. the decoder's own number type
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rawValue{values: []string{rv.String()}}
	}
	return rawValue{invalid: true}
}

// fieldParser turns a payload into an UpdateInput, recording every violation.
// The same rules apply on create and update; create additionally requires
// name, price and category.
type fieldParser struct {
	p payload
	v *validation.Collector
}

func (fp fieldParser) get(field string) (rawValue, bool) {
	r, ok := fp.p[field]
	if ok && r.invalid {
		fp.v.Add(field, field+" is invalid")
		return rawValue{}, false
	}
	return r, ok
}

func (fp fieldParser) requiredText(field string, max int) Field[string] {
	r, ok := fp.get(field)
	if !ok {
		return Field[string]{}
	}
	s := r.first()
	fp.v.Var(field, s, "required,max="+strconv.Itoa(max))
	return Some(s)
}

func (fp fieldParser) optionalText(field string, max int) Field[*string] {
	r, ok := fp.get(field)
	if !ok {
		return Field[*string]{}
	}
	if r.empty() {
		return Some[*string](nil)
	}
	s := r.first()
	fp.v.Var(field, s, "max="+strconv.Itoa(max))
	return Some(&s)
}

// Column limits: price is DECIMAL(10,2), weight DECIMAL(8,2), stock an INTEGER.
const (
	priceDigits  = 8
	weightDigits = 6
	maxStock     = math.MaxInt32
)

// nonNegativeDecimal parses a money-like value with at most two decimal
// places and fewer than intDigits digits before the point.
func (fp fieldParser) nonNegativeDecimal(field string, intDigits int32) (decimal.Decimal, bool) {
	r, _ := fp.get(field)
	d, err := decimal.NewFromString(r.first())
	if err != nil || d.IsNegative() {
		fp.v.Add(field, field+" must be a non-negative number")
		return decimal.Decimal{}, false
	}
	if !d.Equal(d.Round(2)) {
		fp.v.Add(field, field+" must have at most 2 decimal places")
		return decimal.Decimal{}, false
	}
	if limit := decimal.New(1, intDigits); d.GreaterThanOrEqual(limit) {
		fp.v.Add(field, field+" must be less than "+limit.String())
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}

func (fp fieldParser) price() Field[decimal.Decimal] {
	if r, ok := fp.get("price"); !ok {
		return Field[decimal.Decimal]{}
	} else if r.empty() {
		fp.v.Add("price", "price is required")
		return Field[decimal.Decimal]{}
	}
	d, ok := fp.nonNegativeDecimal("price", priceDigits)
	if !ok {
		return Field[decimal.Decimal]{}
	}
	return Some(d)
}

func (fp fieldParser) weight() Field[decimal.NullDecimal] {
	r, ok := fp.get("weight")
	if !ok {
		return Field[decimal.NullDecimal]{}
	}
	if r.empty() {
		return Some(decimal.NullDecimal{})
	}
	d, ok := fp.nonNegativeDecimal("weight", weightDigits)
	if !ok {
		return Field[decimal.NullDecimal]{}
	}
	return Some(decimal.NewNullDecimal(d))
}

func (fp fieldParser) material() Field[string] {
	r, ok := fp.get("material")
	if !ok {
		return Field[string]{}
	}
	if r.empty() {
		return Some(DefaultMaterial)
	}
	s := r.first()
	fp.v.Var("material", s, "max=100")
	return Some(s)
}

func (fp fieldParser) boolean(field string) Field[bool] {
	r, ok := fp.get(field)
	if !ok {
		return Field[bool]{}
	}
	b, err := validation.ParseBool(r.first())
	if r.null || err != nil {
		fp.v.Add(field, field+" must be a boolean")
		return Field[bool]{}
	}
	return Some(b)
}

func (fp fieldParser) stock(create bool) Field[int] {
	r, ok := fp.get("stock_quantity")
	if !ok {
		return Field[int]{}
	}
	if create && r.empty() {
		return Field[int]{}
	}
	n, err := strconv.Atoi(r.first())
	if r.null || err != nil || n < 0 {
		fp.v.Add("stock_quantity", "stock_quantity must be a non-negative integer")
		return Field[int]{}
	}
	if n > maxStock {
		fp.v.Add("stock_quantity", "stock_quantity must be at most "+strconv.Itoa(maxStock))
		return Field[int]{}
	}
	return Some(n)
}

// gallery accepts a JSON array, a single form value holding a JSON array, or
// a repeated form field.
func (fp fieldParser) gallery() Field[[]string] {
	r, ok := fp.get("gallery_images")
	if !ok {
		return Field[[]string]{}
	}
	if r.null {
		return Some([]string{})
	}
	values := r.values
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var list []string
		if err := jsonAPI.UnmarshalFromString(values[0], &list); err != nil {
			fp.v.Add("gallery_images", "gallery_images must be a list of image references")
			return Field[[]string]{}
		}
		values = list
	}
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return Some(out)
}

func (fp fieldParser) parse(create bool) UpdateInput {
	return UpdateInput{
		Name:          fp.requiredText("name", 200),
		Description:   fp.optionalText("description", 5000),
		Price:         fp.price(),
		Category:      fp.requiredText("category", 100),
		Material:      fp.material(),
		Weight:        fp.weight(),
		Dimensions:    fp.optionalText("dimensions", 200),
		GalleryImages: fp.gallery(),
		IsFeatured:    fp.boolean("is_featured"),
		IsVisible:     fp.boolean("is_visible"),
		StockQuantity: fp.stock(create),
	}
}

// parseCreate validates a create payload and fills in defaults.
func parseCreate(p payload) (CreateInput, error) {
	var v validation.Collector
	u := fieldParser{p: p, v: &v}.parse(true)

	for _, f := range []string{"name", "price", "category"} {
		if _, ok := p[f]; !ok {
			v.Add(f, f+" is required")
		}
	}
	if err := v.Err(); err != nil {
		return CreateInput{}, err
	}

	in := CreateInput{
		Name:          u.Name.Value,
		Description:   u.Description.Value,
		Price:         u.Price.Value,
		Category:      u.Category.Value,
		Material:      DefaultMaterial,
		Weight:        u.Weight.Value,
		Dimensions:    u.Dimensions.Value,
		GalleryImages: []string{},
		IsFeatured:    u.IsFeatured.Value,
		IsVisible:     true,
		StockQuantity: 1,
	}
	if u.Material.Set {
		in.Material = u.Material.Value
	}
	if u.GalleryImages.Set {
		in.GalleryImages = u.GalleryImages.Value
	}
	if u.IsVisible.Set {
		in.IsVisible = u.IsVisible.Value
	}
	if u.StockQuantity.Set {
		in.StockQuantity = u.StockQuantity.Value
	}
	return in, nil
}

// parseUpdate validates a partial update. Absent fields stay unset.
func parseUpdate(p payload) (UpdateInput, error) {
	var v validation.Collector
	u := fieldParser{p: p, v: &v}.parse(false)
	if err := v.Err(); err != nil {
		return UpdateInput{}, err
	}
	return u, nil
}

// parseVisibility reads the required is_visible flag.
func parseVisibility(p payload) (bool, error) {
	var v validation.Collector
	if _, ok := p["is_visible"]; !ok {
		v.Add("is_visible", "is_visible is required")
		return false, v.Err()
	}
	f := fieldParser{p: p, v: &v}.boolean("is_visible")
	if err := v.Err(); err != nil {
		return false, err
	}
	return f.Value, nil
}
