package product

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices and weights go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

const DefaultMaterial = "Silver"

// Product maps to the `products` table. Public and admin responses share this shape.
type Product struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	Category      string              `json:"category"`
	Material      string              `json:"material"`
	Weight        decimal.NullDecimal `json:"weight"`
	Dimensions    *string             `json:"dimensions"`
	ImageURL      *string             `json:"image_url"`
	GalleryImages []string            `json:"gallery_images"`
	IsFeatured    bool                `json:"is_featured"`
	IsVisible     bool                `json:"is_visible"`
	StockQuantity int                 `json:"stock_quantity"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Field is an optional value in a partial update. Set distinguishes "not
// supplied" from a supplied zero value; for nullable columns a Set field with
// a nil/invalid Value clears the column.
type Field[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// CreateInput is a validated create payload.
type CreateInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	Category      string
	Material      string
	Weight        decimal.NullDecimal
	Dimensions    *string
	ImageURL      *string
	GalleryImages []string
	IsFeatured    bool
	IsVisible     bool
	StockQuantity int
}

// UpdateInput is a validated partial update; unset fields are left untouched.
type UpdateInput struct {
	Name          Field[string]
	Description   Field[*string]
	Price         Field[decimal.Decimal]
	Category      Field[string]
	Material      Field[string]
	Weight        Field[decimal.NullDecimal]
	Dimensions    Field[*string]
	ImageURL      Field[*string]
	GalleryImages Field[[]string]
	IsFeatured    Field[bool]
	IsVisible     Field[bool]
	StockQuantity Field[int]
}

// Apply merges the set fields of u into p.
func (u UpdateInput) Apply(p Product) Product {
	if u.Name.Set {
		p.Name = u.Name.Value
	}
	if u.Description.Set {
		p.Description = u.Description.Value
	}
	if u.Price.Set {
		p.Price = u.Price.Value
	}
	if u.Category.Set {
		p.Category = u.Category.Value
	}
	if u.Material.Set {
		p.Material = u.Material.Value
	}
	if u.Weight.Set {
		p.Weight = u.Weight.Value
	}
	if u.Dimensions.Set {
		p.Dimensions = u.Dimensions.Value
	}
	if u.ImageURL.Set {
		p.ImageURL = u.ImageURL.Value
	}
	if u.GalleryImages.Set {
		p.GalleryImages = u.GalleryImages.Value
	}
	if u.IsFeatured.Set {
		p.IsFeatured = u.IsFeatured.Value
	}
	if u.IsVisible.Set {
		p.IsVisible = u.IsVisible.Value
	}
	if u.StockQuantity.Set {
		p.StockQuantity = u.StockQuantity.Value
	}
	return p
}

// Sort orders public listings.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortName      Sort = "name"
)

// Filter narrows the public listing.
type Filter struct {
	Category     string
	FeaturedOnly bool
	Sort         Sort
}

// Stats are the dashboard counters.
type Stats struct {
	Total    int `json:"total_products"`
	Visible  int `json:"visible_products"`
	Featured int `json:"featured_products"`
}
