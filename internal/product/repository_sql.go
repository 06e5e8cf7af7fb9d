package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anuvataru/jewelry-catalog/internal/database"
)

// SQLRepository stores products in SQLite or PostgreSQL. Queries are written
// with '?' placeholders and rebound for the active driver.
type SQLRepository struct {
	db  *database.DB
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, description, price, category, material, weight, dimensions,
		image_url, gallery_images, is_featured, is_visible, stock_quantity, created_at, updated_at`

const (
	listPublicQuery = `SELECT ` + productColumns + `
		FROM products
		WHERE is_visible = TRUE`
	getPublicQuery = `SELECT ` + productColumns + `
		FROM products
		WHERE id = ? AND is_visible = TRUE`
	listAllQuery = `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC`
	getProductQuery = `SELECT ` + productColumns + `
		FROM products
		WHERE id = ?`
	insertProductQuery = `
		INSERT INTO products (name, description, price, category, material, weight, dimensions,
			image_url, gallery_images, is_featured, is_visible, stock_quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	setVisibilityQuery = `UPDATE products SET is_visible = ?, updated_at = ? WHERE id = ?`
	deleteProductQuery = `DELETE FROM products WHERE id = ?`
	categoriesQuery    = `
		SELECT DISTINCT category
		FROM products
		WHERE is_visible = TRUE AND category <> ''
		ORDER BY category
	`
	statsQuery = `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_visible THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_featured THEN 1 ELSE 0 END), 0)
		FROM products
	`
)

var orderClauses = map[Sort]string{
	SortNewest:    " ORDER BY created_at DESC, id DESC",
	SortPriceLow:  " ORDER BY price ASC, created_at DESC, id DESC",
	SortPriceHigh: " ORDER BY price DESC, created_at DESC, id DESC",
	SortName:      " ORDER BY LOWER(name) ASC, created_at DESC, id DESC",
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

func (r *SQLRepository) ListPublic(ctx context.Context, f Filter) ([]Product, error) {
	var b strings.Builder
	b.WriteString(listPublicQuery)
	var args []any
	if f.Category != "" {
		b.WriteString(" AND category = ?")
		args = append(args, f.Category)
	}
	if f.FeaturedOnly {
		b.WriteString(" AND is_featured = TRUE")
	}
	order, ok := orderClauses[f.Sort]
	if !ok {
		order = orderClauses[SortNewest]
	}
	b.WriteString(order)

	return r.query(ctx, b.String(), args...)
}

func (r *SQLRepository) GetPublic(ctx context.Context, id int64) (Product, error) {
	return r.get(ctx, getPublicQuery, id)
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]Product, error) {
	return r.query(ctx, listAllQuery)
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (Product, error) {
	return r.get(ctx, getProductQuery, id)
}

func (r *SQLRepository) Create(ctx context.Context, in CreateInput) (Product, error) {
	gallery, err := encodeGallery(in.GalleryImages)
	if err != nil {
		return Product{}, err
	}
	now := r.now().UTC()

	var id int64
	err = r.db.QueryRowContext(ctx, r.db.Rebind(insertProductQuery),
		in.Name,
		nullString(in.Description),
		in.Price,
		in.Category,
		in.Material,
		in.Weight,
		nullString(in.Dimensions),
		nullString(in.ImageURL),
		gallery,
		in.IsFeatured,
		in.IsVisible,
		in.StockQuantity,
		now,
		now,
	).Scan(&id)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return r.Get(ctx, id)
}

// Update writes only the fields set in in, plus updated_at.
func (r *SQLRepository) Update(ctx context.Context, id int64, in UpdateInput) (Product, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if in.Name.Set {
		set("name", in.Name.Value)
	}
	if in.Description.Set {
		set("description", nullString(in.Description.Value))
	}
	if in.Price.Set {
		set("price", in.Price.Value)
	}
	if in.Category.Set {
		set("category", in.Category.Value)
	}
	if in.Material.Set {
		set("material", in.Material.Value)
	}
	if in.Weight.Set {
		set("weight", in.Weight.Value)
	}
	if in.Dimensions.Set {
		set("dimensions", nullString(in.Dimensions.Value))
	}
	if in.ImageURL.Set {
		set("image_url", nullString(in.ImageURL.Value))
	}
	if in.GalleryImages.Set {
		gallery, err := encodeGallery(in.GalleryImages.Value)
		if err != nil {
			return Product{}, err
		}
		set("gallery_images", gallery)
	}
	if in.IsFeatured.Set {
		set("is_featured", in.IsFeatured.Value)
	}
	if in.IsVisible.Set {
		set("is_visible", in.IsVisible.Value)
	}
	if in.StockQuantity.Set {
		set("stock_quantity", in.StockQuantity.Value)
	}
	set("updated_at", r.now().UTC())

	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if err := r.exec(ctx, query, args...); err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *SQLRepository) SetVisibility(ctx context.Context, id int64, visible bool) (Product, error) {
	if err := r.exec(ctx, setVisibilityQuery, visible, r.now().UTC(), id); err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, deleteProductQuery, id)
}

func (r *SQLRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, categoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.db.QueryRowContext(ctx, statsQuery).Scan(&s.Total, &s.Visible, &s.Featured); err != nil {
		return Stats{}, fmt.Errorf("product stats: %w", err)
	}
	return s, nil
}

func (r *SQLRepository) get(ctx context.Context, query string, id int64) (Product, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(query), id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// exec runs a single-row write and maps "no row touched" to ErrNotFound.
func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("write product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write product: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var (
		description sql.NullString
		dimensions  sql.NullString
		imageURL    sql.NullString
		gallery     sql.NullString
		material    sql.NullString
		weight      decimal.NullDecimal
	)

	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.Price,
		&p.Category,
		&material,
		&weight,
		&dimensions,
		&imageURL,
		&gallery,
		&p.IsFeatured,
		&p.IsVisible,
		&p.StockQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}

	if description.Valid {
		p.Description = &description.String
	}
	if dimensions.Valid {
		p.Dimensions = &dimensions.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	p.Material = DefaultMaterial
	if material.Valid && material.String != "" {
		p.Material = material.String
	}
	p.Weight = weight
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	p.GalleryImages = []string{}
	if gallery.Valid && gallery.String != "" {
		if err := jsonAPI.UnmarshalFromString(gallery.String, &p.GalleryImages); err != nil {
			return Product{}, fmt.Errorf("decode gallery_images: %w", err)
		}
		if p.GalleryImages == nil {
			p.GalleryImages = []string{}
		}
	}
	return p, nil
}

func encodeGallery(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	s, err := jsonAPI.MarshalToString(images)
	if err != nil {
		return "", fmt.Errorf("encode gallery_images: %w", err)
	}
	return s, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
