package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.NotFound, "Product not found")

type Repository interface {
	// ListPublic returns visible products only.
	ListPublic(ctx context.Context, f Filter) ([]Product, error)
	// GetPublic treats hidden products exactly like missing ones.
	GetPublic(ctx context.Context, id int64) (Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, in CreateInput) (Product, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Product, error)
	SetVisibility(ctx context.Context, id int64, visible bool) (Product, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int64
	now     func() time.Time
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
		now:     time.Now,
	}

	var maxID int64
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) ListPublic(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if !p.IsVisible {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, clone(p))
	}
	sortProducts(out, f.Sort)
	return out, nil
}

func (r *InMemoryRepository) GetPublic(ctx context.Context, id int64) (Product, error) {
	p, err := r.Get(ctx, id)
	if err != nil || !p.IsVisible {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) ListAll(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		out = append(out, clone(p))
	}
	sortProducts(out, SortNewest)
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return clone(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, in CreateInput) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p := Product{
		ID:            r.nextID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Category:      in.Category,
		Material:      in.Material,
		Weight:        in.Weight,
		Dimensions:    in.Dimensions,
		ImageURL:      in.ImageURL,
		GalleryImages: append([]string{}, in.GalleryImages...),
		IsFeatured:    in.IsFeatured,
		IsVisible:     in.IsVisible,
		StockQuantity: in.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.nextID++
	r.storage = append(r.storage, p)
	return clone(p), nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, in UpdateInput) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.storage {
		if p.ID == id {
			p = in.Apply(p)
			p.UpdatedAt = r.now().UTC()
			r.storage[i] = p
			return clone(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) SetVisibility(ctx context.Context, id int64, visible bool) (Product, error) {
	return r.Update(ctx, id, UpdateInput{IsVisible: Some(visible)})
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.storage {
		if p.ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	out := []string{}
	for _, p := range r.storage {
		if p.IsVisible && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *InMemoryRepository) Stats(_ context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{Total: len(r.storage)}
	for _, p := range r.storage {
		if p.IsVisible {
			s.Visible++
		}
		if p.IsFeatured {
			s.Featured++
		}
	}
	return s, nil
}

func clone(p Product) Product {
	p.GalleryImages = append([]string{}, p.GalleryImages...)
	return p
}

// sortProducts mirrors the ORDER BY clauses of the SQL repository.
func sortProducts(ps []Product, s Sort) {
	newest := func(a, b Product) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		switch s {
		case SortPriceLow:
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c < 0
			}
		case SortPriceHigh:
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c > 0
			}
		case SortName:
			if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
				return an < bn
			}
		}
		return newest(a, b)
	})
}
