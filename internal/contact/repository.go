package contact

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.NotFound, "Contact submission not found")

type Repository interface {
	Create(ctx context.Context, in CreateInput) (int64, error)
	// ListAll returns every submission, newest first.
	ListAll(ctx context.Context) ([]Submission, error)
	Get(ctx context.Context, id int64) (Submission, error)
	// MarkRead sets is_read; calling it again is a no-op.
	MarkRead(ctx context.Context, id int64) error
	CountUnread(ctx context.Context) (int, error)
}

// InMemoryRepository keeps submissions in a slice; used by tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Submission
	nextID  int64
	now     func() time.Time
}

func NewInMemoryRepository(seed []Submission) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: append([]Submission(nil), seed...),
		nextID:  1,
		now:     time.Now,
	}
	for _, s := range seed {
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) Create(_ context.Context, in CreateInput) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Submission{
		ID:        r.nextID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		CreatedAt: r.now().UTC(),
	}
	r.nextID++
	r.storage = append(r.storage, s)
	return s.ID, nil
}

func (r *InMemoryRepository) ListAll(_ context.Context) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]Submission{}, r.storage...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.storage {
		if s.ID == id {
			return s, nil
		}
	}
	return Submission{}, ErrNotFound
}

func (r *InMemoryRepository) MarkRead(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) CountUnread(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.storage {
		if !s.IsRead {
			n++
		}
	}
	return n, nil
}
