package user

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (AdminUser, error)
	GetByEmail(ctx context.Context, email string) (AdminUser, error)
	Create(ctx context.Context, user AdminUser) (AdminUser, error)
	Count(ctx context.Context) (int, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []AdminUser
	nextID int64
}

func NewInMemoryRepository(seed []AdminUser) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]AdminUser, 0, len(seed)),
		nextID: 1,
	}

	var maxID int64
	for _, user := range seed {
		repo.users = append(repo.users, user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}

	return AdminUser{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return AdminUser{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, user AdminUser) (AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return AdminUser{}, ErrEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.users = append(r.users, user)
	return user, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
