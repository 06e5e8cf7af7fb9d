package contact

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvataru/jewelry-catalog/internal/database"
	"github.com/anuvataru/jewelry-catalog/internal/database/databasetest"
)

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo := NewSQLRepository(databasetest.New(t))
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return repo
}

func TestSQLRepositoryCreateAndList(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	phone := "0812345678"
	first, err := repo.Create(ctx, CreateInput{Name: "A", Email: "a@example.com", Phone: &phone, Message: "hi"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, CreateInput{Name: "B", Email: "b@example.com", Message: "hello"})
	require.NoError(t, err)

	subs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, second, subs[0].ID)
	assert.Equal(t, first, subs[1].ID)
	assert.Equal(t, "0812345678", *subs[1].Phone)
	assert.Nil(t, subs[0].Phone)
	assert.False(t, subs[0].IsRead)

	n, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLRepositoryMarkReadIsIdempotent(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, CreateInput{Name: "A", Email: "a@example.com", Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkRead(ctx, id))
	require.NoError(t, repo.MarkRead(ctx, id))

	s, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, s.IsRead)

	n, err := repo.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.MarkRead(ctx, 404), ErrNotFound)
	_, err = repo.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceViewMarksRead(t *testing.T) {
	repo := newSQLiteRepo(t)
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com", Message: "hi"})
	require.NoError(t, err)

	s, err := svc.View(ctx, id)
	require.NoError(t, err)
	assert.True(t, s.IsRead)

	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
}

func TestSQLRepositoryCreatePostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, FALSE, $5)`)).
		WithArgs("A", "a@example.com", nil, "hi", fixed).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	repo := NewSQLRepository(database.Wrap(db, database.Postgres))
	repo.now = func() time.Time { return fixed }

	id, err := repo.Create(context.Background(), CreateInput{Name: "A", Email: "a@example.com", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	require.NoError(t, mock.ExpectationsWereMet())
}
