package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anuvataru/jewelry-catalog/internal/database"
)

type SQLRepository struct {
	db  *database.DB
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	insertContactQuery = `
		INSERT INTO contact_submissions (name, email, phone, message, is_read, created_at)
		VALUES (?, ?, ?, ?, FALSE, ?)
		RETURNING id
	`
	listContactsQuery = `
		SELECT id, name, email, phone, message, is_read, created_at
		FROM contact_submissions
		ORDER BY created_at DESC, id DESC
	`
	getContactQuery = `
		SELECT id, name, email, phone, message, is_read, created_at
		FROM contact_submissions
		WHERE id = ?
	`
	markReadQuery    = `UPDATE contact_submissions SET is_read = TRUE WHERE id = ?`
	countUnreadQuery = `SELECT COUNT(*) FROM contact_submissions WHERE is_read = FALSE`
)

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, in CreateInput) (int64, error) {
	var phone sql.NullString
	if in.Phone != nil {
		phone = sql.NullString{String: *in.Phone, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, r.db.Rebind(insertContactQuery),
		in.Name,
		in.Email,
		phone,
		in.Message,
		r.now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert contact submission: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]Submission, error) {
	rows, err := r.db.QueryContext(ctx, listContactsQuery)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	out := make([]Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, r.db.Rebind(getContactQuery), id))
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, fmt.Errorf("get contact submission %d: %w", id, err)
	}
	return s, nil
}

// MarkRead relies on both drivers counting matched rows, so an already read
// submission still reports one affected row.
func (r *SQLRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(markReadQuery), id)
	if err != nil {
		return fmt.Errorf("mark contact submission %d read: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark contact submission %d read: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUnreadQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread contact submissions: %w", err)
	}
	return n, nil
}

func scanSubmission(scanner rowScanner) (Submission, error) {
	var s Submission
	var phone sql.NullString
	if err := scanner.Scan(&s.ID, &s.Name, &s.Email, &phone, &s.Message, &s.IsRead, &s.CreatedAt); err != nil {
		return Submission{}, err
	}
	if phone.Valid {
		s.Phone = &phone.String
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
