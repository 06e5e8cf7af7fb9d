package contact

import "time"

// Submission is a message left through the public contact form.
type Submission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput is a validated contact form.
type CreateInput struct {
	Name    string
	Email   string
	Phone   *string
	Message string
}
