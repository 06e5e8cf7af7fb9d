package user

import (
	"time"

	"github.com/anuvataru/jewelry-catalog/internal/auth"
)

// AdminUser is an account allowed into the admin API. Password holds the
// bcrypt hash and is never serialized.
type AdminUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u AdminUser) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
