// Package dashboard serves the admin counters.
package dashboard

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/anuvataru/jewelry-catalog/internal/product"
)

type ProductStats interface {
	Stats(ctx context.Context) (product.Stats, error)
}

type UnreadCounter interface {
	CountUnread(ctx context.Context) (int, error)
}

type Summary struct {
	product.Stats
	UnreadMessages int `json:"unread_messages"`
}

type Handler struct {
	products ProductStats
	contacts UnreadCounter
}

func NewHandler(products ProductStats, contacts UnreadCounter) *Handler {
	return &Handler{products: products, contacts: contacts}
}

// RegisterProtectedRoutes expects r to be the guarded /api/admin group.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/stats", h.stats)
}

func (h *Handler) stats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats, err := h.products.Stats(ctx)
	if err != nil {
		return err
	}
	unread, err := h.contacts.CountUnread(ctx)
	if err != nil {
		return err
	}
	return c.JSON(Summary{Stats: stats, UnreadMessages: unread})
}
