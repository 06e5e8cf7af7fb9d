package contact

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/anuvataru/jewelry-catalog/internal/validation"
)

type Handler struct {
	service *Service
}

type createRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" form:"phone" validate:"max=50"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/contact", h.create)
}

// RegisterProtectedRoutes expects r to be the guarded /api/admin group.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/contacts", h.list)
	r.Get("/contacts/:id", h.get)
	r.Patch("/contacts/:id/read", h.markRead)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(createRequest)
	var v validation.Collector
	if err := c.BodyParser(payload); err != nil {
		v.Add("body", "request body could not be parsed")
		return v.Err()
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Phone = strings.TrimSpace(payload.Phone)
	payload.Message = strings.TrimSpace(payload.Message)

	v.Struct(payload)
	if err := v.Err(); err != nil {
		return err
	}

	in := CreateInput{Name: payload.Name, Email: payload.Email, Message: payload.Message}
	if payload.Phone != "" {
		in.Phone = &payload.Phone
	}
	id, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Contact form submitted successfully",
		"id":      id,
	})
}

func (h *Handler) list(c *fiber.Ctx) error {
	subs, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(subs)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}
	sub, err := h.service.View(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

func (h *Handler) markRead(c *fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Contact marked as read"})
}

func submissionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, ErrNotFound
	}
	return id, nil
}
