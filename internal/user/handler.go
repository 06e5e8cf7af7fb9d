package user

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anuvataru/jewelry-catalog/internal/auth"
	"github.com/anuvataru/jewelry-catalog/internal/validation"
)

type Handler struct {
	service *Service
	tokens  *auth.TokenIssuer
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

func NewHandler(service *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/api/admin/login", h.login)
}

// RegisterProtectedRoutes expects r to be the guarded /api/admin group.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/me", h.me)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	var v validation.Collector
	if err := c.BodyParser(payload); err != nil {
		v.Add("body", "request body could not be parsed")
		return v.Err()
	}
	v.Struct(payload)
	if err := v.Err(); err != nil {
		return err
	}

	user, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user.Identity())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"token":      token,
		"expires_in": int(h.tokens.TTL().Seconds()),
		"user":       user.Identity(),
	})
}

// me returns the caller as verified by the token, refreshed from the store.
func (h *Handler) me(c *fiber.Ctx) error {
	id, err := auth.IdentityFromCtx(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.UserContext(), id.ID)
	if err != nil {
		return err
	}

	return c.JSON(user)
}
