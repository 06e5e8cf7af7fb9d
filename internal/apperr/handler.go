package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case AuthenticationRequired:
		return fiber.StatusUnauthorized
	case InvalidCredential:
		return fiber.StatusForbidden
	case ValidationFailed:
		return fiber.StatusBadRequest
	case NotFound:
		return fiber.StatusNotFound
	case PayloadTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case UnsupportedMediaType:
		return fiber.StatusUnsupportedMediaType
	case RateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// Handler is the fiber error handler for the whole app.
func Handler(c *fiber.Ctx, err error) error {
	var ae *Error
	if errors.As(err, &ae) {
		status := Status(ae.Kind)
		if ae.StatusOverride != 0 {
			status = ae.StatusOverride
		}
		if status >= fiber.StatusInternalServerError {
			zap.L().Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("kind", ae.Kind.String()),
				zap.Error(err),
			)
		}
		body := fiber.Map{"message": ae.Message}
		if len(ae.Violations) > 0 {
			body["errors"] = ae.Violations
		}
		return c.Status(status).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return c.Status(fe.Code).JSON(fiber.Map{"message": "Route not found"})
		case fiber.StatusRequestEntityTooLarge:
			return c.Status(fe.Code).JSON(fiber.Map{"message": "file too large"})
		}
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	zap.L().Error("unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
}
