package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/minhdang03/server/internal/models"
)

// statusForError maps a service error to an HTTP status via its sentinel
// kind. Anything unclassified is a store failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrVariantNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrBrandNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrEmptyOrder),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidPaymentStatus),
		errors.Is(err, models.ErrInvalidPaymentMethod),
		errors.Is(err, models.ErrNotCancellable),
		errors.Is(err, models.ErrDuplicateSKU),
		errors.Is(err, models.ErrNoVariants),
		errors.Is(err, models.ErrInvalidVariant):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
