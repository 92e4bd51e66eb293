package serverutils

import (
	"context"
	"errors"

	"docqa-be/pkg/pdf"
	"docqa-be/pkg/rag"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into JSON error responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			res := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
			res.Errors = validationMessages(validationErrs)
			return ctx.Status(fiber.StatusBadRequest).JSON(res)
		}

		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusFor maps an error to the HTTP status the API reports for it.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, rag.ErrEmptyQuestion):
		return fiber.StatusBadRequest
	case errors.Is(err, pdf.ErrUnreadable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, rag.ErrModelInvocation), errors.Is(err, rag.ErrRetrieval):
		return fiber.StatusBadGateway
	case errors.Is(err, rag.ErrHistory):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
