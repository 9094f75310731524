package accounts

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
)

// NotFoundHandler answers unmatched routes with a message naming the
// requested path. Mount it after all routes.
func NotFoundHandler(c *fiber.Ctx) error {
	return goerrors.New(fmt.Sprintf("Cannot find %s on this server.", c.OriginalURL()), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

// NewErrorHandler builds the fiber error handler that translates internal
// failures into the uniform JSON error shape. Operational errors always
// surface their message; unclassified failures return full detail in
// development and a sanitized message (plus a server-side log) in
// production.
func NewErrorHandler(production bool, logger glog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				rich = goerrors.New(fiberErr.Message, goerrors.CategoryOperation).
					WithCode(fiberErr.Code)
			} else {
				rich = goerrors.Wrap(err, goerrors.CategoryInternal, "Something went wrong.").
					WithCode(goerrors.CodeInternal)
			}
		}

		status := rich.Code
		if status == 0 {
			status = statusForCategory(rich.Category)
		}

		if !production {
			return c.Status(status).JSON(fiber.Map{
				"status":  statusLabel(status),
				"message": rich.Message,
				"error":   rich,
				"stack":   fmt.Sprintf("%+v", err),
			})
		}

		if rich.Category == goerrors.CategoryInternal {
			logger.Error("unexpected error", "error", err, "path", c.OriginalURL())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Something went wrong.",
			})
		}

		return c.Status(status).JSON(fiber.Map{
			"status":  statusLabel(status),
			"message": rich.Message,
		})
	}
}

func statusLabel(status int) string {
	if status < fiber.StatusInternalServerError {
		return "fail"
	}
	return "error"
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryConflict:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
