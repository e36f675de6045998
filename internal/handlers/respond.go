package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

// respondError maps a domain error onto an HTTP response. Only the public
// message is exposed; the underlying cause stays in the server log.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if appErr.Err != nil {
		slog.Error("request failed",
			"path", c.Path(), "kind", string(appErr.Kind), "cause", appErr.Err)
	}

	body := fiber.Map{
		"error": appErr.Message,
		"code":  string(appErr.Kind),
	}

	switch appErr.Kind {
	case apperrors.KindQuotaExceeded:
		body["limit"] = appErr.Limit
		body["remaining"] = appErr.Remaining
	case apperrors.KindAlreadyAnalyzed:
		if appErr.Record != nil {
			body["analysis"] = appErr.Record
		}
	case apperrors.KindDuplicateMatch:
		if appErr.Record != nil {
			body["match"] = appErr.Record
		}
	}

	return c.Status(appErr.StatusCode()).JSON(body)
}

func paginationParams(c *fiber.Ctx, defaultLimit int) (limit, offset int) {
	limit = c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
