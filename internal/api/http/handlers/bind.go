package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/darshan-pass-service/internal/api/dto"
	apperrors "github.com/spec-kit/darshan-pass-service/pkg/util/errorutil"
)

// bindPayload decodes the JSON body into out and enforces its tag limits.
func bindPayload(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"kind": "invalid_format"})
	}
	if v := dto.CheckPayload(out); v != nil {
		return apperrors.NewValidationError("payload field exceeds limits", map[string]any{
			"kind":  "invalid_format",
			"field": v.Field,
			"rule":  v.Rule,
		})
	}
	return nil
}
