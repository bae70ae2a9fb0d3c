package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/darshan-pass-service/internal/api/dto"
	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/service"
)

// VerificationHandler serves the pro team's scan-and-complete flow.
type VerificationHandler struct {
	service *service.RequestService
}

// NewVerificationHandler constructs handler.
func NewVerificationHandler(requestService *service.RequestService) *VerificationHandler {
	return &VerificationHandler{service: requestService}
}

// Resolve GET /verifications/:id.
func (h *VerificationHandler) Resolve(c *fiber.Ctx) error {
	req, err := h.service.Lookup(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(req)})
}

// MarkDone POST /verifications/:id/done.
func (h *VerificationHandler) MarkDone(c *fiber.Ctx) error {
	req, err := h.service.MarkDone(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(req)})
}
