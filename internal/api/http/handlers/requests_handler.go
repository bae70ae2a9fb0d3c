package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/darshan-pass-service/internal/api/dto"
	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/service"
)

// RequestsHandler manages trustee request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Submit POST /requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := bindPayload(c, &req); err != nil {
		return err
	}
	created, err := h.service.Submit(c.UserContext(), auth.SessionFromContext(c), req.Candidate())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestResponse(created)})
}

// ListMine GET /requests.
func (h *RequestsHandler) ListMine(c *fiber.Ctx) error {
	list, err := h.service.ListMine(c.UserContext(), auth.SessionFromContext(c))
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewRequestResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	req, err := h.service.Lookup(c.UserContext(), auth.SessionFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(req)})
}

// Remove DELETE /requests/:id.
func (h *RequestsHandler) Remove(c *fiber.Ctx) error {
	id := c.Params("id")
	removed, err := h.service.Remove(c.UserContext(), auth.SessionFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RemoveResponse{ID: id, Removed: removed}})
}
