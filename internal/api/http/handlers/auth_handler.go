package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/darshan-pass-service/internal/api/dto"
	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/service"
)

// AuthHandler exposes the credential check and session endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindPayload(c, &req); err != nil {
		return err
	}
	result, err := h.service.Login(c.UserContext(), req.Identity, req.Credential, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Session:   dto.NewSessionResponse(result.Session),
	}})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session := h.service.Logout(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// Session GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(auth.SessionFromContext(c))})
}
