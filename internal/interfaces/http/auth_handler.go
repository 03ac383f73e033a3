package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jortega/erp-core/internal/application/auth"
	"github.com/jortega/erp-core/internal/application/dto"
)

// AuthHandler maneja registro y login (público).
type AuthHandler struct {
	auth *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: uc}
}

// Register registra un usuario y devuelve un token JWT.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.auth.Register(in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login autentica con email y contraseña y devuelve un token JWT.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.auth.Login(in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(out)
}
