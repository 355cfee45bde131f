package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/auth"
	"github.com/RafaelPasos/PaystubGen-App/internal/application/dto"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain"
)

// AuthHandler maneja el login de administración.
type AuthHandler struct {
	gate *auth.AdminGate
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(gate *auth.AdminGate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// Login valida el secreto compartido y emite el token de sesión.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "password es requerido"})
	}
	token, expiresIn, err := h.gate.Login(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "secreto inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.LoginResponse{Token: token, ExpiresIn: expiresIn})
}
