package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/dto"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/payweek"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

// DraftHandler maneja las ediciones del overlay y su guardado.
type DraftHandler struct {
	provider *sync.Provider
}

// NewDraftHandler construye el handler.
func NewDraftHandler(provider *sync.Provider) *DraftHandler {
	return &DraftHandler{provider: provider}
}

// SetRate fija la tarifa en edición de un ítem.
func (h *DraftHandler) SetRate(c *fiber.Ctx) error {
	var in dto.SetRateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id es requerido"})
	}
	h.provider.SetRate(in.ItemID, in.Value)
	return c.SendStatus(fiber.StatusNoContent)
}

// SetQuantity fija la cantidad en edición de una celda (día 0..5).
func (h *DraftHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.EmployeeID == "" || in.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "employee_id e item_id son requeridos"})
	}
	if in.Weekday < 0 || in.Weekday >= payweek.Days {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "weekday debe estar entre 0 (lunes) y 5 (sábado)"})
	}
	h.provider.SetQuantity(in.EmployeeID, in.ItemID, in.Weekday, in.Value)
	return c.SendStatus(fiber.StatusNoContent)
}

// Save confirma todas las ediciones pendientes como un lote atómico.
func (h *DraftHandler) Save(c *fiber.Ctx) error {
	ops, err := h.provider.SaveAllChanges(c.UserContext())
	if err != nil {
		if docstore.IsPermissionDenied(err) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "PERMISSION_DENIED", Message: "el almacén rechazó el lote de guardado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.SaveResponse{Ops: ops, Dirty: h.provider.Dirty()})
}

// Reset pone en cero las cantidades del overlay (globalmente o por equipo).
// No escribe nada: el cero viaja al servidor con el siguiente guardado.
func (h *DraftHandler) Reset(c *fiber.Ctx) error {
	var in dto.ResetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	h.provider.ResetWeek(in.TeamID)
	return c.SendStatus(fiber.StatusNoContent)
}
