package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/dto"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

// TeamHandler maneja altas y bajas de equipos y empleados. Las bajas son en
// cascada: un solo lote atómico borra al padre con toda su descendencia.
type TeamHandler struct {
	provider *sync.Provider
}

// NewTeamHandler construye el handler.
func NewTeamHandler(provider *sync.Provider) *TeamHandler {
	return &TeamHandler{provider: provider}
}

// CreateTeam da de alta un equipo; su catálogo por defecto lo rellena el pase
// de mantenimiento.
func (h *TeamHandler) CreateTeam(c *fiber.Ctx) error {
	var in dto.CreateTeamRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	team, err := h.provider.AddTeam(c.UserContext(), in.Name)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TeamResponse{ID: team.ID, Name: team.Name})
}

// DeleteTeam borra el equipo con ítems, empleados y producción.
func (h *TeamHandler) DeleteTeam(c *fiber.Ctx) error {
	teamID := c.Params("id")
	if teamID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id es requerido"})
	}
	if err := h.provider.DeleteTeam(c.UserContext(), teamID); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateEmployee da de alta un empleado con sus placeholders de la semana.
func (h *TeamHandler) CreateEmployee(c *fiber.Ctx) error {
	teamID := c.Params("id")
	var in dto.CreateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if teamID == "" || in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id del equipo y name son requeridos"})
	}
	emp, err := h.provider.AddEmployee(c.UserContext(), in.Name, teamID)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.EmployeeResponse{ID: emp.ID, Name: emp.Name, TeamID: emp.TeamID})
}

// DeleteEmployee borra al empleado con toda su producción.
func (h *TeamHandler) DeleteEmployee(c *fiber.Ctx) error {
	teamID := c.Params("id")
	employeeID := c.Params("employeeId")
	if teamID == "" || employeeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id del equipo y del empleado son requeridos"})
	}
	if err := h.provider.DeleteEmployee(c.UserContext(), teamID, employeeID); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// storeError traduce los errores del almacén a HTTP.
func storeError(c *fiber.Ctx, err error) error {
	if docstore.IsPermissionDenied(err) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "PERMISSION_DENIED", Message: "el almacén rechazó la operación"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
