package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/dto"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

// StateHandler expone la fotografía del estado sincronizado con el overlay
// aplicado: lo que una pantalla de captura pintaría.
type StateHandler struct {
	provider *sync.Provider
}

// NewStateHandler construye el handler.
func NewStateHandler(provider *sync.Provider) *StateHandler {
	return &StateHandler{provider: provider}
}

// Get devuelve el estado completo.
func (h *StateHandler) Get(c *fiber.Ctx) error {
	return c.JSON(stateResponse(h.provider.View()))
}

func stateResponse(view sync.View) dto.StateResponse {
	out := dto.StateResponse{
		Loading:    view.Loading,
		Dirty:      view.Dirty,
		Teams:      make([]dto.TeamResponse, 0, len(view.Teams)),
		Employees:  make([]dto.EmployeeResponse, 0, len(view.Employees)),
		Items:      make([]dto.ItemResponse, 0, len(view.Items)),
		Production: make([]dto.EntryResponse, 0, len(view.Production)),
	}
	for _, t := range view.Teams {
		out.Teams = append(out.Teams, dto.TeamResponse{ID: t.ID, Name: t.Name})
	}
	for _, e := range view.Employees {
		out.Employees = append(out.Employees, dto.EmployeeResponse{ID: e.ID, Name: e.Name, TeamID: e.TeamID})
	}
	for _, it := range view.Items {
		out.Items = append(out.Items, dto.ItemResponse{
			ID: it.ID, Name: it.Name, PayRate: it.PayRate.String(), TeamID: it.TeamID,
		})
	}
	for _, en := range view.Production {
		out.Production = append(out.Production, dto.EntryResponse{
			ID:         en.ID,
			EmployeeID: en.EmployeeID,
			ItemID:     en.ItemID,
			Date:       en.Date,
			Quantity:   en.Quantity,
			Local:      sync.IsLocalID(en.ID),
		})
	}
	return out
}
