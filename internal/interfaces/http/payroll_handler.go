package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/dto"
	"github.com/RafaelPasos/PaystubGen-App/internal/application/payroll"
	"github.com/RafaelPasos/PaystubGen-App/internal/infrastructure/pdf"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

// PayrollHandler expone la matriz semanal de pago y su planilla PDF.
type PayrollHandler struct {
	provider *sync.Provider
	sheets   *pdf.PaySheetGenerator
	now      func() time.Time
}

// NewPayrollHandler construye el handler. now es inyectable en tests.
func NewPayrollHandler(provider *sync.Provider, sheets *pdf.PaySheetGenerator, now func() time.Time) *PayrollHandler {
	if now == nil {
		now = time.Now
	}
	return &PayrollHandler{provider: provider, sheets: sheets, now: now}
}

// Week devuelve el informe semanal en JSON.
func (h *PayrollHandler) Week(c *fiber.Ctx) error {
	report := payroll.BuildWeek(h.provider.View(), h.now())
	return c.JSON(payrollResponse(report))
}

// WeekPDF devuelve la planilla semanal en PDF.
func (h *PayrollHandler) WeekPDF(c *fiber.Ctx) error {
	report := payroll.BuildWeek(h.provider.View(), h.now())
	bytes, err := h.sheets.Generate(report)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="planilla-`+report.WeekStart+`.pdf"`)
	return c.Send(bytes)
}

func payrollResponse(report payroll.WeekReport) dto.PayrollResponse {
	out := dto.PayrollResponse{
		WeekStart:  report.WeekStart,
		Teams:      make([]dto.PayrollTeam, 0, len(report.Teams)),
		GrandTotal: report.GrandTotal.String(),
	}
	for _, team := range report.Teams {
		t := dto.PayrollTeam{
			TeamID: team.Team.ID,
			Name:   team.Team.Name,
			Total:  team.Total.String(),
		}
		for _, week := range team.Employees {
			e := dto.PayrollEmployee{
				EmployeeID: week.Employee.ID,
				Name:       week.Employee.Name,
				Total:      week.Total.String(),
			}
			for _, row := range week.Rows {
				r := dto.PayrollRow{
					ItemID:        row.Item.ID,
					ItemName:      row.Item.Name,
					PayRate:       row.Item.PayRate.String(),
					Cells:         make([]dto.PayrollCell, 0, len(row.Cells)),
					TotalQuantity: row.TotalQuantity,
					Subtotal:      row.Subtotal.String(),
				}
				for _, cell := range row.Cells {
					r.Cells = append(r.Cells, dto.PayrollCell{Quantity: cell.Quantity, Pay: cell.Pay.String()})
				}
				e.Rows = append(e.Rows, r)
			}
			t.Employees = append(t.Employees, e)
		}
		out.Teams = append(out.Teams, t)
	}
	return out
}
