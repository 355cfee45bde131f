// Package payroll arma la matriz semanal de pago (empleado × ítem × día)
// a partir de la fotografía expuesta por el provider de sincronización.
// Es el lado de lectura que consumen la API y el PDF.
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/payweek"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

// Cell es una celda de la matriz: cantidad del día y su pago (cantidad × tarifa).
type Cell struct {
	Quantity int
	Pay      decimal.Decimal
}

// ItemRow es la fila de un ítem para un empleado: seis celdas lunes-sábado.
type ItemRow struct {
	Item          entity.ProductionItem
	Cells         [payweek.Days]Cell
	TotalQuantity int
	Subtotal      decimal.Decimal
}

// EmployeeWeek es la semana completa de un empleado.
type EmployeeWeek struct {
	Employee entity.Employee
	Rows     []ItemRow
	Total    decimal.Decimal
}

// TeamSummary agrupa las semanas de los empleados de un equipo.
type TeamSummary struct {
	Team      entity.Team
	Employees []EmployeeWeek
	Total     decimal.Decimal
}

// WeekReport es el informe semanal completo.
type WeekReport struct {
	WeekStart  string // lunes de la semana, formato 2006-01-02
	Teams      []TeamSummary
	GrandTotal decimal.Decimal
}

// BuildWeek proyecta la vista del provider a la matriz de pago de la semana
// que contiene now. Las tarifas de la vista ya traen el overlay aplicado.
func BuildWeek(view sync.View, now time.Time) WeekReport {
	dates := payweek.Dates(now)

	// Índices auxiliares sobre la vista plana.
	type cellKey struct{ emp, item, date string }
	qty := make(map[cellKey]int, len(view.Production))
	for _, en := range view.Production {
		qty[cellKey{en.EmployeeID, en.ItemID, en.Date}] = en.Quantity
	}
	itemsByTeam := make(map[string][]entity.ProductionItem)
	for _, it := range view.Items {
		itemsByTeam[it.TeamID] = append(itemsByTeam[it.TeamID], it)
	}
	employeesByTeam := make(map[string][]entity.Employee)
	for _, e := range view.Employees {
		employeesByTeam[e.TeamID] = append(employeesByTeam[e.TeamID], e)
	}

	report := WeekReport{
		WeekStart:  dates[0],
		GrandTotal: decimal.Zero,
	}
	for _, team := range view.Teams {
		summary := TeamSummary{Team: team, Total: decimal.Zero}
		for _, emp := range employeesByTeam[team.ID] {
			week := EmployeeWeek{Employee: emp, Total: decimal.Zero}
			for _, it := range itemsByTeam[team.ID] {
				row := ItemRow{Item: it, Subtotal: decimal.Zero}
				for i, date := range dates {
					q := qty[cellKey{emp.ID, it.ID, date}]
					pay := it.PayRate.Mul(decimal.NewFromInt(int64(q)))
					row.Cells[i] = Cell{Quantity: q, Pay: pay}
					row.TotalQuantity += q
					row.Subtotal = row.Subtotal.Add(pay)
				}
				week.Rows = append(week.Rows, row)
				week.Total = week.Total.Add(row.Subtotal)
			}
			summary.Employees = append(summary.Employees, week)
			summary.Total = summary.Total.Add(week.Total)
		}
		report.Teams = append(report.Teams, summary)
		report.GrandTotal = report.GrandTotal.Add(summary.Total)
	}
	return report
}
