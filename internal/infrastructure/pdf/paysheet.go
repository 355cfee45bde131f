// Package pdf implementa la generación de la planilla semanal de pago por
// producción.
//
// Layout de la página A4 (apaisada por la matriz de 6 días):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Planilla semanal + rango lunes-sábado               │
//	│  ─────────────────────────────────────────────────────────   │
//	│  EQUIPO: nombre                                               │
//	│    EMPLEADO: nombre                                           │
//	│    TABLA: Ítem | Lun..Sáb | Cant | Subtotal                   │
//	│    Total del empleado                                         │
//	│  Total del equipo                                             │
//	│  ─────────────────────────────────────────────────────────   │
//	│  TOTAL GENERAL                                                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/payroll"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/payweek"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 27, Green: 94, Blue: 32}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// PaySheetGenerator arma el PDF de la planilla semanal usando Maroto v2.
type PaySheetGenerator struct{}

// NewPaySheetGenerator construye el generador.
func NewPaySheetGenerator() *PaySheetGenerator { return &PaySheetGenerator{} }

// Generate genera el PDF de la planilla y devuelve sus bytes.
func (g *PaySheetGenerator) Generate(report payroll.WeekReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Planilla semanal de producción", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, team := range report.Teams {
		m.AddRows(teamHeaderRow(team))
		for _, week := range team.Employees {
			m.AddRows(employeeHeaderRow(week))
			m.AddRows(tableHeaderRow())
			for _, r := range week.Rows {
				m.AddRows(itemRow(r))
			}
			m.AddRows(employeeTotalRow(week))
		}
		m.AddRows(teamTotalRow(team))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	}

	m.AddRows(grandTotalRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar planilla: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y rango de la semana (der).
func headerRow(report payroll.WeekReport) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("Planilla semanal de producción", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Semana del "+report.WeekStart, props.Text{
				Size: 10, Top: 3, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func teamHeaderRow(team payroll.TeamSummary) core.Row {
	return row.New(9).Add(
		col.New(12).Add(
			text.New("Equipo: "+team.Team.Name, props.Text{
				Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 2,
			}),
		),
	)
}

func employeeHeaderRow(week payroll.EmployeeWeek) core.Row {
	return row.New(7).Add(
		col.New(12).Add(
			text.New(week.Employee.Name, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 1,
			}),
		),
	)
}

// tableHeaderRow: Ítem | Tarifa | Lun..Sáb | Cant | Subtotal sobre fondo primario.
func tableHeaderRow() core.Row {
	header := func(label string, size int) core.Col {
		return col.New(size).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorWhite,
				Align: align.Center, Top: 1,
			}),
		)
	}
	cols := []core.Col{header("Ítem", 2), header("Tarifa", 1)}
	for _, day := range payweek.WeekdayNames {
		cols = append(cols, header(day, 1))
	}
	cols = append(cols, header("Cant", 1), header("Subtotal", 2))
	return row.New(6).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// grandTotalRow: franja final con el total de la semana.
func grandTotalRow(report payroll.WeekReport) core.Row {
	return row.New(10).Add(
		col.New(10).Add(
			text.New("TOTAL GENERAL", props.Text{
				Size: 11, Align: align.Right, Style: fontstyle.Bold, Color: colorWhite, Top: 2,
			}),
		),
		col.New(2).Add(
			text.New("$"+report.GrandTotal.StringFixed(2), props.Text{
				Size: 11, Align: align.Right, Style: fontstyle.Bold, Color: colorWhite, Top: 2,
			}),
		),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func itemRow(r payroll.ItemRow) core.Row {
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(
			text.New(value, props.Text{Size: 8, Align: a, Top: 1}),
		)
	}
	cols := []core.Col{
		cell(r.Item.Name, 2, align.Left),
		cell(r.Item.PayRate.StringFixed(2), 1, align.Right),
	}
	for _, c := range r.Cells {
		cols = append(cols, cell(fmt.Sprintf("%d", c.Quantity), 1, align.Center))
	}
	cols = append(cols,
		cell(fmt.Sprintf("%d", r.TotalQuantity), 1, align.Center),
		cell("$"+r.Subtotal.StringFixed(2), 2, align.Right),
	)
	return row.New(5).Add(cols...)
}

func employeeTotalRow(week payroll.EmployeeWeek) core.Row {
	return row.New(6).Add(
		col.New(10).Add(
			text.New("Total "+week.Employee.Name, props.Text{
				Size: 8, Align: align.Right, Style: fontstyle.Bold, Top: 1,
			}),
		),
		col.New(2).Add(
			text.New("$"+week.Total.StringFixed(2), props.Text{
				Size: 8, Align: align.Right, Style: fontstyle.Bold, Top: 1,
			}),
		),
	)
}

func teamTotalRow(team payroll.TeamSummary) core.Row {
	return row.New(7).Add(
		col.New(10).Add(
			text.New("Total equipo "+team.Team.Name, props.Text{
				Size: 9, Align: align.Right, Style: fontstyle.Bold, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(2).Add(
			text.New("$"+team.Total.StringFixed(2), props.Text{
				Size: 9, Align: align.Right, Style: fontstyle.Bold, Color: colorPrimary, Top: 1,
			}),
		),
	)
}
