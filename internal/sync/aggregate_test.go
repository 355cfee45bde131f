package sync_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	syncpkg "github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

func TestMergeAcotado_NoDesalojaOtrosPadres(t *testing.T) {
	agg := syncpkg.NewAggregate()
	agg.ReplaceTeams([]entity.Team{{ID: "a", Name: "Hojas"}, {ID: "b", Name: "Capote"}})
	agg.ReplaceTeamEmployees("a", []entity.Employee{{ID: "e1", Name: "Maria", TeamID: "a"}})
	agg.ReplaceTeamEmployees("b", []entity.Employee{
		{ID: "e2", Name: "Pedro", TeamID: "b"},
		{ID: "e3", Name: "Rosa", TeamID: "b"},
	})
	before := agg.EmployeesOfTeam("b")

	// Una actualización confinada a los empleados del equipo A debe dejar a
	// los del equipo B idénticos.
	agg.ReplaceTeamEmployees("a", []entity.Employee{
		{ID: "e4", Name: "Luz", TeamID: "a"},
	})

	assert.Equal(t, before, agg.EmployeesOfTeam("b"))
	require.Len(t, agg.EmployeesOfTeam("a"), 1)
	assert.Equal(t, "e4", agg.EmployeesOfTeam("a")[0].ID)
}

func TestDeduplicacionPorID(t *testing.T) {
	agg := syncpkg.NewAggregate()
	agg.ReplaceTeams([]entity.Team{{ID: "a", Name: "Hojas"}, {ID: "b", Name: "Capote"}})

	// Durante una re-suscripción dos ramas pueden entregar registros
	// solapados: el mismo empleado reportado bajo ambos equipos.
	dup := entity.Employee{ID: "e1", Name: "Maria", TeamID: "a"}
	agg.ReplaceTeamEmployees("a", []entity.Employee{dup})
	agg.ReplaceTeamEmployees("b", []entity.Employee{dup, {ID: "e2", Name: "Pedro", TeamID: "b"}})

	employees := agg.Employees()
	seen := map[string]int{}
	for _, e := range employees {
		seen[e.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "el id %s aparece %d veces", id, n)
	}
	assert.Len(t, employees, 2)
}

func TestPurgeTeam_EliminaRamasDependientes(t *testing.T) {
	agg := syncpkg.NewAggregate()
	agg.ReplaceTeams([]entity.Team{{ID: "a", Name: "Hojas"}})
	agg.ReplaceTeamItems("a", []entity.ProductionItem{
		{ID: "i1", Name: "Blanca", PayRate: decimal.NewFromInt(13), TeamID: "a"},
	})
	agg.ReplaceTeamEmployees("a", []entity.Employee{{ID: "e1", Name: "Maria", TeamID: "a"}})
	agg.ReplaceEmployeeEntries("e1", []entity.ProductionEntry{
		{ID: "p1", EmployeeID: "e1", ItemID: "i1", Date: "2026-08-18", Quantity: 3},
	})

	agg.PurgeTeam("a")

	assert.Empty(t, agg.Teams())
	assert.Empty(t, agg.Items())
	assert.Empty(t, agg.Employees())
	assert.Empty(t, agg.Production(), "la producción de los empleados del equipo purgado desaparece")
}

func TestSnapshotParcial_HijosAntesQueElPadre(t *testing.T) {
	// Sin orden garantizado entre suscripciones: las entradas de un empleado
	// pueden llegar antes que el snapshot del equipo. No debe fallar; se
	// fusiona cuando el padre aparezca.
	agg := syncpkg.NewAggregate()
	agg.ReplaceEmployeeEntries("e1", []entity.ProductionEntry{
		{ID: "p1", EmployeeID: "e1", ItemID: "i1", Date: "2026-08-17", Quantity: 2},
	})
	assert.Len(t, agg.Production(), 1)

	agg.ReplaceTeams([]entity.Team{{ID: "a", Name: "Hojas"}})
	agg.ReplaceTeamEmployees("a", []entity.Employee{{ID: "e1", Name: "Maria", TeamID: "a"}})
	assert.Len(t, agg.Employees(), 1)
	assert.Len(t, agg.Production(), 1)
}
