// Package sync implementa la capa de sincronización y reconciliación de
// borradores entre el almacén jerárquico de documentos y los consumidores
// interactivos: el árbol de suscripciones en cascada, el modelo de lectura
// agregado, el overlay de edición local y el reconciliador de guardado por
// lote atómico.
package sync

import (
	"sort"

	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
)

// Aggregate es el modelo de lectura fusionado y deduplicado que alimentan
// las suscripciones. Las actualizaciones llegan acotadas a un padre
// (los ítems del equipo X, las entradas del empleado Y) y el merge reemplaza
// solo el conjunto de ese padre: una actualización del equipo X jamás
// desaloja a los hijos del equipo Y.
//
// No es seguro para uso concurrente por sí mismo; el Provider serializa
// todos los accesos.
type Aggregate struct {
	teams           map[string]entity.Team
	itemsByTeam     map[string]map[string]entity.ProductionItem
	employeesByTeam map[string]map[string]entity.Employee
	entriesByEmp    map[string]map[string]entity.ProductionEntry
}

// NewAggregate construye el modelo vacío.
func NewAggregate() *Aggregate {
	return &Aggregate{
		teams:           make(map[string]entity.Team),
		itemsByTeam:     make(map[string]map[string]entity.ProductionItem),
		employeesByTeam: make(map[string]map[string]entity.Employee),
		entriesByEmp:    make(map[string]map[string]entity.ProductionEntry),
	}
}

// ReplaceTeams reemplaza el conjunto completo de equipos (la colección raíz
// llega siempre entera en cada snapshot).
func (a *Aggregate) ReplaceTeams(teams []entity.Team) {
	a.teams = make(map[string]entity.Team, len(teams))
	for _, t := range teams {
		a.teams[t.ID] = t
	}
}

// ReplaceTeamItems reemplaza los ítems de un solo equipo.
func (a *Aggregate) ReplaceTeamItems(teamID string, items []entity.ProductionItem) {
	set := make(map[string]entity.ProductionItem, len(items))
	for _, it := range items {
		set[it.ID] = it
	}
	a.itemsByTeam[teamID] = set
}

// ReplaceTeamEmployees reemplaza los empleados de un solo equipo.
func (a *Aggregate) ReplaceTeamEmployees(teamID string, employees []entity.Employee) {
	set := make(map[string]entity.Employee, len(employees))
	for _, e := range employees {
		set[e.ID] = e
	}
	a.employeesByTeam[teamID] = set
}

// ReplaceEmployeeEntries reemplaza la producción de un solo empleado.
func (a *Aggregate) ReplaceEmployeeEntries(employeeID string, entries []entity.ProductionEntry) {
	set := make(map[string]entity.ProductionEntry, len(entries))
	for _, en := range entries {
		set[en.ID] = en
	}
	a.entriesByEmp[employeeID] = set
}

// PurgeTeam elimina un equipo y las ramas que le pertenecían.
func (a *Aggregate) PurgeTeam(teamID string) {
	delete(a.teams, teamID)
	delete(a.itemsByTeam, teamID)
	for _, e := range a.employeesByTeam[teamID] {
		delete(a.entriesByEmp, e.ID)
	}
	delete(a.employeesByTeam, teamID)
}

// PurgeEmployee elimina la producción de un empleado que dejó de existir.
func (a *Aggregate) PurgeEmployee(employeeID string) {
	delete(a.entriesByEmp, employeeID)
}

// ── lecturas ─────────────────────────────────────────────────────────────────

// Teams devuelve los equipos ordenados por nombre (estable para la UI).
func (a *Aggregate) Teams() []entity.Team {
	out := make([]entity.Team, 0, len(a.teams))
	for _, t := range a.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Employees devuelve todos los empleados, deduplicados por id: durante una
// re-suscripción dos ramas pueden entregar registros solapados.
func (a *Aggregate) Employees() []entity.Employee {
	seen := make(map[string]bool)
	var out []entity.Employee
	for _, set := range a.employeesByTeam {
		for id, e := range set {
			if !seen[id] {
				seen[id] = true
				out = append(out, e)
			}
		}
	}
	sortEmployees(out)
	return out
}

// Items devuelve todos los ítems, deduplicados por id.
func (a *Aggregate) Items() []entity.ProductionItem {
	seen := make(map[string]bool)
	var out []entity.ProductionItem
	for _, set := range a.itemsByTeam {
		for id, it := range set {
			if !seen[id] {
				seen[id] = true
				out = append(out, it)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Production devuelve todas las entradas, deduplicadas por id.
func (a *Aggregate) Production() []entity.ProductionEntry {
	seen := make(map[string]bool)
	var out []entity.ProductionEntry
	for _, set := range a.entriesByEmp {
		for id, en := range set {
			if !seen[id] {
				seen[id] = true
				out = append(out, en)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ItemsOfTeam devuelve los ítems de un equipo ordenados por nombre.
func (a *Aggregate) ItemsOfTeam(teamID string) []entity.ProductionItem {
	set := a.itemsByTeam[teamID]
	out := make([]entity.ProductionItem, 0, len(set))
	for _, it := range set {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// EmployeesOfTeam devuelve los empleados de un equipo ordenados por nombre.
func (a *Aggregate) EmployeesOfTeam(teamID string) []entity.Employee {
	set := a.employeesByTeam[teamID]
	out := make([]entity.Employee, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	sortEmployees(out)
	return out
}

// ItemByID busca un ítem en cualquier equipo.
func (a *Aggregate) ItemByID(itemID string) (entity.ProductionItem, bool) {
	for _, set := range a.itemsByTeam {
		if it, ok := set[itemID]; ok {
			return it, true
		}
	}
	return entity.ProductionItem{}, false
}

// EmployeeByID busca un empleado en cualquier equipo.
func (a *Aggregate) EmployeeByID(employeeID string) (entity.Employee, bool) {
	for _, set := range a.employeesByTeam {
		if e, ok := set[employeeID]; ok {
			return e, true
		}
	}
	return entity.Employee{}, false
}

// EntryByID busca una entrada de producción por su id de almacén.
func (a *Aggregate) EntryByID(entryID string) (entity.ProductionEntry, bool) {
	for _, set := range a.entriesByEmp {
		if en, ok := set[entryID]; ok {
			return en, true
		}
	}
	return entity.ProductionEntry{}, false
}

func sortEmployees(out []entity.Employee) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
}
