package docstore

import "strings"

// Esquema de direccionamiento jerárquico:
//
//	teams/{teamId}
//	teams/{teamId}/productionItems/{itemId}
//	teams/{teamId}/employees/{employeeId}
//	teams/{teamId}/employees/{employeeId}/dailyProduction/{entryId}

// TeamsCollection es la colección raíz de equipos.
const TeamsCollection = "teams"

// TeamPath devuelve el path del documento de un equipo.
func TeamPath(teamID string) string {
	return TeamsCollection + "/" + teamID
}

// ItemsCollection devuelve la subcolección de ítems de un equipo.
func ItemsCollection(teamID string) string {
	return TeamPath(teamID) + "/productionItems"
}

// ItemPath devuelve el path del documento de un ítem.
func ItemPath(teamID, itemID string) string {
	return ItemsCollection(teamID) + "/" + itemID
}

// EmployeesCollection devuelve la subcolección de empleados de un equipo.
func EmployeesCollection(teamID string) string {
	return TeamPath(teamID) + "/employees"
}

// EmployeePath devuelve el path del documento de un empleado.
func EmployeePath(teamID, employeeID string) string {
	return EmployeesCollection(teamID) + "/" + employeeID
}

// EntriesCollection devuelve la subcolección de producción diaria de un empleado.
func EntriesCollection(teamID, employeeID string) string {
	return EmployeePath(teamID, employeeID) + "/dailyProduction"
}

// EntryPath devuelve el path del documento de una entrada de producción.
func EntryPath(teamID, employeeID, entryID string) string {
	return EntriesCollection(teamID, employeeID) + "/" + entryID
}

// SplitPath separa un path de documento en (colección padre, id).
func SplitPath(docPath string) (collection, id string) {
	i := strings.LastIndexByte(docPath, '/')
	if i < 0 {
		return "", docPath
	}
	return docPath[:i], docPath[i+1:]
}
