package entity

// Employee pertenece exactamente a un Team y posee sus registros de
// producción diaria de la semana.
type Employee struct {
	ID     string
	Name   string
	TeamID string
}

// DocData serializa el empleado al mapa que espera el almacén de documentos.
func (e Employee) DocData() map[string]any {
	return map[string]any{"name": e.Name, "teamId": e.TeamID}
}

// EmployeeFromDoc reconstruye un Employee desde un documento del almacén.
// El teamID viene del path del documento; el campo teamId del payload se
// usa solo como respaldo para documentos antiguos.
func EmployeeFromDoc(id, teamID string, data map[string]any) Employee {
	if teamID == "" {
		teamID = asString(data["teamId"])
	}
	return Employee{ID: id, Name: asString(data["name"]), TeamID: teamID}
}
