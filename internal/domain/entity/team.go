package entity

// Team es el agregado raíz: particiona empleados y catálogo de ítems.
// El ID lo asigna el almacén de documentos al crearlo.
type Team struct {
	ID   string
	Name string
}

// DocData serializa el equipo al mapa que espera el almacén de documentos.
func (t Team) DocData() map[string]any {
	return map[string]any{"name": t.Name}
}

// TeamFromDoc reconstruye un Team desde un documento del almacén.
func TeamFromDoc(id string, data map[string]any) Team {
	return Team{ID: id, Name: asString(data["name"])}
}
