package entity

// ProductionEntry registra la producción de un empleado para un ítem en una
// fecha calendario (formato 2006-01-02). Para una tripleta
// (EmployeeID, ItemID, Date) existe a lo sumo una entrada.
type ProductionEntry struct {
	ID         string
	EmployeeID string
	ItemID     string
	Date       string
	Quantity   int
}

// DocData serializa la entrada al mapa que espera el almacén de documentos.
func (p ProductionEntry) DocData() map[string]any {
	return map[string]any{
		"employeeId":       p.EmployeeID,
		"productionItemId": p.ItemID,
		"date":             p.Date,
		"quantity":         p.Quantity,
	}
}

// EntryFromDoc reconstruye una ProductionEntry desde un documento del almacén.
func EntryFromDoc(id, employeeID string, data map[string]any) ProductionEntry {
	if employeeID == "" {
		employeeID = asString(data["employeeId"])
	}
	return ProductionEntry{
		ID:         id,
		EmployeeID: employeeID,
		ItemID:     asString(data["productionItemId"]),
		Date:       asString(data["date"]),
		Quantity:   asInt(data["quantity"]),
	}
}
