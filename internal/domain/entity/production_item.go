package entity

import "github.com/shopspring/decimal"

// ProductionItem es una unidad facturable con tarifa por unidad, acotada a un
// equipo. PayRate nunca es negativa; entrada no numérica se coerciona a 0.
type ProductionItem struct {
	ID      string
	Name    string
	PayRate decimal.Decimal
	TeamID  string
}

// DocData serializa el ítem al mapa que espera el almacén de documentos.
// La tarifa viaja como string decimal para no perder precisión en JSON.
func (p ProductionItem) DocData() map[string]any {
	return map[string]any{
		"name":    p.Name,
		"payRate": p.PayRate.String(),
		"teamId":  p.TeamID,
	}
}

// ItemFromDoc reconstruye un ProductionItem desde un documento del almacén.
func ItemFromDoc(id, teamID string, data map[string]any) ProductionItem {
	if teamID == "" {
		teamID = asString(data["teamId"])
	}
	return ProductionItem{
		ID:      id,
		Name:    asString(data["name"]),
		PayRate: asDecimal(data["payRate"]),
		TeamID:  teamID,
	}
}
