package sync

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/payweek"
)

// localIDPrefix marca los ids generados localmente para entradas
// provisionales que todavía no existen en el almacén.
const localIDPrefix = "local-"

// IsLocalID indica si un id de entrada fue sintetizado por el overlay y no
// por el almacén.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

type entryKey struct {
	employeeID string
	itemID     string
	date       string
}

// Draft es el overlay local de ediciones sin confirmar: una copia mutable de
// tarifas y cantidades sembrada desde el Aggregate, que diverge mientras el
// usuario edita y se descarta entera cuando el servidor confirma un cambio
// (last-writer-wins a nivel de overlay: lo no guardado cede ante un guardado
// confirmado de otro cliente).
type Draft struct {
	rates    map[string]decimal.Decimal        // itemID -> tarifa en edición
	entries  map[string]entity.ProductionEntry // entryID -> entrada (reales y provisionales)
	byTriple map[entryKey]string               // (empleado, ítem, fecha) -> entryID
	dirty    bool
	now      func() time.Time
}

// NewDraft construye un overlay vacío. now es inyectable para fijar la
// semana en tests.
func NewDraft(now func() time.Time) *Draft {
	if now == nil {
		now = time.Now
	}
	d := &Draft{now: now}
	d.clear()
	return d
}

func (d *Draft) clear() {
	d.rates = make(map[string]decimal.Decimal)
	d.entries = make(map[string]entity.ProductionEntry)
	d.byTriple = make(map[entryKey]string)
}

// Dirty informa si hay ediciones locales sin guardar.
func (d *Draft) Dirty() bool { return d.dirty }

// Rebaseline descarta el overlay y lo re-siembra con copia profunda del
// estado actual del Aggregate, limpiando el flag dirty. Además sintetiza un
// placeholder de cantidad cero para cada combinación
// (empleado × ítem del equipo × día de la semana) sin entrada, para que la UI
// siempre tenga celda que pintar y el reconciliador una base contra la cual diferenciar.
func (d *Draft) Rebaseline(agg *Aggregate) {
	d.clear()
	d.dirty = false

	for _, it := range agg.Items() {
		d.rates[it.ID] = it.PayRate
	}
	for _, en := range agg.Production() {
		d.entries[en.ID] = en
		d.byTriple[entryKey{en.EmployeeID, en.ItemID, en.Date}] = en.ID
	}

	dates := payweek.Dates(d.now())
	for _, emp := range agg.Employees() {
		for _, it := range agg.ItemsOfTeam(emp.TeamID) {
			for _, date := range dates {
				key := entryKey{emp.ID, it.ID, date}
				if _, ok := d.byTriple[key]; ok {
					continue
				}
				id := localIDPrefix + uuid.NewString()
				d.entries[id] = entity.ProductionEntry{
					ID:         id,
					EmployeeID: emp.ID,
					ItemID:     it.ID,
					Date:       date,
					Quantity:   0,
				}
				d.byTriple[key] = id
			}
		}
	}
}

// SetRate fija la tarifa en edición de un ítem. Entrada vacía o no numérica
// se coerciona a 0 (decisión de UX, no un error); las negativas también.
func (d *Draft) SetRate(itemID, raw string) {
	d.rates[itemID] = parseRate(raw)
	d.dirty = true
}

// SetQuantity fija la cantidad del día weekday (0 = lunes .. 5 = sábado) de
// la semana en curso para (empleado, ítem). Si el overlay ya tiene entrada
// para esa tripleta se actualiza en sitio; si no, se sintetiza una entrada
// provisional con id local.
func (d *Draft) SetQuantity(employeeID, itemID string, weekday int, raw string) {
	date := payweek.DateAt(d.now(), weekday)
	qty := parseQuantity(raw)

	key := entryKey{employeeID, itemID, date}
	if id, ok := d.byTriple[key]; ok {
		en := d.entries[id]
		en.Quantity = qty
		d.entries[id] = en
	} else {
		id := localIDPrefix + uuid.NewString()
		d.entries[id] = entity.ProductionEntry{
			ID:         id,
			EmployeeID: employeeID,
			ItemID:     itemID,
			Date:       date,
			Quantity:   qty,
		}
		d.byTriple[key] = id
	}
	d.dirty = true
}

// Reset pone en cero la cantidad de todas las entradas del overlay sin tocar
// tarifas: el "empezar semana nueva" que no borra historial. Con teamID
// vacío aplica globalmente; si no, solo a los empleados de ese equipo.
func (d *Draft) Reset(teamID string, agg *Aggregate) {
	inScope := func(employeeID string) bool { return true }
	if teamID != "" {
		members := make(map[string]bool)
		for _, e := range agg.EmployeesOfTeam(teamID) {
			members[e.ID] = true
		}
		inScope = func(employeeID string) bool { return members[employeeID] }
	}

	for id, en := range d.entries {
		if inScope(en.EmployeeID) {
			en.Quantity = 0
			d.entries[id] = en
		}
	}
	d.dirty = true
}

// RateOf devuelve la tarifa en edición de un ítem (cero si no hay).
func (d *Draft) RateOf(itemID string) decimal.Decimal {
	return d.rates[itemID]
}

// QuantityAt devuelve la cantidad en edición para (empleado, ítem, día).
func (d *Draft) QuantityAt(employeeID, itemID string, weekday int) int {
	date := payweek.DateAt(d.now(), weekday)
	if id, ok := d.byTriple[entryKey{employeeID, itemID, date}]; ok {
		return d.entries[id].Quantity
	}
	return 0
}

// Entries devuelve todas las entradas del overlay (reales y provisionales).
func (d *Draft) Entries() []entity.ProductionEntry {
	out := make([]entity.ProductionEntry, 0, len(d.entries))
	for _, en := range d.entries {
		out = append(out, en)
	}
	return out
}

// Rates devuelve una copia de las tarifas en edición.
func (d *Draft) Rates() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(d.rates))
	for k, v := range d.rates {
		out[k] = v
	}
	return out
}

func (d *Draft) markSaved() { d.dirty = false }

// parseRate coerciona la entrada cruda del usuario a una tarifa no negativa.
func parseRate(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// parseQuantity coerciona la entrada cruda del usuario a un entero no negativo.
func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
