// Package dto define los contratos JSON de la API.
package dto

// ErrorResponse respuesta de error estándar.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ── auth ──────────────────────────────────────────────────────────────────────

// LoginRequest cuerpo del login de administración.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse token de sesión emitido.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in_minutes"`
}

// ── estado sincronizado ───────────────────────────────────────────────────────

// TeamResponse un equipo.
type TeamResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EmployeeResponse un empleado.
type EmployeeResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"team_id"`
}

// ItemResponse un ítem de producción con la tarifa vigente en el overlay.
type ItemResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	PayRate string `json:"pay_rate"`
	TeamID  string `json:"team_id"`
}

// EntryResponse una celda de producción; Local indica un placeholder aún no
// confirmado por el servidor.
type EntryResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	ItemID     string `json:"item_id"`
	Date       string `json:"date"`
	Quantity   int    `json:"quantity"`
	Local      bool   `json:"local"`
}

// StateResponse fotografía completa del estado visible.
type StateResponse struct {
	Loading    bool               `json:"loading"`
	Dirty      bool               `json:"dirty"`
	Teams      []TeamResponse     `json:"teams"`
	Employees  []EmployeeResponse `json:"employees"`
	Items      []ItemResponse     `json:"items"`
	Production []EntryResponse    `json:"production"`
}

// ── ediciones ─────────────────────────────────────────────────────────────────

// SetRateRequest fija la tarifa en edición de un ítem. Value se coerciona: no
// numérico o negativo se guarda como cero.
type SetRateRequest struct {
	ItemID string `json:"item_id"`
	Value  string `json:"value"`
}

// SetQuantityRequest fija la cantidad en edición de una celda. Weekday es
// 0..5 (lunes..sábado).
type SetQuantityRequest struct {
	EmployeeID string `json:"employee_id"`
	ItemID     string `json:"item_id"`
	Weekday    int    `json:"weekday"`
	Value      string `json:"value"`
}

// ResetRequest pone en cero las cantidades del overlay; TeamID vacío = todas.
type ResetRequest struct {
	TeamID string `json:"team_id"`
}

// SaveResponse resultado de un guardado: operaciones escritas en el lote.
type SaveResponse struct {
	Ops   int  `json:"ops"`
	Dirty bool `json:"dirty"`
}

// ── mutaciones estructurales ──────────────────────────────────────────────────

// CreateTeamRequest alta de equipo.
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// CreateEmployeeRequest alta de empleado en un equipo.
type CreateEmployeeRequest struct {
	Name string `json:"name"`
}

// ── nómina ────────────────────────────────────────────────────────────────────

// PayrollCell una celda de la matriz semanal.
type PayrollCell struct {
	Quantity int    `json:"quantity"`
	Pay      string `json:"pay"`
}

// PayrollRow la fila de un ítem para un empleado.
type PayrollRow struct {
	ItemID        string        `json:"item_id"`
	ItemName      string        `json:"item_name"`
	PayRate       string        `json:"pay_rate"`
	Cells         []PayrollCell `json:"cells"`
	TotalQuantity int           `json:"total_quantity"`
	Subtotal      string        `json:"subtotal"`
}

// PayrollEmployee la semana de un empleado.
type PayrollEmployee struct {
	EmployeeID string       `json:"employee_id"`
	Name       string       `json:"name"`
	Rows       []PayrollRow `json:"rows"`
	Total      string       `json:"total"`
}

// PayrollTeam el resumen de un equipo.
type PayrollTeam struct {
	TeamID    string            `json:"team_id"`
	Name      string            `json:"name"`
	Employees []PayrollEmployee `json:"employees"`
	Total     string            `json:"total"`
}

// PayrollResponse el informe semanal completo.
type PayrollResponse struct {
	WeekStart  string        `json:"week_start"`
	Teams      []PayrollTeam `json:"teams"`
	GrandTotal string        `json:"grand_total"`
}
