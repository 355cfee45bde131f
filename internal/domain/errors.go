package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrTeamNotFound    = errors.New("equipo no encontrado")
	ErrEmployeeMissing = errors.New("empleado no encontrado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrNothingToSave   = errors.New("no hay cambios pendientes")
)
