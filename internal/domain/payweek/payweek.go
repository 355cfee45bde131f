// Package payweek define la ventana de pago canónica: lunes a sábado (6 días)
// de la semana calendario en curso, relativa a la hora local del llamador.
package payweek

import "time"

// DateLayout es el formato canónico de fecha de las entradas de producción.
const DateLayout = "2006-01-02"

// Days es el número de días de la ventana de pago (lunes..sábado).
const Days = 6

// Nombres de columna que muestran la planilla y el PDF semanal.
var WeekdayNames = [Days]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// Monday devuelve el lunes de la semana que contiene t (convención ISO:
// el domingo pertenece a la semana que empezó el lunes anterior).
func Monday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// DateAt devuelve la fecha canónica del día weekday (0 = lunes .. 5 = sábado)
// de la semana que contiene now. Índices fuera de rango se acotan a la ventana.
func DateAt(now time.Time, weekday int) string {
	if weekday < 0 {
		weekday = 0
	}
	if weekday >= Days {
		weekday = Days - 1
	}
	return Monday(now).AddDate(0, 0, weekday).Format(DateLayout)
}

// Dates devuelve las 6 fechas canónicas (lunes..sábado) de la semana de now.
func Dates(now time.Time) [Days]string {
	var out [Days]string
	monday := Monday(now)
	for i := 0; i < Days; i++ {
		out[i] = monday.AddDate(0, 0, i).Format(DateLayout)
	}
	return out
}

// IndexOf devuelve la posición (0..5) de la fecha date dentro de la semana de
// now, o -1 si la fecha cae fuera de la ventana lunes-sábado.
func IndexOf(now time.Time, date string) int {
	for i, d := range Dates(now) {
		if d == date {
			return i
		}
	}
	return -1
}
