package payweek_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RafaelPasos/PaystubGen-App/internal/domain/payweek"
)

// La ventana de pago es lunes-sábado de la semana en curso; estos tests fijan
// la aritmética de calendario con fechas conocidas para que un cambio en la
// convención (¿a qué semana pertenece el domingo?) falle de inmediato.

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 4, 5, 0, time.UTC)
}

func TestMonday_DiasDeSemana(t *testing.T) {
	// 2026-08-19 es miércoles; su lunes es 2026-08-17.
	monday := payweek.Monday(date(2026, time.August, 19))
	assert.Equal(t, "2026-08-17", monday.Format(payweek.DateLayout))

	// Un lunes es su propio lunes.
	monday = payweek.Monday(date(2026, time.August, 17))
	assert.Equal(t, "2026-08-17", monday.Format(payweek.DateLayout))
}

func TestMonday_DomingoPerteneceALaSemanaAnterior(t *testing.T) {
	// 2026-08-23 es domingo; convención ISO: su semana empezó el 17.
	monday := payweek.Monday(date(2026, time.August, 23))
	assert.Equal(t, "2026-08-17", monday.Format(payweek.DateLayout))
}

func TestDates_SeisDiasConsecutivos(t *testing.T) {
	dates := payweek.Dates(date(2026, time.August, 19))
	require.Len(t, dates, payweek.Days)
	assert.Equal(t, "2026-08-17", dates[0], "lunes")
	assert.Equal(t, "2026-08-22", dates[5], "sábado")
}

func TestDateAt_IndicesFueraDeRangoSeAcotan(t *testing.T) {
	now := date(2026, time.August, 19)
	assert.Equal(t, "2026-08-17", payweek.DateAt(now, -3))
	assert.Equal(t, "2026-08-22", payweek.DateAt(now, 99))
	assert.Equal(t, "2026-08-18", payweek.DateAt(now, 1), "martes")
}

func TestIndexOf(t *testing.T) {
	now := date(2026, time.August, 19)
	assert.Equal(t, 1, payweek.IndexOf(now, "2026-08-18"))
	assert.Equal(t, -1, payweek.IndexOf(now, "2026-08-23"), "domingo queda fuera de la ventana")
	assert.Equal(t, -1, payweek.IndexOf(now, "no-es-fecha"))
}
