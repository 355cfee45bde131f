package entity

import (
	"github.com/shopspring/decimal"
)

// Helpers de coerción para decodificar documentos JSON del almacén:
// los payloads llegan como map[string]any y los números pueden venir como
// float64 (JSON), int64 (driver) o string (tarifas decimales).

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt coerciona a entero no negativo; cualquier cosa no interpretable vale 0.
func asInt(v any) int {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		n = int(x)
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return 0
		}
		n = int(d.IntPart())
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// asDecimal coerciona a decimal no negativo; entrada inválida vale 0.
func asDecimal(v any) decimal.Decimal {
	var d decimal.Decimal
	switch x := v.(type) {
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case decimal.Decimal:
		d = x
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
