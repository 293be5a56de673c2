package flow

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pippoche/svbot/internal/domain"
)

// Mensajes de reintento de la entrada numérica (contrato de UI).
const (
	msgEnterValidNumber = "Введите корректное число:"
	msgMustBePositive   = "Количество должно быть положительным."
)

var decimalOne = decimal.NewFromInt(1)

// ParseQuantity parsea una cantidad con coma o punto como separador decimal.
// Devuelve ErrNotANumber si no parsea y ErrNotPositive si es <= 0.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, domain.ErrNotPositive
	}
	return d, nil
}

// ParsePrice parsea un precio: mismo formato que la cantidad pero admite cero
// (un gasto puede no tener precio); negativo sigue siendo inválido.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, domain.ErrNotPositive
	}
	return d, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, domain.ErrNotANumber
	}
	return d, nil
}
