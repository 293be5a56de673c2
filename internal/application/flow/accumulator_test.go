package flow_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/application/flow"
)

func item(id, name string, qty int64) flow.Item {
	return flow.Item{ID: id, Name: name, Unit: "шт", Qty: decimal.NewFromInt(qty)}
}

func TestAccumulator_UltimaEscrituraGana(t *testing.T) {
	acc := flow.NewAccumulator()

	acc.Add(item("3", "Лист 2мм", 4))
	acc.Add(item("4", "Саморез", 2))
	acc.Add(item("3", "Лист 2мм", 6))

	require.Equal(t, 2, acc.Len(), "re-seleccionar un ítem no duplica la línea")
	got, ok := acc.Get("3")
	require.True(t, ok)
	assert.Equal(t, "6", got.Qty.String(), "la última cantidad sustituye a la anterior")
}

func TestAccumulator_ConservaOrdenDeInsercion(t *testing.T) {
	acc := flow.NewAccumulator()
	acc.Add(item("a", "Uno", 1))
	acc.Add(item("b", "Dos", 2))
	acc.Add(item("c", "Tres", 3))
	acc.Add(item("b", "Dos", 9)) // sobrescribe sin moverse de sitio

	items := acc.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "9", items[1].Qty.String())
}

func TestAccumulator_Vacio(t *testing.T) {
	acc := flow.NewAccumulator()
	assert.True(t, acc.Empty())
	assert.Zero(t, acc.Len())
	assert.Empty(t, acc.Items())

	acc.Add(item("a", "Uno", 1))
	assert.False(t, acc.Empty())
}

func TestAccumulator_Resumen(t *testing.T) {
	acc := flow.NewAccumulator()
	acc.Add(flow.Item{ID: "3", Name: "Лист 2мм", Unit: "шт", Qty: decimal.RequireFromString("5.5")})
	acc.Add(item("4", "Саморез", 2))

	assert.Equal(t, "Лист 2мм: 5.5\nСаморез: 2", acc.Summary())
}
