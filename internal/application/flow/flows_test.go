package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/domain/entity"
)

// ── gasto de caja ─────────────────────────────────────────────────────────────

func TestExpense_LineaLibre(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	p := h.tap("act:add_expense")
	assert.Contains(t, buttonLabels(p), "Накладные", "los gastos generales usan el proyecto comodín")

	h.tap("proj:D-102")
	p = h.text("Бетон, 2, м3, 4500")
	assert.Contains(t, p.Text, "Записать расход?")
	assert.Contains(t, p.Text, "Бетон: 2 м3, 4500")

	h.tap("submit")
	require.Len(t, h.ledger.batches, 1)
	row := h.ledger.batches[0][0]
	assert.Equal(t, entity.OperationExpense, row.Operation)
	assert.Equal(t, "Наличные", row.PaymentType)
	assert.Equal(t, "Бетон", row.Item)
	assert.Equal(t, "2", row.Quantity.String())
	assert.Equal(t, "м3", row.Unit)
	assert.Equal(t, "4500", row.TotalPrice)
	assert.Equal(t, "", row.UnitPrice)
	assert.Equal(t, "D-102", row.ProjectTag)
	assert.Equal(t, "Производство", row.Direction)
}

func TestExpense_PrecioConComaDecimal(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.tap("act:add_expense")
	h.tap("proj:Накладные")

	h.text("Бетон, 2, м3, 4500,50")
	h.tap("submit")

	require.Len(t, h.ledger.batches, 1)
	row := h.ledger.batches[0][0]
	assert.Equal(t, "4500.5", row.TotalPrice, "la coma decimal del precio no debe romper el parseo")
	assert.Equal(t, "Накладные", row.ProjectTag)
	assert.Equal(t, "Накладные", row.Direction, "el gasto general se atribuye a Накладные, no al отдел")
}

func TestExpense_FormatoInvalidoReintenta(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.tap("act:add_expense")
	h.tap("proj:D-102")

	p := h.text("esto no tiene formato")
	assert.Contains(t, p.Text, "Не получилось разобрать")
	assert.Zero(t, h.ledger.calls)

	h.text("Бетон, 2, м3, 0")
	h.tap("submit")
	require.Len(t, h.ledger.batches, 1)
	assert.Equal(t, "0", h.ledger.batches[0][0].TotalPrice, "precio cero es un gasto válido")
}

// ── доставка ──────────────────────────────────────────────────────────────────

func TestDelivery_ConNota(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.tap("act:delivery")
	p := h.tap("proj:Накладные")
	assert.Contains(t, p.Text, "отдел")

	h.tap("dep:Строительство")
	h.text("3000")
	p = h.tap("add_note")
	assert.Contains(t, p.Text, "примечание")

	p = h.text("Срочно")
	assert.Contains(t, p.Text, "Доставка записана")

	require.Len(t, h.ledger.batches, 1)
	row := h.ledger.batches[0][0]
	assert.Equal(t, "Доставка", row.Item)
	assert.Equal(t, "1", row.Quantity.String())
	assert.Equal(t, "3000", row.TotalPrice)
	assert.Equal(t, "Строительство", row.Direction)
	assert.Equal(t, "Накладные", row.ProjectTag)
	assert.Equal(t, "Срочно", row.Note)
}

func TestDelivery_SinNota(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.tap("act:delivery")
	h.tap("proj:D-102")
	h.tap("dep:Производство")
	h.text("1500,50")
	h.tap("skip_note")

	require.Len(t, h.ledger.batches, 1)
	row := h.ledger.batches[0][0]
	assert.Equal(t, "1500.5", row.TotalPrice)
	assert.Empty(t, row.Note)
}

// ── cambio de estado ──────────────────────────────────────────────────────────

func TestStatus_CambioInmediato(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.tap("act:change_status")
	p := h.tap("proj:D-102")
	assert.Contains(t, p.Text, "Текущий статус D-102: В работе")
	assert.Contains(t, buttonLabels(p), "готов")

	p = h.tap("status:готов")
	assert.Contains(t, p.Text, "Статус обновлён")

	got, ok := h.cache.Snapshot().ProjectByTag("D-102")
	require.True(t, ok)
	assert.Equal(t, "готов", got.Status, "el parche es visible en el snapshot sin refresh")
}

// ── alta de instrumento ───────────────────────────────────────────────────────

func TestNewInstrument_Alta(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	p := h.tap("act:new_instrument")
	assert.Contains(t, p.Text, "название, ед.изм., количество")

	p = h.text("Лобзик, шт, 2")
	assert.Contains(t, p.Text, "Инструмент добавлен: Лобзик (№2)")

	got, ok := h.cache.Snapshot().InstrumentByID(2)
	require.True(t, ok, "el instrumento nuevo sigue al máximo id de la hoja")
	assert.Equal(t, "Лобзик", got.Name)
	assert.Equal(t, "2", got.Stock.String())
}

func TestNewInstrument_FormatoInvalido(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.tap("act:new_instrument")

	p := h.text("Лобзик")
	assert.Contains(t, p.Text, "Не получилось разобрать")

	p = h.text("Лобзик, шт, muchos")
	assert.Contains(t, p.Text, "Не получилось разобрать")
}

// ── alta de proyecto ──────────────────────────────────────────────────────────

func TestProject_AltaCompleta(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, "olga", "oficina")

	p := h.tap("act:create_project")
	assert.Contains(t, p.Text, "заказчика")

	p = h.text("ООО Ромашка")
	assert.Contains(t, p.Text, "номер договора")

	p = h.text("D-102")
	assert.Contains(t, p.Text, "уже существует", "el номер договора es la clave y debe ser único")

	p = h.text("D-103")
	assert.Contains(t, p.Text, "направление")

	p = h.tap("dir:Фермы")
	assert.Contains(t, p.Text, "Проект создан")

	proj, ok := h.cache.Snapshot().ProjectByTag("D-103")
	require.True(t, ok, "el alta es visible sin refresco")
	assert.Equal(t, "8", proj.ID, "el id sigue al máximo de la hoja")
	assert.Equal(t, "В работе", proj.Status)
	assert.Equal(t, "ООО Ромашка", proj.Customer)
	assert.Equal(t, "Фермы", proj.Direction)
}

// ── списание a fermas ─────────────────────────────────────────────────────────

func TestFerma_MezclaMaterialesYPlacas(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.tap("act:ferma_write_off")
	p := h.tap("proj:D-102")
	assert.Contains(t, p.Text, "Что списываем на фермы?")

	// Rama de materiales con etiqueta de fermas.
	p = h.tap("fkind:mat")
	labels := buttonLabels(p)
	assert.Contains(t, labels, "Крепёж ферм", "la rama de materiales filtra por la etiqueta de fermas")
	assert.NotContains(t, labels, "Лист 2мм", "la etiqueta es literal, sin plegar mayúsculas ni plural")
	h.tap("mat:9")
	h.text("10")

	// "Добавить ещё" vuelve a la lista de materiales anotada; el selector de
	// rama queda a un "Назад" más, y la пластина comparte acumulador.
	p = h.tap("back")
	assert.Contains(t, buttonLabels(p), "Крепёж ферм (10)", "la lista anotada muestra lo ya elegido")
	h.tap("back")
	h.tap("fkind:plate")
	p = h.tap("ptype:Двусторонние")
	assert.Contains(t, buttonLabels(p), "Пластина 100")

	h.tap("plate:p7")
	p = h.text("30")
	assert.Contains(t, p.Text, "Крепёж ферм: 10")
	assert.Contains(t, p.Text, "Пластина 100: 30")

	h.tap("submit")
	require.Len(t, h.ledger.batches, 1)
	rows := h.ledger.batches[0]
	require.Len(t, rows, 2, "materiales y пластины viajan en un mismo envío")
	assert.Equal(t, "Крепёж ферм", rows[0].Item)
	assert.Equal(t, "Пластина 100", rows[1].Item)
	assert.Equal(t, "D-102", rows[0].ProjectTag)
}
