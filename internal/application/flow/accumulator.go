package flow

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Item es una línea seleccionada: ítem de catálogo (o entrada manual) con su
// cantidad acumulada.
type Item struct {
	ID   string // identificador estable de catálogo; "manual:<nombre>" si fue entrada libre
	Name string
	Unit string
	Qty  decimal.Decimal
}

// Accumulator acumula la selección de líneas de un flujo antes del único paso
// de envío. Reentrar un ítem sobreescribe su cantidad (gana la última, sin
// sumar) conservando la posición original. Se destruye con el flujo.
type Accumulator struct {
	order []string
	items map[string]Item
}

// NewAccumulator construye un acumulador vacío.
func NewAccumulator() *Accumulator {
	return &Accumulator{items: make(map[string]Item)}
}

// Add registra o sobreescribe la línea del ítem.
func (a *Accumulator) Add(it Item) {
	if _, ok := a.items[it.ID]; !ok {
		a.order = append(a.order, it.ID)
	}
	a.items[it.ID] = it
}

// Get devuelve la línea del ítem, si existe.
func (a *Accumulator) Get(id string) (Item, bool) {
	it, ok := a.items[id]
	return it, ok
}

// Empty indica si no hay líneas. Un acumulador vacío bloquea el envío.
func (a *Accumulator) Empty() bool { return len(a.order) == 0 }

// Len devuelve el número de líneas.
func (a *Accumulator) Len() int { return len(a.order) }

// Items devuelve las líneas en orden de primera inserción.
func (a *Accumulator) Items() []Item {
	out := make([]Item, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.items[id])
	}
	return out
}

// Summary produce el eco "nombre: cantidad" por línea, para la confirmación.
func (a *Accumulator) Summary() string {
	var b strings.Builder
	for i, it := range a.Items() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.Name)
		b.WriteString(": ")
		b.WriteString(it.Qty.String())
	}
	return b.String()
}
