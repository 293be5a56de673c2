package flow

// ID identifica un flujo de negocio.
type ID string

const (
	FlowAuth          ID = "auth"
	FlowWriteOff      ID = "write_off"
	FlowFerma         ID = "ferma_write_off"
	FlowExpense       ID = "expense"
	FlowDelivery      ID = "delivery"
	FlowInstrument    ID = "instrument"
	FlowNewInstrument ID = "new_instrument"
	FlowProject       ID = "project"
	FlowStatus        ID = "status_change"
	FlowIssue         ID = "report_issue"
)

// Input es el evento entrante de una conversación: o un token de callback
// (botón pulsado) o texto libre, nunca ambos.
type Input struct {
	Callback string
	Text     string
}

// IsText indica si el evento es texto libre.
func (in Input) IsText() bool { return in.Callback == "" }

// Button es un botón del teclado inline: etiqueta visible + token opaco que
// el transporte devuelve intacto.
type Button struct {
	Label string
	Data  string
}

// Prompt es la instrucción de render que el motor devuelve al transporte:
// texto del mensaje más teclado de opciones (puede ser nil).
type Prompt struct {
	Text     string
	Keyboard [][]Button
}

// mainMenuRow fila estándar de vuelta al menú.
func mainMenuRow() []Button {
	return []Button{{Label: "Вернуться в меню", Data: tokMainMenu}}
}

// menuOnly teclado con solo la vuelta al menú.
func menuOnly() [][]Button {
	return [][]Button{mainMenuRow()}
}
