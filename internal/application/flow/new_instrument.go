package flow

import (
	"context"
	"strconv"
	"strings"

	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgNewInstrument    = "Введите новый инструмент в формате: название, ед.изм., количество"
	msgNewInstrumFormat = "Не получилось разобрать. Формат: название, ед.изм., количество"
)

type newInstrumentData struct{}

func (newInstrumentData) Flow() ID { return FlowNewInstrument }

// NewInstrumentFlow da de alta un instrumento en el catálogo con una sola
// línea de texto. El alta es un append puntual: el snapshot se parchea sin
// esperar al refresco y el id es el siguiente al máximo.
type NewInstrumentFlow struct {
	deps Deps
}

func NewNewInstrument(deps Deps) *NewInstrumentFlow { return &NewInstrumentFlow{deps: deps} }

func (n *NewInstrumentFlow) ID() ID               { return FlowNewInstrument }
func (n *NewInstrumentFlow) Entry() entity.Action { return entity.ActionNewInstrument }

func (n *NewInstrumentFlow) Start(ctx context.Context, s *Session) (Prompt, error) {
	s.StartFlow(newInstrumentData{})
	return Prompt{Text: msgNewInstrument, Keyboard: menuOnly()}, nil
}

func (n *NewInstrumentFlow) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	if !in.IsText() {
		return Prompt{Text: msgNewInstrument, Keyboard: menuOnly()}, nil
	}

	parts := strings.Split(in.Text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
		return Prompt{Text: msgNewInstrumFormat}, nil
	}
	// "5,5" en la cantidad llega partido en dos trozos.
	qty, err := ParseQuantity(strings.Join(parts[2:], "."))
	if err != nil {
		return Prompt{Text: msgNewInstrumFormat}, nil
	}

	ins, err := n.deps.Catalog.AddInstrument(ctx, parts[0], parts[1], qty)
	if err != nil {
		n.deps.Log.Error().Err(err).
			Int64("chat_id", s.ChatID).
			Str("name", parts[0]).
			Msg("fallo al dar de alta el instrumento")
		return Prompt{Text: "Не удалось записать. Отправьте строку ещё раз.", Keyboard: menuOnly()}, nil
	}

	n.deps.Log.Info().
		Int64("chat_id", s.ChatID).
		Int("id", ins.ID).
		Str("name", ins.Name).
		Msg("instrumento dado de alta")
	s.EndFlow()
	return Prompt{
		Text:     "Инструмент добавлен: " + ins.Name + " (№" + strconv.Itoa(ins.ID) + ").",
		Keyboard: menuOnly(),
	}, nil
}
