package flow

import (
	"context"
	"strconv"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgInstrumentOp   = "Приход или расход инструмента?"
	msgRecipient      = "Кому выдан инструмент? Введите Ф.И.О:"
	msgChooseInstrum  = "Выберите инструмент:"
	msgCustodyReview  = "Движение инструмента"
	msgCustodyWritten = "Движение инструмента записано."
)

type instrumentStep int

const (
	inProject instrumentStep = iota
	inOperation
	inRecipient
	inItem
	inQty
	inReview
)

type instrumentData struct {
	step      instrumentStep
	project   entity.Project
	operation string // Приход | Расход
	recipient string
	current   Item
	acc       *Accumulator
}

func (*instrumentData) Flow() ID { return FlowInstrument }

// Instrument registra movimientos de custodia de herramienta: a qué proyecto
// va (o de cuál vuelve), en manos de quién queda y qué unidades se mueven.
// Escribe en la tabla de custodia y parchea el snapshot para que la vista
// "где инструмент" refleje el movimiento sin esperar al refresco.
type Instrument struct {
	deps Deps
}

func NewInstrument(deps Deps) *Instrument { return &Instrument{deps: deps} }

func (i *Instrument) ID() ID               { return FlowInstrument }
func (i *Instrument) Entry() entity.Action { return entity.ActionInstrument }

func (i *Instrument) Start(ctx context.Context, s *Session) (Prompt, error) {
	projects := i.deps.Catalog.ProjectsFor(role(s))
	if len(projects) == 0 {
		return Prompt{Text: msgNoProjects, Keyboard: menuOnly()}, nil
	}
	s.StartFlow(&instrumentData{step: inProject, acc: NewAccumulator()})
	return Prompt{Text: msgChooseProject, Keyboard: projectKeyboard(projects)}, nil
}

func (i *Instrument) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*instrumentData)
	snap := i.deps.Catalog.Snapshot()

	switch d.step {
	case inProject:
		kind, tag := splitTok(in.Callback)
		if kind != kindProject {
			return Prompt{Text: msgChooseProject}, nil
		}
		p, ok := snap.ProjectByTag(tag)
		if !ok {
			return Prompt{}, domain.ErrNotFound
		}
		d.project = p
		d.step = inOperation
		return i.operations(), nil

	case inOperation:
		kind, op := splitTok(in.Callback)
		if kind != kindOperation || (op != entity.OperationIncome && op != entity.OperationExpense) {
			return i.operations(), nil
		}
		d.operation = op
		d.step = inRecipient
		return Prompt{Text: msgRecipient}, nil

	case inRecipient:
		if !in.IsText() {
			return Prompt{Text: msgRecipient}, nil
		}
		d.recipient = in.Text
		d.step = inItem
		return i.items(d, snap), nil

	case inItem:
		switch kind, val := splitTok(in.Callback); {
		case kind == kindInstrument:
			id, err := strconv.Atoi(val)
			if err != nil {
				return i.items(d, snap), nil
			}
			ins, ok := snap.InstrumentByID(id)
			if !ok {
				return Prompt{}, domain.ErrNotFound
			}
			d.current = Item{ID: val, Name: ins.Name, Unit: ins.Unit}
			d.step = inQty
			return Prompt{Text: msgEnterQuantity + " (" + ins.Name + ", " + ins.Unit + "):"}, nil
		case val == tokSubmit:
			return i.submit(ctx, s, d)
		}
		return i.items(d, snap), nil

	case inQty:
		if !in.IsText() {
			return Prompt{Text: msgEnterQuantity + ":"}, nil
		}
		qty, err := ParseQuantity(in.Text)
		if err != nil {
			return quantityError(err), nil
		}
		d.current.Qty = qty
		d.acc.Add(d.current)
		d.step = inReview
		return i.review(d), nil

	case inReview:
		switch _, val := splitTok(in.Callback); val {
		case tokBack:
			d.step = inItem
			return i.items(d, snap), nil
		case tokSubmit:
			return i.submit(ctx, s, d)
		}
		return i.review(d), nil
	}
	return Prompt{}, nil
}

func (i *Instrument) operations() Prompt {
	return Prompt{
		Text: msgInstrumentOp,
		Keyboard: [][]Button{
			{{Label: entity.OperationIncome, Data: tok(kindOperation, entity.OperationIncome)}},
			{{Label: entity.OperationExpense, Data: tok(kindOperation, entity.OperationExpense)}},
			mainMenuRow(),
		},
	}
}

func (i *Instrument) items(d *instrumentData, snap *entity.Snapshot) Prompt {
	kb := make([][]Button, 0, len(snap.Instruments)+2)
	for _, ins := range snap.Instruments {
		id := strconv.Itoa(ins.ID)
		kb = append(kb, []Button{{Label: chosenLabel(d.acc, id, ins.Name), Data: tok(kindInstrument, id)}})
	}
	if !d.acc.Empty() {
		kb = append(kb, []Button{{Label: btnDone, Data: tokSubmit}})
	}
	kb = append(kb, mainMenuRow())
	return Prompt{Text: msgChooseInstrum, Keyboard: kb}
}

func (i *Instrument) review(d *instrumentData) Prompt {
	return Prompt{
		Text: msgCustodyReview + " (" + d.operation + ", " + d.project.Tag + ", " +
			d.recipient + "):\n" + d.acc.Summary(),
		Keyboard: reviewKeyboard(),
	}
}

func (i *Instrument) submit(ctx context.Context, s *Session, d *instrumentData) (Prompt, error) {
	if d.acc.Empty() {
		return Prompt{Text: msgListEmpty, Keyboard: reviewKeyboard()}, nil
	}

	ts := i.deps.timestamp()
	actor := i.deps.actorName(s)
	items := d.acc.Items()
	rows := make([]entity.CustodyRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, entity.CustodyRow{
			Date:       ts,
			Operation:  d.operation,
			Actor:      actor,
			ProjectTag: d.project.Tag,
			Recipient:  d.recipient,
			Instrument: it.Name,
			Quantity:   it.Qty,
		})
	}
	if err := i.deps.Custody.AppendCustody(ctx, rows); err != nil {
		i.deps.Log.Error().Err(err).
			Int64("chat_id", s.ChatID).
			Str("project", d.project.Tag).
			Int("rows", len(rows)).
			Msg("fallo al escribir custodia de instrumento")
		d.step = inReview
		return Prompt{Text: msgWriteFailed, Keyboard: retryKeyboard()}, nil
	}
	i.deps.Catalog.PatchCustody(rows)

	i.deps.Log.Info().
		Int64("chat_id", s.ChatID).
		Str("project", d.project.Tag).
		Str("operation", d.operation).
		Int("rows", len(rows)).
		Msg("custodia de instrumento registrada")
	s.EndFlow()
	return Prompt{Text: msgCustodyWritten, Keyboard: menuOnly()}, nil
}
