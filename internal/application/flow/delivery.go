package flow

import (
	"context"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgDeliveryDept   = "Выберите отдел для доставки:"
	msgDeliveryAmount = "Введите сумму доставки (например, 5000):"
	msgDeliveryNote   = "Введите примечание:"
	msgDeliveryAskNt  = "Добавить примечание?"
	msgDeliverySaved  = "Доставка записана."

	btnSkipNote = "Без примечания"
	btnAddNote  = "Добавить примечание"
)

// deliveryDepartments son los отделы fijos a los que se imputa una доставка.
var deliveryDepartments = []string{"Строительство", "Производство", "Накладные"}

type deliveryStep int

const (
	dlProject deliveryStep = iota
	dlDepartment
	dlAmount
	dlAskNote
	dlNote
	dlRetry
)

type deliveryData struct {
	step deliveryStep
	row  entity.LedgerRow
}

func (*deliveryData) Flow() ID { return FlowDelivery }

// Delivery registra una доставка: una única fila con ítem fijo "Доставка",
// cantidad 1 y el importe en la columna de precio total.
type Delivery struct {
	deps Deps
}

func NewDelivery(deps Deps) *Delivery { return &Delivery{deps: deps} }

func (dl *Delivery) ID() ID               { return FlowDelivery }
func (dl *Delivery) Entry() entity.Action { return entity.ActionDelivery }

func (dl *Delivery) Start(ctx context.Context, s *Session) (Prompt, error) {
	s.StartFlow(&deliveryData{step: dlProject})
	return Prompt{Text: msgChooseProject, Keyboard: dl.projects(s)}, nil
}

func (dl *Delivery) projects(s *Session) [][]Button {
	projects := dl.deps.Catalog.ProjectsFor(role(s))
	kb := make([][]Button, 0, len(projects)+2)
	for _, p := range projects {
		kb = append(kb, []Button{{Label: p.Tag, Data: tok(kindProject, p.Tag)}})
	}
	kb = append(kb, []Button{{Label: overheadTag, Data: tok(kindProject, overheadTag)}})
	return append(kb, mainMenuRow())
}

func departmentKeyboard() [][]Button {
	kb := make([][]Button, 0, len(deliveryDepartments)+1)
	for _, dep := range deliveryDepartments {
		kb = append(kb, []Button{{Label: dep, Data: tok(kindDepartment, dep)}})
	}
	return append(kb, mainMenuRow())
}

func (dl *Delivery) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*deliveryData)

	switch d.step {
	case dlProject:
		kind, tag := splitTok(in.Callback)
		if kind != kindProject {
			return Prompt{Text: msgChooseProject, Keyboard: dl.projects(s)}, nil
		}
		if tag != overheadTag {
			if _, ok := dl.deps.Catalog.Snapshot().ProjectByTag(tag); !ok {
				return Prompt{}, domain.ErrNotFound
			}
		}
		d.row.ProjectTag = tag
		d.step = dlDepartment
		return Prompt{Text: msgDeliveryDept, Keyboard: departmentKeyboard()}, nil

	case dlDepartment:
		kind, dep := splitTok(in.Callback)
		if kind != kindDepartment {
			return Prompt{Text: msgDeliveryDept, Keyboard: departmentKeyboard()}, nil
		}
		d.row.Direction = dep
		d.step = dlAmount
		return Prompt{Text: msgDeliveryAmount}, nil

	case dlAmount:
		if !in.IsText() {
			return Prompt{Text: msgDeliveryAmount}, nil
		}
		amount, err := ParseQuantity(in.Text)
		if err != nil {
			return quantityError(err), nil
		}
		d.row.TotalPrice = amount.String()
		d.step = dlAskNote
		return Prompt{
			Text: msgDeliveryAskNt,
			Keyboard: [][]Button{
				{{Label: btnAddNote, Data: tokAddNote}},
				{{Label: btnSkipNote, Data: tokSkipNote}},
				mainMenuRow(),
			},
		}, nil

	case dlAskNote:
		switch _, val := splitTok(in.Callback); val {
		case tokAddNote:
			d.step = dlNote
			return Prompt{Text: msgDeliveryNote}, nil
		case tokSkipNote:
			return dl.submit(ctx, s, d)
		}
		return Prompt{Text: msgDeliveryAskNt}, nil

	case dlNote:
		if !in.IsText() {
			return Prompt{Text: msgDeliveryNote}, nil
		}
		d.row.Note = in.Text
		return dl.submit(ctx, s, d)

	case dlRetry:
		if _, val := splitTok(in.Callback); val == tokSubmit {
			return dl.submit(ctx, s, d)
		}
		return Prompt{Text: msgWriteFailed, Keyboard: retryKeyboard()}, nil
	}
	return Prompt{}, nil
}

func (dl *Delivery) submit(ctx context.Context, s *Session, d *deliveryData) (Prompt, error) {
	d.row.Date = dl.deps.timestamp()
	d.row.Operation = entity.OperationExpense
	d.row.Actor = dl.deps.actorName(s)
	d.row.Item = "Доставка"
	d.row.Quantity = decimalOne

	if err := dl.deps.Ledger.AppendLedger(ctx, []entity.LedgerRow{d.row}); err != nil {
		dl.deps.Log.Error().Err(err).
			Int64("chat_id", s.ChatID).
			Str("project", d.row.ProjectTag).
			Msg("fallo al escribir la доставка")
		d.step = dlRetry
		return Prompt{Text: msgWriteFailed, Keyboard: retryKeyboard()}, nil
	}

	dl.deps.Log.Info().
		Int64("chat_id", s.ChatID).
		Str("project", d.row.ProjectTag).
		Str("department", d.row.Direction).
		Msg("доставка registrada")
	s.EndFlow()
	text := msgDeliverySaved + " Проект " + d.row.ProjectTag + " (" + d.row.Direction + "), сумма " + d.row.TotalPrice + "."
	if d.row.Note != "" {
		text += "\nПримечание: " + d.row.Note
	}
	return Prompt{Text: text, Keyboard: menuOnly()}, nil
}
