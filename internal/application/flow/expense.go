package flow

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgExpenseEntry   = "Введите расход в формате: название, количество, ед.изм., цена"
	msgExpenseFormat  = "Не получилось разобрать. Формат: название, количество, ед.изм., цена"
	msgExpenseConfirm = "Записать расход?"
	msgExpenseSaved   = "Расход записан."

	// Proyecto comodín para gastos generales no ligados a un договор.
	overheadTag = "Накладные"

	paymentCash = "Наличные"

	btnConfirm = "Записать"
	btnCancel  = "Отмена"
)

type expenseStep int

const (
	exProject expenseStep = iota
	exEntry
	exConfirm
)

type expenseData struct {
	step    expenseStep
	tag     string // número de договор, o overheadTag
	row     entity.LedgerRow
	summary string
}

func (*expenseData) Flow() ID { return FlowExpense }

// Expense registra un gasto de caja: proyecto (o "Накладные") y una línea
// libre "название, количество, ед.изм., цена". Una confirmación, una fila.
type Expense struct {
	deps Deps
}

func NewExpense(deps Deps) *Expense { return &Expense{deps: deps} }

func (e *Expense) ID() ID               { return FlowExpense }
func (e *Expense) Entry() entity.Action { return entity.ActionAddExpense }

func (e *Expense) Start(ctx context.Context, s *Session) (Prompt, error) {
	s.StartFlow(&expenseData{step: exProject})
	return Prompt{Text: msgChooseProject, Keyboard: e.projects(s)}, nil
}

func (e *Expense) projects(s *Session) [][]Button {
	projects := e.deps.Catalog.ProjectsFor(role(s))
	kb := make([][]Button, 0, len(projects)+2)
	for _, p := range projects {
		kb = append(kb, []Button{{Label: p.Tag, Data: tok(kindProject, p.Tag)}})
	}
	kb = append(kb, []Button{{Label: overheadTag, Data: tok(kindProject, overheadTag)}})
	return append(kb, mainMenuRow())
}

func (e *Expense) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*expenseData)

	switch d.step {
	case exProject:
		kind, tag := splitTok(in.Callback)
		if kind != kindProject {
			return Prompt{Text: msgChooseProject, Keyboard: e.projects(s)}, nil
		}
		if tag != overheadTag {
			if _, ok := e.deps.Catalog.Snapshot().ProjectByTag(tag); !ok {
				return Prompt{}, domain.ErrNotFound
			}
		}
		d.tag = tag
		d.step = exEntry
		return Prompt{Text: msgExpenseEntry}, nil

	case exEntry:
		if !in.IsText() {
			return Prompt{Text: msgExpenseEntry}, nil
		}
		row, summary, ok := e.parseEntry(s, d.tag, in.Text)
		if !ok {
			return Prompt{Text: msgExpenseFormat}, nil
		}
		d.row, d.summary = row, summary
		d.step = exConfirm
		return Prompt{
			Text: msgExpenseConfirm + "\n" + summary,
			Keyboard: [][]Button{
				{{Label: btnConfirm, Data: tokSubmit}},
				{{Label: btnCancel, Data: tokBack}},
				mainMenuRow(),
			},
		}, nil

	case exConfirm:
		switch _, val := splitTok(in.Callback); val {
		case tokSubmit:
			d.row.Date = e.deps.timestamp()
			if err := e.deps.Ledger.AppendLedger(ctx, []entity.LedgerRow{d.row}); err != nil {
				e.deps.Log.Error().Err(err).
					Int64("chat_id", s.ChatID).
					Str("project", d.tag).
					Msg("fallo al escribir el gasto")
				return Prompt{Text: msgWriteFailed, Keyboard: retryKeyboard()}, nil
			}
			e.deps.Log.Info().
				Int64("chat_id", s.ChatID).
				Str("project", d.tag).
				Msg("gasto registrado")
			s.EndFlow()
			return Prompt{Text: msgExpenseSaved, Keyboard: menuOnly()}, nil
		case tokBack:
			d.step = exEntry
			return Prompt{Text: msgExpenseEntry}, nil
		}
		return Prompt{Text: msgExpenseConfirm + "\n" + d.summary}, nil
	}
	return Prompt{}, nil
}

// parseEntry parsea "название, количество, ед.изм., цена". El importe va a
// la columna de precio total; cero se admite, negativo no.
func (e *Expense) parseEntry(s *Session, tag, text string) (entity.LedgerRow, string, bool) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 || parts[0] == "" {
		return entity.LedgerRow{}, "", false
	}
	// Una coma decimal parte la cantidad o el precio en dos trozos: se
	// prueban los repartos posibles (cantidad y precio ocupan 1 o 2 campos,
	// la unidad exactamente uno).
	name, rest := parts[0], parts[1:]
	var (
		qty, price decimal.Decimal
		unit       string
		matched    bool
	)
	for _, c := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		q, p := c[0], c[1]
		if q+1+p != len(rest) {
			continue
		}
		qv, err := ParseQuantity(strings.Join(rest[:q], "."))
		if err != nil {
			continue
		}
		pv, err := ParsePrice(strings.Join(rest[q+1:], "."))
		if err != nil {
			continue
		}
		qty, unit, price, matched = qv, rest[q], pv, true
		break
	}
	if !matched {
		return entity.LedgerRow{}, "", false
	}

	// Los gastos generales se atribuyen al propio "Накладные", no al отдел
	// del empleado.
	direction := department(s, "Строительство")
	if tag == overheadTag {
		direction = overheadTag
	}

	row := entity.LedgerRow{
		Operation:   entity.OperationExpense,
		Actor:       e.deps.actorName(s),
		PaymentType: paymentCash,
		Direction:   direction,
		Item:        name,
		Quantity:    qty,
		Unit:        unit,
		TotalPrice:  price.String(),
		ProjectTag:  tag,
	}
	summary := name + ": " + qty.String() + " " + unit + ", " + price.String() + " (" + tag + ")"
	return row, summary, true
}
