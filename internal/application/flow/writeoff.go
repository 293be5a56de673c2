package flow

import (
	"context"
	"strconv"
	"strings"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgChooseCategory = "Выберите категорию:"
	msgChooseMaterial = "Выберите материал:"
	msgManualItem     = "Введите позицию в формате: название, количество, ед.изм."
	msgManualFormat   = "Не получилось разобрать. Формат: название, количество, ед.изм."
)

type writeOffStep int

const (
	woProject writeOffStep = iota
	woCategory
	woItem
	woQty
	woManual
	woReview
)

type writeOffData struct {
	step     writeOffStep
	project  entity.Project
	category string
	current  Item // posición a la espera de cantidad
	acc      *Accumulator
}

func (*writeOffData) Flow() ID { return FlowWriteOff }

// WriteOff es el flujo de списание материалов: proyecto -> categoría ->
// material -> cantidad, en bucle hasta enviar. El acumulador sobrevive a la
// vuelta atrás y a los fallos de escritura; solo el envío con éxito o el
// abandono explícito lo descartan.
type WriteOff struct {
	deps Deps
}

func NewWriteOff(deps Deps) *WriteOff { return &WriteOff{deps: deps} }

func (w *WriteOff) ID() ID               { return FlowWriteOff }
func (w *WriteOff) Entry() entity.Action { return entity.ActionWriteOff }

func (w *WriteOff) Start(ctx context.Context, s *Session) (Prompt, error) {
	projects := w.deps.Catalog.ProjectsFor(role(s))
	if len(projects) == 0 {
		return Prompt{Text: msgNoProjects, Keyboard: menuOnly()}, nil
	}
	s.StartFlow(&writeOffData{step: woProject, acc: NewAccumulator()})
	return Prompt{Text: msgChooseProject, Keyboard: projectKeyboard(projects)}, nil
}

func (w *WriteOff) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*writeOffData)
	snap := w.deps.Catalog.Snapshot()

	switch d.step {
	case woProject:
		kind, tag := splitTok(in.Callback)
		if kind != kindProject {
			return Prompt{Text: msgChooseProject}, nil
		}
		p, ok := snap.ProjectByTag(tag)
		if !ok {
			return Prompt{}, domain.ErrNotFound
		}
		d.project = p
		d.step = woCategory
		return w.categories(d, snap), nil

	case woCategory:
		switch kind, val := splitTok(in.Callback); {
		case kind == kindCategory:
			d.category = val
			d.step = woItem
			return w.items(d, snap), nil
		case val == tokManualItem:
			d.step = woManual
			return Prompt{Text: msgManualItem}, nil
		case val == tokSubmit:
			return w.submit(ctx, s, d)
		}
		return w.categories(d, snap), nil

	case woItem:
		switch kind, val := splitTok(in.Callback); {
		case kind == kindMaterial:
			m, ok := snap.MaterialByID(val)
			if !ok {
				return Prompt{}, domain.ErrNotFound
			}
			d.current = Item{ID: m.ID, Name: m.Name, Unit: m.Unit}
			d.step = woQty
			return Prompt{Text: msgEnterQuantity + " (" + m.Name + ", " + m.Unit + "):"}, nil
		case val == tokBack:
			d.step = woCategory
			return w.categories(d, snap), nil
		case val == tokSubmit:
			return w.submit(ctx, s, d)
		}
		return w.items(d, snap), nil

	case woQty:
		if !in.IsText() {
			return Prompt{Text: msgEnterQuantity + ":"}, nil
		}
		qty, err := ParseQuantity(in.Text)
		if err != nil {
			return quantityError(err), nil
		}
		d.current.Qty = qty
		d.acc.Add(d.current)
		d.step = woReview
		return w.review(d), nil

	case woManual:
		if !in.IsText() {
			return Prompt{Text: msgManualItem}, nil
		}
		it, ok := parseManualItem(in.Text)
		if !ok {
			return Prompt{Text: msgManualFormat}, nil
		}
		d.acc.Add(it)
		d.step = woReview
		return w.review(d), nil

	case woReview:
		switch _, val := splitTok(in.Callback); val {
		case tokBack:
			// Seguir añadiendo vuelve a la lista de ítems, no al selector
			// de categorías.
			d.step = woItem
			return w.items(d, snap), nil
		case tokSubmit:
			return w.submit(ctx, s, d)
		}
		return w.review(d), nil
	}
	return Prompt{}, nil
}

// categories deriva las categorías como la unión de etiquetas de tipo de
// trato de los materiales del направление del proyecto, en orden de primera
// aparición.
func (w *WriteOff) categories(d *writeOffData, snap *entity.Snapshot) Prompt {
	seen := make(map[string]bool)
	var cats []string
	for _, m := range snap.MaterialsByDirection(d.project.Direction) {
		for _, t := range m.Tags() {
			if !seen[t] {
				seen[t] = true
				cats = append(cats, t)
			}
		}
	}

	kb := make([][]Button, 0, len(cats)+3)
	for _, c := range cats {
		kb = append(kb, []Button{{Label: c, Data: tok(kindCategory, c)}})
	}
	kb = append(kb, []Button{{Label: btnManual, Data: tokManualItem}})
	if !d.acc.Empty() {
		kb = append(kb, []Button{{Label: btnDone, Data: tokSubmit}})
	}
	kb = append(kb, mainMenuRow())
	return Prompt{Text: msgChooseCategory, Keyboard: kb}
}

func (w *WriteOff) items(d *writeOffData, snap *entity.Snapshot) Prompt {
	var kb [][]Button
	for _, m := range snap.MaterialsByDirection(d.project.Direction) {
		for _, t := range m.Tags() {
			if t == d.category {
				kb = append(kb, []Button{{Label: chosenLabel(d.acc, m.ID, m.Name), Data: tok(kindMaterial, m.ID)}})
				break
			}
		}
	}
	if !d.acc.Empty() {
		kb = append(kb, []Button{{Label: btnDone, Data: tokSubmit}})
	}
	kb = append(kb, []Button{{Label: btnBack, Data: tokBack}}, mainMenuRow())
	return Prompt{Text: msgChooseMaterial, Keyboard: kb}
}

func (w *WriteOff) review(d *writeOffData) Prompt {
	return Prompt{
		Text:     "Список к списанию (" + d.project.Tag + "):\n" + d.acc.Summary(),
		Keyboard: reviewKeyboard(),
	}
}

func (w *WriteOff) submit(ctx context.Context, s *Session, d *writeOffData) (Prompt, error) {
	if d.acc.Empty() {
		return Prompt{Text: msgListEmpty, Keyboard: reviewKeyboard()}, nil
	}

	ts := w.deps.timestamp()
	actor := w.deps.actorName(s)
	items := d.acc.Items()
	rows := make([]entity.LedgerRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, entity.LedgerRow{
			Date:       ts,
			Operation:  entity.OperationExpense,
			Actor:      actor,
			Direction:  department(s, "Строительство"),
			Item:       it.Name,
			Quantity:   it.Qty,
			Unit:       it.Unit,
			ProjectTag: d.project.Tag,
		})
	}
	if err := w.deps.Ledger.AppendLedger(ctx, rows); err != nil {
		w.deps.Log.Error().Err(err).
			Int64("chat_id", s.ChatID).
			Str("project", d.project.Tag).
			Int("rows", len(rows)).
			Msg("fallo al escribir el списание")
		d.step = woReview
		return Prompt{Text: msgWriteFailed, Keyboard: retryKeyboard()}, nil
	}

	w.deps.Log.Info().
		Int64("chat_id", s.ChatID).
		Str("project", d.project.Tag).
		Int("rows", len(rows)).
		Msg("списание registrado")
	s.EndFlow()
	return Prompt{
		Text:     "Записано позиций: " + strconv.Itoa(len(rows)) + " (проект " + d.project.Tag + ").",
		Keyboard: menuOnly(),
	}, nil
}

// parseManualItem parsea "название, количество, ед.изм." La cantidad debe
// ser positiva; la unidad es opcional.
func parseManualItem(text string) (Item, bool) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return Item{}, false
	}
	name := parts[0]
	if name == "" {
		return Item{}, false
	}
	// Una coma decimal en la cantidad parte el campo en dos: "5,5" llega
	// como dos trozos. Con 3+ campos y último no numérico, los dos del medio
	// son la cantidad.
	var qtyText, unit string
	switch len(parts) {
	case 2:
		qtyText = parts[1]
	case 3:
		if _, err := ParseQuantity(parts[2]); err == nil {
			qtyText = parts[1] + "." + parts[2]
		} else {
			qtyText, unit = parts[1], parts[2]
		}
	default:
		qtyText = parts[1] + "." + parts[2]
		unit = strings.Join(parts[3:], ", ")
	}
	qty, err := ParseQuantity(qtyText)
	if err != nil {
		return Item{}, false
	}
	return Item{ID: "manual:" + strings.ToLower(name), Name: name, Unit: unit, Qty: qty}, true
}
