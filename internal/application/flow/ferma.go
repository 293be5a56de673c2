package flow

import (
	"context"
	"strconv"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgFermaKind      = "Что списываем на фермы?"
	msgChoosePlateTyp = "Выберите тип пластин:"
	msgChoosePlate    = "Выберите пластину:"

	fermaKindMaterials = "mat"
	fermaKindPlates    = "plate"
)

type fermaStep int

const (
	feProject fermaStep = iota
	feKind
	fePlateType
	feItem
	feQty
	feReview
)

type fermaData struct {
	step      fermaStep
	project   entity.Project
	kind      string // fermaKindMaterials | fermaKindPlates
	plateType string
	current   Item
	acc       *Accumulator
}

func (*fermaData) Flow() ID { return FlowFerma }

// Ferma es el списание de materiales a fermas: como WriteOff pero el catálogo
// se parte en materiales МЗП y pastillas por tipo, y el acumulador es común a
// ambas ramas (se puede mezclar en un mismo envío).
type Ferma struct {
	deps Deps
}

func NewFerma(deps Deps) *Ferma { return &Ferma{deps: deps} }

func (f *Ferma) ID() ID               { return FlowFerma }
func (f *Ferma) Entry() entity.Action { return entity.ActionFermaWriteOff }

func (f *Ferma) Start(ctx context.Context, s *Session) (Prompt, error) {
	projects := f.deps.Catalog.ProjectsFor(role(s))
	if len(projects) == 0 {
		return Prompt{Text: msgNoProjects, Keyboard: menuOnly()}, nil
	}
	s.StartFlow(&fermaData{step: feProject, acc: NewAccumulator()})
	return Prompt{Text: msgChooseProject, Keyboard: projectKeyboard(projects)}, nil
}

func (f *Ferma) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*fermaData)
	snap := f.deps.Catalog.Snapshot()

	switch d.step {
	case feProject:
		kind, tag := splitTok(in.Callback)
		if kind != kindProject {
			return Prompt{Text: msgChooseProject}, nil
		}
		p, ok := snap.ProjectByTag(tag)
		if !ok {
			return Prompt{}, domain.ErrNotFound
		}
		d.project = p
		d.step = feKind
		return f.kinds(d), nil

	case feKind:
		switch kind, val := splitTok(in.Callback); {
		case kind == kindFermaKind && val == fermaKindMaterials:
			d.kind = val
			d.step = feItem
			return f.materials(d, snap), nil
		case kind == kindFermaKind && val == fermaKindPlates:
			d.kind = val
			d.step = fePlateType
			return f.plateTypes(snap), nil
		case val == tokSubmit:
			return f.submit(ctx, s, d)
		}
		return f.kinds(d), nil

	case fePlateType:
		switch kind, val := splitTok(in.Callback); {
		case kind == kindPlateType:
			d.plateType = val
			d.step = feItem
			return f.plates(d, snap), nil
		case val == tokBack:
			d.step = feKind
			return f.kinds(d), nil
		}
		return f.plateTypes(snap), nil

	case feItem:
		switch kind, val := splitTok(in.Callback); {
		case kind == kindMaterial:
			m, ok := snap.MaterialByID(val)
			if !ok {
				return Prompt{}, domain.ErrNotFound
			}
			d.current = Item{ID: m.ID, Name: m.Name, Unit: m.Unit}
			d.step = feQty
			return Prompt{Text: msgEnterQuantity + " (" + m.Name + ", " + m.Unit + "):"}, nil
		case kind == kindPlate:
			p, ok := snap.PlateByID(val)
			if !ok {
				return Prompt{}, domain.ErrNotFound
			}
			d.current = Item{ID: p.ID, Name: p.Name, Unit: p.Unit}
			d.step = feQty
			return Prompt{Text: msgEnterQuantity + " (" + p.Name + ", " + p.Unit + "):"}, nil
		case val == tokBack:
			if d.kind == fermaKindPlates {
				d.step = fePlateType
				return f.plateTypes(snap), nil
			}
			d.step = feKind
			return f.kinds(d), nil
		case val == tokSubmit:
			return f.submit(ctx, s, d)
		}
		if d.kind == fermaKindPlates {
			return f.plates(d, snap), nil
		}
		return f.materials(d, snap), nil

	case feQty:
		if !in.IsText() {
			return Prompt{Text: msgEnterQuantity + ":"}, nil
		}
		qty, err := ParseQuantity(in.Text)
		if err != nil {
			return quantityError(err), nil
		}
		d.current.Qty = qty
		d.acc.Add(d.current)
		d.step = feReview
		return f.review(d), nil

	case feReview:
		switch _, val := splitTok(in.Callback); val {
		case tokBack:
			// Seguir añadiendo vuelve a la lista de la rama activa; el
			// selector de rama queda a un "Назад" más.
			d.step = feItem
			if d.kind == fermaKindPlates {
				return f.plates(d, snap), nil
			}
			return f.materials(d, snap), nil
		case tokSubmit:
			return f.submit(ctx, s, d)
		}
		return f.review(d), nil
	}
	return Prompt{}, nil
}

func (f *Ferma) kinds(d *fermaData) Prompt {
	kb := [][]Button{
		{{Label: "Материалы МЗП", Data: tok(kindFermaKind, fermaKindMaterials)}},
		{{Label: "Пластины МЗП", Data: tok(kindFermaKind, fermaKindPlates)}},
	}
	if !d.acc.Empty() {
		kb = append(kb, []Button{{Label: btnDone, Data: tokSubmit}})
	}
	return Prompt{Text: msgFermaKind, Keyboard: append(kb, mainMenuRow())}
}

// materials lista las posiciones del catálogo general etiquetadas para fermas.
func (f *Ferma) materials(d *fermaData, snap *entity.Snapshot) Prompt {
	var kb [][]Button
	for _, m := range snap.Materials {
		if m.HasTag("Фермы") {
			kb = append(kb, []Button{{Label: chosenLabel(d.acc, m.ID, m.Name), Data: tok(kindMaterial, m.ID)}})
		}
	}
	if !d.acc.Empty() {
		kb = append(kb, []Button{{Label: btnDone, Data: tokSubmit}})
	}
	kb = append(kb, []Button{{Label: btnBack, Data: tokBack}}, mainMenuRow())
	return Prompt{Text: msgChooseMaterial, Keyboard: kb}
}

func (f *Ferma) plateTypes(snap *entity.Snapshot) Prompt {
	kb := make([][]Button, 0, len(snap.PlateTypes)+2)
	for _, t := range snap.PlateTypes {
		kb = append(kb, []Button{{Label: t, Data: tok(kindPlateType, t)}})
	}
	kb = append(kb, []Button{{Label: btnBack, Data: tokBack}}, mainMenuRow())
	return Prompt{Text: msgChoosePlateTyp, Keyboard: kb}
}

func (f *Ferma) plates(d *fermaData, snap *entity.Snapshot) Prompt {
	var kb [][]Button
	for _, p := range snap.PlatesByType(d.plateType) {
		kb = append(kb, []Button{{Label: chosenLabel(d.acc, p.ID, p.Name), Data: tok(kindPlate, p.ID)}})
	}
	if !d.acc.Empty() {
		kb = append(kb, []Button{{Label: btnDone, Data: tokSubmit}})
	}
	kb = append(kb, []Button{{Label: btnBack, Data: tokBack}}, mainMenuRow())
	return Prompt{Text: msgChoosePlate, Keyboard: kb}
}

func (f *Ferma) review(d *fermaData) Prompt {
	return Prompt{
		Text:     "Список к списанию на фермы (" + d.project.Tag + "):\n" + d.acc.Summary(),
		Keyboard: reviewKeyboard(),
	}
}

func (f *Ferma) submit(ctx context.Context, s *Session, d *fermaData) (Prompt, error) {
	if d.acc.Empty() {
		return Prompt{Text: msgListEmpty, Keyboard: reviewKeyboard()}, nil
	}

	ts := f.deps.timestamp()
	actor := f.deps.actorName(s)
	items := d.acc.Items()
	rows := make([]entity.LedgerRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, entity.LedgerRow{
			Date:       ts,
			Operation:  entity.OperationExpense,
			Actor:      actor,
			Direction:  department(s, "Производство"),
			Item:       it.Name,
			Quantity:   it.Qty,
			Unit:       it.Unit,
			ProjectTag: d.project.Tag,
		})
	}
	if err := f.deps.Ledger.AppendLedger(ctx, rows); err != nil {
		f.deps.Log.Error().Err(err).
			Int64("chat_id", s.ChatID).
			Str("project", d.project.Tag).
			Int("rows", len(rows)).
			Msg("fallo al escribir el списание a fermas")
		d.step = feReview
		return Prompt{Text: msgWriteFailed, Keyboard: retryKeyboard()}, nil
	}

	f.deps.Log.Info().
		Int64("chat_id", s.ChatID).
		Str("project", d.project.Tag).
		Int("rows", len(rows)).
		Msg("списание a fermas registrado")
	s.EndFlow()
	return Prompt{
		Text:     "Записано позиций: " + strconv.Itoa(len(rows)) + " (проект " + d.project.Tag + ").",
		Keyboard: menuOnly(),
	}, nil
}
