package flow

import (
	"context"
	"strings"

	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgEnterCustomer  = "Введите заказчика:"
	msgEnterTag       = "Введите номер договора:"
	msgTagTaken       = "Проект с таким номером уже существует. Введите другой номер:"
	msgChooseDirect   = "Выберите направление:"
	msgProjectCreated = "Проект создан"
)

type projectStep int

const (
	prCustomer projectStep = iota
	prTag
	prDirection
)

type projectData struct {
	step     projectStep
	customer string
	tag      string
}

func (*projectData) Flow() ID { return FlowProject }

// Project da de alta un proyecto: заказчик, номер договора y направление.
// El alta es un append puntual al catálogo con estado inicial "В работе".
type Project struct {
	deps Deps
}

func NewProject(deps Deps) *Project { return &Project{deps: deps} }

func (p *Project) ID() ID               { return FlowProject }
func (p *Project) Entry() entity.Action { return entity.ActionCreateProject }

func (p *Project) Start(ctx context.Context, s *Session) (Prompt, error) {
	s.StartFlow(&projectData{step: prCustomer})
	return Prompt{Text: msgEnterCustomer, Keyboard: menuOnly()}, nil
}

func (p *Project) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*projectData)

	switch d.step {
	case prCustomer:
		if !in.IsText() || strings.TrimSpace(in.Text) == "" {
			return Prompt{Text: msgEnterCustomer}, nil
		}
		d.customer = strings.TrimSpace(in.Text)
		d.step = prTag
		return Prompt{Text: msgEnterTag}, nil

	case prTag:
		if !in.IsText() || strings.TrimSpace(in.Text) == "" {
			return Prompt{Text: msgEnterTag}, nil
		}
		tag := strings.TrimSpace(in.Text)
		if _, ok := p.deps.Catalog.Snapshot().ProjectByTag(tag); ok {
			return Prompt{Text: msgTagTaken}, nil
		}
		d.tag = tag
		d.step = prDirection
		return Prompt{Text: msgChooseDirect, Keyboard: p.directions()}, nil

	case prDirection:
		kind, dir := splitTok(in.Callback)
		if kind != kindDirection {
			return Prompt{Text: msgChooseDirect, Keyboard: p.directions()}, nil
		}
		proj, err := p.deps.Catalog.AddProject(ctx, d.customer, d.tag, dir)
		if err != nil {
			p.deps.Log.Error().Err(err).
				Int64("chat_id", s.ChatID).
				Str("tag", d.tag).
				Msg("fallo al crear el proyecto")
			return Prompt{Text: msgWriteFailed, Keyboard: p.directions()}, nil
		}
		p.deps.Log.Info().
			Int64("chat_id", s.ChatID).
			Str("id", proj.ID).
			Str("tag", proj.Tag).
			Str("direction", proj.Direction).
			Msg("proyecto creado")
		s.EndFlow()
		return Prompt{
			Text:     msgProjectCreated + ": " + proj.Tag + " (" + proj.Customer + ", " + proj.Direction + ").",
			Keyboard: menuOnly(),
		}, nil
	}
	return Prompt{}, nil
}

func (p *Project) directions() [][]Button {
	kb := make([][]Button, 0, len(entity.ProjectDirections)+1)
	for _, dir := range entity.ProjectDirections {
		kb = append(kb, []Button{{Label: dir, Data: tok(kindDirection, dir)}})
	}
	return append(kb, mainMenuRow())
}
