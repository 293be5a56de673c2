package flow

import (
	"context"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgChooseStatus  = "Выберите новый статус:"
	msgStatusChanged = "Статус обновлён"
)

// statusChoices es la lista fija que se ofrece al cambiar el estado.
var statusChoices = []string{
	entity.StatusInProgress,
	entity.StatusProductReady,
	entity.StatusConstruction,
	entity.StatusPaused,
	entity.StatusDone,
}

type statusStep int

const (
	stProject statusStep = iota
	stStatus
)

type statusData struct {
	step    statusStep
	project entity.Project
}

func (*statusData) Flow() ID { return FlowStatus }

// Status cambia el estado de un proyecto: parche de celda en la hoja y en el
// snapshot, sin tocar el resto de la fila.
type Status struct {
	deps Deps
}

func NewStatus(deps Deps) *Status { return &Status{deps: deps} }

func (st *Status) ID() ID               { return FlowStatus }
func (st *Status) Entry() entity.Action { return entity.ActionStatusChange }

func (st *Status) Start(ctx context.Context, s *Session) (Prompt, error) {
	projects := st.deps.Catalog.ProjectsFor(role(s))
	if len(projects) == 0 {
		return Prompt{Text: msgNoProjects, Keyboard: menuOnly()}, nil
	}
	s.StartFlow(&statusData{step: stProject})
	return Prompt{Text: msgChooseProject, Keyboard: projectKeyboard(projects)}, nil
}

func (st *Status) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*statusData)

	switch d.step {
	case stProject:
		kind, tag := splitTok(in.Callback)
		if kind != kindProject {
			return Prompt{Text: msgChooseProject}, nil
		}
		p, ok := st.deps.Catalog.Snapshot().ProjectByTag(tag)
		if !ok {
			return Prompt{}, domain.ErrNotFound
		}
		d.project = p
		d.step = stStatus
		return st.statuses(p), nil

	case stStatus:
		kind, status := splitTok(in.Callback)
		if kind != kindStatus {
			return st.statuses(d.project), nil
		}
		if err := st.deps.Catalog.SetProjectStatus(ctx, d.project.Tag, status); err != nil {
			st.deps.Log.Error().Err(err).
				Int64("chat_id", s.ChatID).
				Str("project", d.project.Tag).
				Str("status", status).
				Msg("fallo al cambiar el estado")
			return Prompt{Text: msgWriteFailed, Keyboard: st.statuses(d.project).Keyboard}, nil
		}
		st.deps.Log.Info().
			Int64("chat_id", s.ChatID).
			Str("project", d.project.Tag).
			Str("from", d.project.Status).
			Str("to", status).
			Msg("estado de proyecto actualizado")
		s.EndFlow()
		return Prompt{
			Text:     msgStatusChanged + ": " + d.project.Tag + " -> " + status + ".",
			Keyboard: menuOnly(),
		}, nil
	}
	return Prompt{}, nil
}

func (st *Status) statuses(p entity.Project) Prompt {
	kb := make([][]Button, 0, len(statusChoices)+1)
	for _, status := range statusChoices {
		kb = append(kb, []Button{{Label: status, Data: tok(kindStatus, status)}})
	}
	kb = append(kb, mainMenuRow())
	return Prompt{
		Text:     currentStatusLine(p) + msgChooseStatus,
		Keyboard: kb,
	}
}

// currentStatusLine antepone el estado actual del proyecto al prompt.
func currentStatusLine(p entity.Project) string {
	if p.Status == "" {
		return ""
	}
	return "Текущий статус " + p.Tag + ": " + p.Status + "\n"
}
