package flow

import (
	"context"
	"strconv"
	"strings"

	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgDescribeIssue = "Опишите проблему одним сообщением:"
	msgIssueSaved    = "Спасибо! Сообщение передано администратору."
	msgIssueFailed   = "Не удалось сохранить сообщение. Отправьте его ещё раз."
)

type issueData struct{}

func (issueData) Flow() ID { return FlowIssue }

// Issue recoge un reporte de problema en texto libre y lo vuelca en la tabla
// de errores junto al chat y al username del autor.
type Issue struct {
	deps Deps
}

func NewIssue(deps Deps) *Issue { return &Issue{deps: deps} }

func (i *Issue) ID() ID               { return FlowIssue }
func (i *Issue) Entry() entity.Action { return entity.ActionReportIssue }

func (i *Issue) Start(ctx context.Context, s *Session) (Prompt, error) {
	s.StartFlow(issueData{})
	return Prompt{Text: msgDescribeIssue, Keyboard: menuOnly()}, nil
}

func (i *Issue) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	if !in.IsText() || strings.TrimSpace(in.Text) == "" {
		return Prompt{Text: msgDescribeIssue, Keyboard: menuOnly()}, nil
	}

	row := entity.IssueRow{
		UserID:   strconv.FormatInt(s.ChatID, 10),
		Date:     i.deps.timestamp(),
		Username: s.Username,
		Text:     in.Text,
	}
	if err := i.deps.Issues.AppendIssue(ctx, row); err != nil {
		i.deps.Log.Error().Err(err).
			Int64("chat_id", s.ChatID).
			Msg("fallo al guardar el reporte de problema")
		return Prompt{Text: msgIssueFailed, Keyboard: menuOnly()}, nil
	}

	i.deps.Log.Info().
		Int64("chat_id", s.ChatID).
		Str("username", s.Username).
		Msg("reporte de problema guardado")
	s.EndFlow()
	return Prompt{Text: msgIssueSaved, Keyboard: menuOnly()}, nil
}
