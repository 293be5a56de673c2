package flow

import (
	"context"
	"errors"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgChooseAction   = "Выберите действие:"
	msgNotAllowed     = "Это действие вам недоступно."
	msgActionFailed   = "Произошла ошибка. Попробуйте ещё раз."
	msgItemGone       = "Элемент не найден: каталог обновился. Начните заново."
	msgCacheRefreshed = "Кэш обновлён."
	msgNoWebForm      = "Ссылка для этого действия не настроена."
	btnResetLogin     = "Сменить пользователя"
)

// Event es el update entrante ya normalizado por el transporte.
type Event struct {
	ChatID   int64
	Username string
	Command  string // comando sin barra ("start"), vacío si no lo es
	Input
}

// Engine enruta cada evento a su flujo. Es el único punto que toca las
// sesiones; el transporte solo entrega eventos y pinta prompts.
type Engine struct {
	deps     Deps
	sessions *Store
	auth     *Auth
	handlers map[ID]Handler
	byAction map[entity.Action]Handler
}

// NewEngine construye el motor con todos los flujos registrados.
func NewEngine(deps Deps) *Engine {
	e := &Engine{
		deps:     deps,
		sessions: NewStore(),
		auth:     NewAuth(deps),
		handlers: make(map[ID]Handler),
		byAction: make(map[entity.Action]Handler),
	}
	e.register(e.auth)
	e.register(NewWriteOff(deps))
	e.register(NewFerma(deps))
	e.register(NewExpense(deps))
	e.register(NewDelivery(deps))
	e.register(NewInstrument(deps))
	e.register(NewNewInstrument(deps))
	e.register(NewProject(deps))
	e.register(NewStatus(deps))
	e.register(NewIssue(deps))
	return e
}

func (e *Engine) register(h Handler) {
	e.handlers[h.ID()] = h
	if a := h.Entry(); a != "" {
		e.byAction[a] = h
	}
}

// Process atiende un evento y devuelve el prompt a pintar. Nunca entra en
// pánico hacia el transporte: los errores de flujo abortan al menú.
func (e *Engine) Process(ctx context.Context, ev Event) (out Prompt) {
	e.sessions.Do(ev.ChatID, func(s *Session) {
		if ev.Username != "" {
			s.Username = ev.Username
		}
		out = e.dispatch(ctx, s, ev)
	})
	return out
}

func (e *Engine) dispatch(ctx context.Context, s *Session, ev Event) Prompt {
	// Escapes universales: válidos en cualquier estado, con o sin identidad.
	if ev.Command == "start" || ev.Callback == tokResetLogin {
		s.Reset()
		p, _ := e.auth.Start(ctx, s)
		return p
	}

	if s.Identity == nil {
		if s.ActiveFlow() != FlowAuth {
			p, _ := e.auth.Start(ctx, s)
			return p
		}
		p, err := e.auth.Handle(ctx, s, ev.Input)
		if err != nil {
			return e.abort(s, err)
		}
		if s.Identity != nil {
			return e.menu(s)
		}
		return p
	}

	if ev.Callback == tokMainMenu {
		s.EndFlow()
		return e.menu(s)
	}

	if id := s.ActiveFlow(); id != "" {
		p, err := e.handlers[id].Handle(ctx, s, ev.Input)
		if err != nil {
			return e.abort(s, err)
		}
		if s.ActiveFlow() == "" && p.Text == "" {
			return e.menu(s)
		}
		return p
	}

	if kind, val := splitTok(ev.Callback); kind == kindAction {
		return e.startAction(ctx, s, entity.Action(val))
	}

	// Texto suelto u origen desconocido fuera de flujo: de vuelta al menú.
	return e.menu(s)
}

// startAction valida el permiso y arranca la acción pedida.
func (e *Engine) startAction(ctx context.Context, s *Session, action entity.Action) Prompt {
	if !e.allowed(s, action) {
		e.deps.Log.Warn().
			Int64("chat_id", s.ChatID).
			Str("role", role(s)).
			Str("action", string(action)).
			Msg("acción no permitida para el rol")
		return Prompt{Text: msgNotAllowed, Keyboard: menuOnly()}
	}

	switch action {
	case entity.ActionRefreshCache:
		if err := e.deps.Catalog.Refresh(ctx, true); err != nil {
			e.deps.Log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("refresco manual fallido")
			return Prompt{Text: msgActionFailed, Keyboard: menuOnly()}
		}
		return Prompt{Text: msgCacheRefreshed, Keyboard: menuOnly()}

	case entity.ActionWebWriteOff, entity.ActionPurchase, entity.ActionVolumes:
		url := e.deps.Catalog.WebFormURL(action.Label())
		if url == "" {
			return Prompt{Text: msgNoWebForm, Keyboard: menuOnly()}
		}
		return Prompt{Text: action.Label() + ":\n" + url, Keyboard: menuOnly()}
	}

	h, ok := e.byAction[action]
	if !ok {
		return e.menu(s)
	}
	p, err := h.Start(ctx, s)
	if err != nil {
		return e.abort(s, err)
	}
	return p
}

func (e *Engine) allowed(s *Session, action entity.Action) bool {
	for _, a := range e.deps.Catalog.AllowedActions(role(s)) {
		if a == action {
			return true
		}
	}
	return false
}

// abort corta el flujo activo y devuelve al usuario al menú con un mensaje
// acorde a la causa.
func (e *Engine) abort(s *Session, err error) Prompt {
	e.deps.Log.Error().Err(err).
		Int64("chat_id", s.ChatID).
		Str("flow", string(s.ActiveFlow())).
		Msg("flujo abortado")
	s.EndFlow()
	text := msgActionFailed
	if errors.Is(err, domain.ErrNotFound) {
		text = msgItemGone
	}
	return Prompt{Text: text, Keyboard: menuOnly()}
}

// menu pinta el menú principal filtrado por los permisos del rol.
func (e *Engine) menu(s *Session) Prompt {
	actions := e.deps.Catalog.AllowedActions(role(s))
	kb := make([][]Button, 0, len(actions)+1)
	for _, a := range actions {
		kb = append(kb, []Button{{Label: a.Label(), Data: tok(kindAction, string(a))}})
	}
	kb = append(kb, []Button{{Label: btnResetLogin, Data: tokResetLogin}})

	text := msgChooseAction
	if s.Identity != nil {
		text = s.Identity.Name + ", " + msgChooseAction
	}
	return Prompt{Text: text, Keyboard: kb}
}
