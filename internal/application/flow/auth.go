package flow

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pippoche/svbot/internal/domain/entity"
)

const (
	msgEnterLogin    = "Введите ваш логин:"
	msgEnterPassword = "Введите пароль:"
	msgBadLogin      = "Логин не найден. Попробуйте ещё раз:"
	msgBadPassword   = "Неверный пароль. Попробуйте ещё раз:"
	msgNoAccess      = "Доступ закрыт. Обратитесь к администратору."
)

type authStep int

const (
	authAskLogin authStep = iota
	authAskPassword
)

type authData struct {
	step  authStep
	login string
}

func (authData) Flow() ID { return FlowAuth }

// Auth pide login y contraseña y fija la identidad de la sesión contra la
// hoja de empleados. La contraseña almacenada puede ser un hash bcrypt o
// texto plano heredado; se aceptan ambas.
type Auth struct {
	deps Deps
}

func NewAuth(deps Deps) *Auth { return &Auth{deps: deps} }

func (a *Auth) ID() ID               { return FlowAuth }
func (a *Auth) Entry() entity.Action { return "" }

func (a *Auth) Start(ctx context.Context, s *Session) (Prompt, error) {
	s.StartFlow(&authData{step: authAskLogin})
	return Prompt{Text: msgEnterLogin}, nil
}

func (a *Auth) Handle(ctx context.Context, s *Session, in Input) (Prompt, error) {
	d := s.Data().(*authData)
	if !in.IsText() {
		switch d.step {
		case authAskLogin:
			return Prompt{Text: msgEnterLogin}, nil
		default:
			return Prompt{Text: msgEnterPassword}, nil
		}
	}
	switch d.step {
	case authAskLogin:
		login := strings.TrimSpace(in.Text)
		if _, ok := a.deps.Catalog.Snapshot().EmployeeByLogin(login); !ok {
			return Prompt{Text: msgBadLogin}, nil
		}
		d.login = login
		d.step = authAskPassword
		return Prompt{Text: msgEnterPassword}, nil

	case authAskPassword:
		emp, ok := a.deps.Catalog.Snapshot().EmployeeByLogin(d.login)
		if !ok {
			// El refresco pudo retirar al empleado entre pasos.
			d.step = authAskLogin
			return Prompt{Text: msgBadLogin}, nil
		}
		if !verifyPassword(emp.Password, strings.TrimSpace(in.Text)) {
			return Prompt{Text: msgBadPassword}, nil
		}
		if !emp.Access {
			s.EndFlow()
			return Prompt{Text: msgNoAccess}, nil
		}
		s.Identity = &Identity{
			Login:      emp.Login,
			Name:       emp.Name,
			Role:       emp.Role,
			Department: emp.Department,
		}
		s.EndFlow()
		a.deps.Log.Info().
			Int64("chat_id", s.ChatID).
			Str("login", emp.Login).
			Str("role", emp.Role).
			Msg("usuario autenticado")
		return Prompt{}, nil
	}
	return Prompt{Text: msgEnterLogin}, nil
}

// verifyPassword compara contra hash bcrypt cuando lo parece, si no en
// tiempo constante contra el valor plano.
func verifyPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
