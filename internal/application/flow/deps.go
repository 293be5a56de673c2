package flow

import (
	"context"
	"time"

	"github.com/pippoche/svbot/internal/application/catalog"
	"github.com/pippoche/svbot/internal/domain/entity"
	"github.com/pippoche/svbot/internal/domain/repository"
	"github.com/pippoche/svbot/pkg/logger"
)

// Deps agrupa los colaboradores que comparten todos los flujos.
type Deps struct {
	Catalog *catalog.Cache
	Ledger  repository.LedgerWriter
	Custody repository.CustodyWriter
	Issues  repository.IssueWriter
	Log     *logger.Logger
	Now     func() time.Time
}

// Handler es un flujo de negocio: máquina de estados que guía al usuario paso
// a paso. Start arranca el flujo en la sesión; Handle procesa el siguiente
// evento. Los escapes universales (menú, /start) los intercepta el motor
// antes de llegar aquí.
type Handler interface {
	ID() ID
	// Entry es la acción de menú que arranca el flujo; vacía si el flujo no
	// cuelga del menú (autenticación).
	Entry() entity.Action
	Start(ctx context.Context, s *Session) (Prompt, error)
	Handle(ctx context.Context, s *Session, in Input) (Prompt, error)
}

// timestamp produce la marca de tiempo con la que se escriben las filas.
func (d Deps) timestamp() string {
	return d.Now().Format("2006-01-02 15:04:05")
}

// actorName resuelve el Ф.И.О del actor desde la hoja de empleados; si el
// login ya no está en el catálogo se registra con el login tal cual.
func (d Deps) actorName(s *Session) string {
	if s.Identity == nil {
		return "unknown"
	}
	if e, ok := d.Catalog.Snapshot().EmployeeByLogin(s.Identity.Login); ok {
		return e.Name
	}
	return s.Identity.Login
}

// role devuelve el rol de la sesión (vacío si no hay identidad).
func role(s *Session) string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// department devuelve el departamento de la sesión con un valor por defecto.
func department(s *Session, def string) string {
	if s.Identity == nil || s.Identity.Department == "" {
		return def
	}
	return s.Identity.Department
}
