package repository

import (
	"context"

	"github.com/pippoche/svbot/internal/domain/entity"
)

// Nombres de las hojas del almacén (contrato externo).
const (
	SheetProjects    = "Проекты"
	SheetEmployees   = "Сотрудники"
	SheetPermissions = "Действия и разрешения"
	SheetMaterials   = "Материалы"
	SheetPlates      = "Пластины МЗП"
	SheetURLs        = "URL действия"
	SheetLedger      = "Данные"
	SheetInstruments = "Инструмент"
	SheetCustody     = "Где инструмент"
	SheetIssues      = "Ошибки"
)

// TableSource lee una tabla completa del almacén como rejilla de celdas.
// El caché localiza la fila de cabecera por coincidencia difusa; este puerto
// no interpreta nada.
type TableSource interface {
	ReadTable(ctx context.Context, sheet string) ([][]string, error)
}

// LedgerWriter añade filas al libro ("Данные"). Atómico por llamada desde la
// perspectiva del motor: o entran todas las filas o se reporta error.
type LedgerWriter interface {
	AppendLedger(ctx context.Context, rows []entity.LedgerRow) error
}

// CustodyWriter añade movimientos de custodia de herramienta ("Где инструмент").
type CustodyWriter interface {
	AppendCustody(ctx context.Context, rows []entity.CustodyRow) error
}

// IssueWriter registra reportes de problema ("Ошибки").
type IssueWriter interface {
	AppendIssue(ctx context.Context, row entity.IssueRow) error
}

// CatalogWriter muta las tablas de catálogo: altas puntuales y parches de
// celda. El caché escribe primero aquí y después publica el snapshot parcheado.
type CatalogWriter interface {
	AppendProject(ctx context.Context, p entity.Project) error
	AppendInstrument(ctx context.Context, ins entity.Instrument) error
	UpdateProjectStatus(ctx context.Context, tag, status string) error
	UpdateProjectReportLink(ctx context.Context, tag, url string) error
}
