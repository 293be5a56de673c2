package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pippoche/svbot/internal/domain/entity"
	"github.com/pippoche/svbot/internal/domain/repository"
	"github.com/pippoche/svbot/pkg/logger"
)

// Cache mantiene el snapshot compartido del catálogo. Refresh construye un
// snapshot completo aparte y lo publica con un único store atómico: los
// lectores concurrentes ven siempre el snapshot viejo entero o el nuevo
// entero, nunca uno a medias. Las altas puntuales (proyecto, instrumento)
// escriben primero en el almacén y después publican una copia parcheada;
// frente a un Refresh concurrente gana el último que publica.
type Cache struct {
	source repository.TableSource
	writer repository.CatalogWriter
	ttl    time.Duration
	log    *logger.Logger
	now    func() time.Time

	mu   sync.Mutex // serializa Refresh y parches entre sí
	snap atomic.Pointer[entity.Snapshot]
}

// New construye el caché. ttl es la ventana de frescura de Refresh sin force.
func New(source repository.TableSource, writer repository.CatalogWriter, ttl time.Duration, log *logger.Logger) *Cache {
	c := &Cache{
		source: source,
		writer: writer,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
	c.snap.Store(&entity.Snapshot{URLs: map[string]string{}})
	return c
}

// Snapshot devuelve el snapshot vigente. Nunca bloquea en red: sirve el último
// cargado con éxito (o uno vacío si aún no hubo carga).
func (c *Cache) Snapshot() *entity.Snapshot {
	return c.snap.Load()
}

// Seed publica un snapshot precargado (espejo en disco) sin tocar el almacén.
func (c *Cache) Seed(s *entity.Snapshot) {
	if s == nil {
		return
	}
	if s.URLs == nil {
		s.URLs = map[string]string{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Store(s)
}

// Refresh recarga todas las tablas y publica el snapshot nuevo. Con force en
// false se omite si el snapshot vigente es más joven que la ventana de
// frescura. Si el almacén falla se conserva el snapshot viejo y se devuelve
// el error; una tabla sin cabecera reconocible queda vacía sin abortar el
// resto (se registra la condición).
func (c *Cache) Refresh(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load()
	if !force && !cur.LastUpdated.IsZero() && c.now().Sub(cur.LastUpdated) < c.ttl {
		c.log.Debug().Time("last_updated", cur.LastUpdated).Msg("catálogo fresco, se omite el refresh")
		return nil
	}

	next := &entity.Snapshot{URLs: map[string]string{}}

	grid, err := c.source.ReadTable(ctx, repository.SheetProjects)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetProjects, err)
	}
	next.Projects = parseProjects(grid)
	c.warnIfEmpty(repository.SheetProjects, len(next.Projects), len(grid))

	grid, err = c.source.ReadTable(ctx, repository.SheetEmployees)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetEmployees, err)
	}
	next.Employees = parseEmployees(grid)
	c.warnIfEmpty(repository.SheetEmployees, len(next.Employees), len(grid))

	grid, err = c.source.ReadTable(ctx, repository.SheetPermissions)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetPermissions, err)
	}
	next.Permissions = parsePermissions(grid)

	grid, err = c.source.ReadTable(ctx, repository.SheetMaterials)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetMaterials, err)
	}
	next.Materials = parseMaterials(grid)
	c.warnIfEmpty(repository.SheetMaterials, len(next.Materials), len(grid))

	grid, err = c.source.ReadTable(ctx, repository.SheetPlates)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetPlates, err)
	}
	next.PlateTypes, next.Plates = parsePlates(grid)

	grid, err = c.source.ReadTable(ctx, repository.SheetURLs)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetURLs, err)
	}
	next.URLs = parseURLs(grid)

	grid, err = c.source.ReadTable(ctx, repository.SheetInstruments)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetInstruments, err)
	}
	next.Instruments = parseInstruments(grid)

	grid, err = c.source.ReadTable(ctx, repository.SheetCustody)
	if err != nil {
		return fmt.Errorf("leer %s: %w", repository.SheetCustody, err)
	}
	next.Custody = parseCustody(grid)

	next.LastUpdated = c.now()
	c.snap.Store(next)

	c.log.Info().
		Int("projects", len(next.Projects)).
		Int("employees", len(next.Employees)).
		Int("materials", len(next.Materials)).
		Int("instruments", len(next.Instruments)).
		Int("plates", len(next.Plates)).
		Msg("catálogo recargado")
	return nil
}

func (c *Cache) warnIfEmpty(sheet string, records, gridRows int) {
	if records == 0 && gridRows > 0 {
		c.log.Warn().Str("sheet", sheet).Msg("cabecera no reconocida, tabla en caché vacía")
	}
}

// AddProject crea el proyecto en el almacén y lo publica en el snapshot al
// momento, sin esperar al siguiente refresh. ID = máximo vigente + 1 y estado
// inicial "В работе", como dicta la hoja.
func (c *Cache) AddProject(ctx context.Context, customer, tag, direction string) (entity.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load()
	maxID := 0
	for _, p := range cur.Projects {
		if n, err := strconv.Atoi(p.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	p := entity.Project{
		ID:        strconv.Itoa(maxID + 1),
		Customer:  customer,
		Tag:       tag,
		Direction: direction,
		Status:    entity.StatusInProgress,
		CreatedAt: c.now().Format("2006-01-02 15:04:05"),
	}
	if err := c.writer.AppendProject(ctx, p); err != nil {
		return entity.Project{}, fmt.Errorf("alta de proyecto: %w", err)
	}

	next := *cur
	next.Projects = append(slices.Clone(cur.Projects), p)
	c.snap.Store(&next)
	return p, nil
}

// AddInstrument crea el instrumento en el almacén y lo publica en el snapshot.
func (c *Cache) AddInstrument(ctx context.Context, name, unit string, qty decimal.Decimal) (entity.Instrument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.snap.Load()
	ins := entity.Instrument{
		ID:    cur.MaxInstrumentID() + 1,
		Name:  name,
		Unit:  unit,
		Stock: qty,
	}
	if err := c.writer.AppendInstrument(ctx, ins); err != nil {
		return entity.Instrument{}, fmt.Errorf("alta de instrumento: %w", err)
	}

	next := *cur
	next.Instruments = append(slices.Clone(cur.Instruments), ins)
	c.snap.Store(&next)
	return ins, nil
}

// SetProjectStatus cambia el estado en el almacén y parchea el snapshot.
func (c *Cache) SetProjectStatus(ctx context.Context, tag, status string) error {
	if err := c.writer.UpdateProjectStatus(ctx, tag, status); err != nil {
		return fmt.Errorf("cambiar estado: %w", err)
	}
	c.patchProject(tag, func(p *entity.Project) { p.Status = status })
	return nil
}

// SetProjectReportLink fija la URL del informe en el almacén y en el snapshot.
func (c *Cache) SetProjectReportLink(ctx context.Context, tag, url string) error {
	if err := c.writer.UpdateProjectReportLink(ctx, tag, url); err != nil {
		return fmt.Errorf("fijar enlace de informe: %w", err)
	}
	c.patchProject(tag, func(p *entity.Project) { p.ReportLink = url })
	return nil
}

func (c *Cache) patchProject(tag string, patch func(*entity.Project)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.snap.Load()
	projects := slices.Clone(cur.Projects)
	for i := range projects {
		if projects[i].Tag == tag {
			patch(&projects[i])
		}
	}
	next := *cur
	next.Projects = projects
	c.snap.Store(&next)
}

// PatchCustody añade movimientos de custodia al snapshot (el almacén ya los
// tiene; esto evita esperar al siguiente refresh).
func (c *Cache) PatchCustody(rows []entity.CustodyRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.snap.Load()
	next := *cur
	next.Custody = append(slices.Clone(cur.Custody), rows...)
	c.snap.Store(&next)
}

// WebFormURL devuelve la URL registrada para la acción, o cadena vacía.
func (c *Cache) WebFormURL(actionLabel string) string {
	return c.snap.Load().URLs[actionLabel]
}
