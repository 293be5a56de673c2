package catalog_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/application/catalog"
	"github.com/pippoche/svbot/internal/domain/entity"
	"github.com/pippoche/svbot/internal/domain/repository"
	"github.com/pippoche/svbot/pkg/logger"
)

// fakeSource sirve rejillas en memoria y permite inyectar fallos por hoja.
type fakeSource struct {
	grids map[string][][]string
	fail  map[string]error
	calls int
}

func (f *fakeSource) ReadTable(_ context.Context, sheet string) ([][]string, error) {
	f.calls++
	if err, ok := f.fail[sheet]; ok {
		return nil, err
	}
	return f.grids[sheet], nil
}

// fakeWriter registra las mutaciones de catálogo.
type fakeWriter struct {
	projects    []entity.Project
	instruments []entity.Instrument
	statuses    map[string]string
	err         error
}

func (f *fakeWriter) AppendProject(_ context.Context, p entity.Project) error {
	if f.err != nil {
		return f.err
	}
	f.projects = append(f.projects, p)
	return nil
}

func (f *fakeWriter) AppendInstrument(_ context.Context, ins entity.Instrument) error {
	if f.err != nil {
		return f.err
	}
	f.instruments = append(f.instruments, ins)
	return nil
}

func (f *fakeWriter) UpdateProjectStatus(_ context.Context, tag, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.statuses == nil {
		f.statuses = map[string]string{}
	}
	f.statuses[tag] = status
	return nil
}

func (f *fakeWriter) UpdateProjectReportLink(_ context.Context, tag, url string) error {
	return f.err
}

// testGrids devuelve un juego completo de rejillas con filas de título antes
// de las cabeceras, como las hojas reales.
func testGrids() map[string][][]string {
	return map[string][][]string{
		repository.SheetProjects: {
			{"Таблица проектов"},
			{"ID проекта", "Ф.И.О заказчика", "Номер договора", "Тип сделки", "Статус", "Дата создания", "Примечание", "Ссылка на отчёт"},
			{"1", "Петров П.П.", "D-101", "Фермы", "готов", "2024-01-10 10:00:00", "", ""},
			{"7", "Сидоров С.С.", "D-102", "Фермы", "В работе", "2024-03-02 09:30:00", "", ""},
		},
		repository.SheetEmployees: {
			{"ID", "Ф.И.О", "Логин", "Пароль", "Роль", "Отдел", "Доступ"},
			{"1", "Иванов Иван", "ivan", "secret", "Производство", "Производство", "TRUE"},
			{"2", "Смирнов Олег", "oleg", "clave", "Офис", "Офис", "false"},
		},
		repository.SheetPermissions: {
			{"Производство", "В работе Продукция готова готов", "Списать материалы на фермы Инструмент Сообщить о проблеме"},
			{"Офис", "В работе", "Создать проект Смена статуса проекта Добавить расход Доставка Обновление КЭШ-а"},
		},
		repository.SheetMaterials: {
			{"ID", "Наименование", "Ед. измерения", "Тип сделки"},
			{"3", "Лист 2мм", "шт", "Ферм"},
			{"4", "Саморез", "уп", "Все"},
			{"5", "Брус 100х100", "м", "Домокомплект"},
		},
		repository.SheetPlates: {
			{"Пластины МЗП"},
			{"", "Тип пластин"},
			{"", "Двусторонние"},
			{"", "Односторонние"},
			{"", ""},
			{"", ""},
			{"", "Пластина 100", "Двусторонние", "шт", "50"},
			{"", "Пластина 200", "Односторонние", "шт", "20"},
		},
		repository.SheetURLs: {
			{"Действие", "URL"},
			{"Списание материалов (веб-форма)", "https://forms.example/writeoff"},
			{"Закупка материалов", "https://forms.example/purchase"},
		},
		repository.SheetInstruments: {
			{"ID инструмента", "Инструмент", "Ед. измерения", "Кол-во на складе"},
			{"1", "Шуруповёрт", "шт", "3"},
			{"5", "Перфоратор", "шт", "1"},
		},
		repository.SheetCustody: {
			{"№ строки", "Дата", "Тип операции", "Кто", "Номер договора", "Кому выдан инструмент", "Инструмент", "кол-во"},
			{"1", "2024-03-01 12:00:00", "Расход", "Иванов Иван", "D-102", "Бригада 1", "Шуруповёрт", "1"},
		},
	}
}

func newTestCache(src *fakeSource, w *fakeWriter) *catalog.Cache {
	return catalog.New(src, w, time.Hour, logger.Nop())
}

func TestRefresh_CargaCatalogoCompleto(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})

	require.NoError(t, c.Refresh(context.Background(), true))
	snap := c.Snapshot()

	require.Len(t, snap.Projects, 2)
	assert.Equal(t, "D-102", snap.Projects[0].Tag, "los proyectos más recientes van primero")
	assert.Equal(t, "D-101", snap.Projects[1].Tag)

	require.Len(t, snap.Employees, 2)
	emp, ok := snap.EmployeeByLogin("ivan")
	require.True(t, ok)
	assert.True(t, emp.Access, "TRUE de la hoja debe interpretarse como acceso")
	assert.Equal(t, "Иванов Иван", emp.Name)

	require.Len(t, snap.Materials, 3)
	m, ok := snap.MaterialByID("3")
	require.True(t, ok)
	assert.Equal(t, "Лист 2мм", m.Name)
	assert.True(t, m.MatchesDirection("Фермы"))
	assert.False(t, m.MatchesDirection("Домокомплект"))

	assert.Equal(t, []string{"Двусторонние", "Односторонние"}, snap.PlateTypes)
	require.Len(t, snap.Plates, 2)
	assert.Equal(t, "p7", snap.Plates[0].ID, "el id de pластина es posicional por fila")
	assert.Equal(t, "Пластина 100", snap.Plates[0].Name)

	require.Len(t, snap.Instruments, 2)
	ins, ok := snap.InstrumentByID(5)
	require.True(t, ok)
	assert.Equal(t, "Перфоратор", ins.Name)
	assert.True(t, ins.Stock.Equal(decimal.NewFromInt(1)))

	require.Len(t, snap.Custody, 1)
	assert.Equal(t, "Шуруповёрт", snap.Custody[0].Instrument)
	assert.Equal(t, "Бригада 1", snap.Custody[0].Recipient)

	assert.Equal(t, "https://forms.example/purchase", c.WebFormURL("Закупка материалов"))
	assert.False(t, snap.LastUpdated.IsZero())
}

func TestRefresh_FalloDeLecturaConservaSnapshot(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))
	before := c.Snapshot()

	src.fail = map[string]error{repository.SheetMaterials: errors.New("quota exceeded")}
	err := c.Refresh(context.Background(), true)

	require.Error(t, err, "el fallo del almacén debe propagarse")
	assert.Same(t, before, c.Snapshot(), "el snapshot viejo debe seguir publicado tras un refresh fallido")
}

func TestRefresh_CabeceraIrreconocibleDejaTablaVacia(t *testing.T) {
	grids := testGrids()
	grids[repository.SheetMaterials] = [][]string{
		{"esto no es una cabecera"},
		{"tampoco", "esto"},
	}
	src := &fakeSource{grids: grids}
	c := newTestCache(src, &fakeWriter{})

	require.NoError(t, c.Refresh(context.Background(), true), "una cabecera perdida no debe abortar el refresh")
	snap := c.Snapshot()
	assert.Empty(t, snap.Materials, "la tabla sin cabecera queda vacía")
	assert.NotEmpty(t, snap.Projects, "el resto de tablas se carga con normalidad")
}

func TestRefresh_RespetaTTL(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))
	calls := src.calls

	require.NoError(t, c.Refresh(context.Background(), false))
	assert.Equal(t, calls, src.calls, "dentro de la ventana de frescura no se relee el almacén")

	require.NoError(t, c.Refresh(context.Background(), true))
	assert.Greater(t, src.calls, calls, "con force siempre se relee")
}

// Los refrescos completos, las altas puntuales y las lecturas del snapshot
// compiten por la publicación; el test es significativo bajo -race.
func TestRefresh_ConcurrenteConAltasPuntuales(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	w := &fakeWriter{}
	c := newTestCache(src, w)
	require.NoError(t, c.Refresh(context.Background(), true))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(3 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Refresh(context.Background(), true))
		}()
		go func(i int) {
			defer wg.Done()
			_, err := c.AddInstrument(context.Background(), "Ключ "+strconv.Itoa(i), "шт", decimal.NewFromInt(1))
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			snap := c.Snapshot()
			_, _ = snap.ProjectByTag("D-102")
			_ = snap.MaxInstrumentID()
		}()
	}
	wg.Wait()

	assert.Len(t, w.instruments, n, "cada alta llega al almacén aunque el refresco pise el snapshot")
	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.GreaterOrEqual(t, snap.MaxInstrumentID(), 5, "el último escritor publica un snapshot coherente")
}

func TestAddProject_AltaInmediataConIDCorrelativo(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	w := &fakeWriter{}
	c := newTestCache(src, w)
	require.NoError(t, c.Refresh(context.Background(), true))

	p, err := c.AddProject(context.Background(), "Козлов К.К.", "D-103", "Фермы")
	require.NoError(t, err)

	assert.Equal(t, "8", p.ID, "el id es el máximo vigente más uno")
	assert.Equal(t, entity.StatusInProgress, p.Status)
	require.Len(t, w.projects, 1, "el alta pasa por el escritor antes de publicarse")

	got, ok := c.Snapshot().ProjectByTag("D-103")
	require.True(t, ok, "el proyecto nuevo es visible sin esperar al refresh")
	assert.Equal(t, "Козлов К.К.", got.Customer)
}

func TestAddProject_ErrorDelEscritorNoPublica(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	w := &fakeWriter{err: errors.New("write failed")}
	c := newTestCache(src, w)
	require.NoError(t, c.Refresh(context.Background(), true))

	_, err := c.AddProject(context.Background(), "X", "D-900", "Фермы")
	require.Error(t, err)
	_, ok := c.Snapshot().ProjectByTag("D-900")
	assert.False(t, ok, "si el almacén rechaza el alta, el snapshot no cambia")
}

func TestAddInstrument_IDCorrelativo(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	w := &fakeWriter{}
	c := newTestCache(src, w)
	require.NoError(t, c.Refresh(context.Background(), true))

	ins, err := c.AddInstrument(context.Background(), "Лобзик", "шт", decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, 6, ins.ID, "el id sigue al máximo de la hoja (5)")

	got, ok := c.Snapshot().InstrumentByID(6)
	require.True(t, ok)
	assert.Equal(t, "Лобзик", got.Name)
}

func TestSetProjectStatus_ParcheInmediato(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	w := &fakeWriter{}
	c := newTestCache(src, w)
	require.NoError(t, c.Refresh(context.Background(), true))
	before := c.Snapshot()

	require.NoError(t, c.SetProjectStatus(context.Background(), "D-102", entity.StatusDone))

	assert.Equal(t, entity.StatusDone, w.statuses["D-102"])
	got, ok := c.Snapshot().ProjectByTag("D-102")
	require.True(t, ok)
	assert.Equal(t, entity.StatusDone, got.Status)

	// El snapshot anterior no se muta: los lectores en vuelo ven su versión.
	old, _ := before.ProjectByTag("D-102")
	assert.Equal(t, "В работе", old.Status, "el parche publica una copia, nunca muta el snapshot publicado")
}

func TestPatchCustody_VisibleSinRefresh(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	c.PatchCustody([]entity.CustodyRow{{
		Date: "2024-03-03 10:00:00", Operation: "Приход", Actor: "Иванов Иван",
		ProjectTag: "D-102", Recipient: "Склад", Instrument: "Шуруповёрт",
		Quantity: decimal.NewFromInt(1),
	}})

	assert.Len(t, c.Snapshot().Custody, 2)
}

func TestSeed_PublicaElEspejo(t *testing.T) {
	c := newTestCache(&fakeSource{grids: map[string][][]string{}}, &fakeWriter{})
	seed := &entity.Snapshot{
		Projects:    []entity.Project{{ID: "1", Tag: "D-500", Status: "В работе"}},
		LastUpdated: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	c.Seed(seed)

	got, ok := c.Snapshot().ProjectByTag("D-500")
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)
	assert.NotNil(t, c.Snapshot().URLs, "Seed repara el mapa de URLs nil del espejo")
}
