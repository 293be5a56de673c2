package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/domain/entity"
)

func TestPermisos_EstadosCompuestosSeReensamblan(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	statuses := c.VisibleStatuses("Производство")
	assert.Equal(t, []string{"В работе", "Продукция готова", "готов"}, statuses,
		"los estados de dos palabras deben volver a unirse tras el split por espacios")
}

func TestPermisos_AccionesPorSubcadena(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	actions := c.AllowedActions("Производство")
	assert.Contains(t, actions, entity.ActionFermaWriteOff)
	assert.Contains(t, actions, entity.ActionWriteOff,
		"\"Списать материалы\" es subcadena de la etiqueta de fermas y queda incluida")
	assert.Contains(t, actions, entity.ActionInstrument)
	assert.Contains(t, actions, entity.ActionReportIssue)
	assert.NotContains(t, actions, entity.ActionCreateProject)
}

func TestPermisos_RolInsensibleAMayusculas(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	assert.NotEmpty(t, c.AllowedActions("производство"),
		"la fila de permisos se resuelve sin distinguir mayúsculas")
}

func TestProjectsFor_FiltraPorEstadosVisibles(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	// Офис solo ve "В работе": D-101 está en "готов" y queda fuera.
	projects := c.ProjectsFor("Офис")
	require.Len(t, projects, 1)
	assert.Equal(t, "D-102", projects[0].Tag)

	// Производство ve ambos estados.
	assert.Len(t, c.ProjectsFor("Производство"), 2)
}

func TestProjectsFor_RolVacioYDesconocido(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	assert.Len(t, c.ProjectsFor(""), 2, "sin rol se sirve la lista completa")
	assert.Empty(t, c.ProjectsFor("Бухгалтерия"), "un rol sin fila de permisos no ve nada")
}

func TestCanActAtStatus(t *testing.T) {
	src := &fakeSource{grids: testGrids()}
	c := newTestCache(src, &fakeWriter{})
	require.NoError(t, c.Refresh(context.Background(), true))

	assert.True(t, c.CanActAtStatus("Производство", "В работе", entity.ActionInstrument))
	assert.True(t, c.CanActAtStatus("Производство", "в РАБОТЕ", entity.ActionInstrument),
		"la comparación de estado ignora mayúsculas y espacios")
	assert.False(t, c.CanActAtStatus("Производство", "Приостановлен", entity.ActionInstrument),
		"estado fuera de la lista visible")
	assert.False(t, c.CanActAtStatus("Производство", "В работе", entity.ActionCreateProject),
		"acción no concedida al rol")
	assert.False(t, c.CanActAtStatus("Бухгалтерия", "В работе", entity.ActionInstrument))
}
