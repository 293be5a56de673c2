package catalog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/application/catalog"
	"github.com/pippoche/svbot/internal/domain/entity"
)

func TestMirror_IdaYVuelta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	snap := &entity.Snapshot{
		Projects: []entity.Project{{ID: "1", Tag: "D-101", Customer: "Петров П.П.", Status: "готов"}},
		Employees: []entity.Employee{
			{ID: "1", Name: "Иванов Иван", Login: "ivan", Role: "Производство", Access: true},
		},
		Materials:   []entity.Material{{ID: "3", Name: "Лист 2мм", Unit: "шт", DealTypes: "Ферм"}},
		Instruments: []entity.Instrument{{ID: 5, Name: "Перфоратор", Unit: "шт", Stock: decimal.NewFromInt(1)}},
		URLs:        map[string]string{"Закупка материалов": "https://forms.example/purchase"},
		LastUpdated: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	}

	require.NoError(t, catalog.SaveMirror(path, snap))

	got, err := catalog.LoadMirror(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Projects, got.Projects)
	assert.Equal(t, snap.Employees, got.Employees)
	assert.Equal(t, snap.URLs, got.URLs)
	assert.True(t, snap.LastUpdated.Equal(got.LastUpdated))
	require.Len(t, got.Instruments, 1)
	assert.True(t, got.Instruments[0].Stock.Equal(decimal.NewFromInt(1)),
		"las cantidades decimales sobreviven la serialización")
}

func TestMirror_ArchivoAusente(t *testing.T) {
	_, err := catalog.LoadMirror(filepath.Join(t.TempDir(), "no-existe.json"))
	assert.Error(t, err)
}

func TestMirror_ArchivoCorrupto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{esto no es json"), 0o644))

	_, err := catalog.LoadMirror(path)
	assert.Error(t, err)
}

func TestMirror_ReparaURLsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, catalog.SaveMirror(path, &entity.Snapshot{}))

	got, err := catalog.LoadMirror(path)
	require.NoError(t, err)
	assert.NotNil(t, got.URLs, "un espejo sin URLs carga con mapa vacío, no nil")
}

func TestMirror_SobrescrituraAtomica(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, catalog.SaveMirror(path, &entity.Snapshot{
		Projects: []entity.Project{{ID: "1", Tag: "vieja"}},
	}))
	require.NoError(t, catalog.SaveMirror(path, &entity.Snapshot{
		Projects: []entity.Project{{ID: "2", Tag: "nueva"}},
	}))

	got, err := catalog.LoadMirror(path)
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "nueva", got.Projects[0].Tag)
}
