package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippoche/svbot/internal/application/catalog"
	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
	"github.com/pippoche/svbot/pkg/logger"
)

type stubSource struct{ err error }

func (s stubSource) ReadTable(context.Context, string) ([][]string, error) {
	return nil, s.err
}

type stubWriter struct{}

func (stubWriter) AppendProject(context.Context, entity.Project) error           { return nil }
func (stubWriter) AppendInstrument(context.Context, entity.Instrument) error     { return nil }
func (stubWriter) UpdateProjectStatus(context.Context, string, string) error     { return nil }
func (stubWriter) UpdateProjectReportLink(context.Context, string, string) error { return nil }

func TestHealth(t *testing.T) {
	cache := catalog.New(stubSource{}, stubWriter{}, time.Hour, logger.Nop())
	cache.Seed(&entity.Snapshot{
		Projects:    []entity.Project{{ID: "1", Tag: "D-101"}},
		Employees:   []entity.Employee{{ID: "1", Login: "ivan"}},
		LastUpdated: time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	})
	s := New("svbot", cache, logger.Nop())

	resp, err := s.app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["projects"])
	assert.Equal(t, float64(1), body["employees"])
}

func TestAdminRefresh(t *testing.T) {
	cache := catalog.New(stubSource{}, stubWriter{}, time.Hour, logger.Nop())
	s := New("svbot", cache, logger.Nop())

	resp, err := s.app.Test(httptest.NewRequest("POST", "/admin/refresh", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

type notFoundWriter struct{ stubWriter }

func (notFoundWriter) UpdateProjectReportLink(context.Context, string, string) error {
	return fmt.Errorf("proyecto: %w", domain.ErrNotFound)
}

func TestAdminReportLink(t *testing.T) {
	cache := catalog.New(stubSource{}, stubWriter{}, time.Hour, logger.Nop())
	cache.Seed(&entity.Snapshot{Projects: []entity.Project{{ID: "1", Tag: "D-101"}}})
	s := New("svbot", cache, logger.Nop())

	req := httptest.NewRequest("POST", "/admin/projects/report",
		strings.NewReader(`{"tag":"D-101","url":"https://docs.example/r1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	p, ok := cache.Snapshot().ProjectByTag("D-101")
	require.True(t, ok)
	assert.Equal(t, "https://docs.example/r1", p.ReportLink, "el parche es visible sin refresco")
}

func TestAdminReportLink_ProyectoInexistente(t *testing.T) {
	cache := catalog.New(stubSource{}, notFoundWriter{}, time.Hour, logger.Nop())
	cache.Seed(&entity.Snapshot{})
	s := New("svbot", cache, logger.Nop())

	req := httptest.NewRequest("POST", "/admin/projects/report",
		strings.NewReader(`{"tag":"D-999","url":"https://docs.example/r9"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestAdminReportLink_CuerpoIncompleto(t *testing.T) {
	cache := catalog.New(stubSource{}, stubWriter{}, time.Hour, logger.Nop())
	s := New("svbot", cache, logger.Nop())

	req := httptest.NewRequest("POST", "/admin/projects/report", strings.NewReader(`{"tag":"D-101"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAdminRefresh_AlmacenCaido(t *testing.T) {
	cache := catalog.New(stubSource{err: errors.New("network down")}, stubWriter{}, time.Hour, logger.Nop())
	s := New("svbot", cache, logger.Nop())

	resp, err := s.app.Test(httptest.NewRequest("POST", "/admin/refresh", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 502, resp.StatusCode)
}
