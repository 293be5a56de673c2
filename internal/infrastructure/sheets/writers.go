package sheets

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
	"github.com/pippoche/svbot/internal/domain/repository"
)

// Posiciones de celda de la hoja "Проекты" (contrato externo: columna C es
// el номер договора, E el статус, H la ссылка на отчёт).
const (
	projectTagColumn    = "C"
	projectStatusColumn = "E"
	projectLinkColumn   = "H"
)

// AppendLedger escribe las filas en "Данные" numeradas en la columna A
// (bloque A:M).
func (c *Client) AppendLedger(ctx context.Context, rows []entity.LedgerRow) error {
	batch := uuid.NewString()
	values := make([][]string, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}
	if err := c.appendNumbered(ctx, repository.SheetLedger, "M", values); err != nil {
		c.log.Error().Err(err).Str("batch_id", batch).Int("rows", len(rows)).Msg("fallo al añadir filas al libro")
		return err
	}
	c.log.Info().Str("batch_id", batch).Int("rows", len(rows)).Str("sheet", repository.SheetLedger).Msg("filas añadidas al libro")
	return nil
}

// AppendCustody escribe los movimientos en "Где инструмент" (bloque A:H).
func (c *Client) AppendCustody(ctx context.Context, rows []entity.CustodyRow) error {
	batch := uuid.NewString()
	values := make([][]string, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}
	if err := c.appendNumbered(ctx, repository.SheetCustody, "H", values); err != nil {
		c.log.Error().Err(err).Str("batch_id", batch).Int("rows", len(rows)).Msg("fallo al añadir movimientos de custodia")
		return err
	}
	c.log.Info().Str("batch_id", batch).Int("rows", len(rows)).Str("sheet", repository.SheetCustody).Msg("movimientos de custodia añadidos")
	return nil
}

// AppendIssue registra un reporte en "Ошибки" (bloque A:D, sin numeración).
func (c *Client) AppendIssue(ctx context.Context, row entity.IssueRow) error {
	return c.appendPlain(ctx, repository.SheetIssues, "D", [][]string{row.Values()})
}

// AppendProject da de alta la fila del proyecto en "Проекты" (bloque A:H).
func (c *Client) AppendProject(ctx context.Context, p entity.Project) error {
	row := []string{
		p.ID, p.Customer, p.Tag, p.Direction,
		p.Status, p.CreatedAt, p.Note, p.ReportLink,
	}
	if err := c.appendPlain(ctx, repository.SheetProjects, "H", [][]string{row}); err != nil {
		return err
	}
	c.log.Info().Str("tag", p.Tag).Msg("proyecto añadido a la hoja")
	return nil
}

// AppendInstrument da de alta el instrumento en "Инструмент" (bloque A:D).
func (c *Client) AppendInstrument(ctx context.Context, ins entity.Instrument) error {
	row := []string{
		fmt.Sprint(ins.ID), ins.Name, ins.Unit, ins.Stock.String(),
	}
	if err := c.appendPlain(ctx, repository.SheetInstruments, "D", [][]string{row}); err != nil {
		return err
	}
	c.log.Info().Int("id", ins.ID).Str("name", ins.Name).Msg("instrumento añadido a la hoja")
	return nil
}

// UpdateProjectStatus parchea la celda de estado de la fila del proyecto.
func (c *Client) UpdateProjectStatus(ctx context.Context, tag, status string) error {
	return c.updateProjectCell(ctx, tag, projectStatusColumn, status)
}

// UpdateProjectReportLink parchea la celda de enlace de informe.
func (c *Client) UpdateProjectReportLink(ctx context.Context, tag, url string) error {
	return c.updateProjectCell(ctx, tag, projectLinkColumn, url)
}

func (c *Client) updateProjectCell(ctx context.Context, tag, col, value string) error {
	row, err := c.findRowByColumn(ctx, repository.SheetProjects, projectTagColumn, tag)
	if err != nil {
		return err
	}
	if row == 0 {
		return fmt.Errorf("proyecto %q: %w", tag, domain.ErrNotFound)
	}
	rng := fmt.Sprintf("%s!%s%d", repository.SheetProjects, col, row)
	return c.update(ctx, rng, [][]interface{}{{value}})
}
