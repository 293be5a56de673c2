// Package sheets implementa los puertos del almacén sobre la API de Google
// Sheets v4. Mantiene la numeración de fila en la columna A de las tablas de
// registro y no interpreta el contenido de las celdas.
package sheets

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/pippoche/svbot/pkg/logger"
)

// Client es la implementación de TableSource y de todos los escritores
// contra una única hoja de cálculo.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	log           *logger.Logger
}

// NewClient abre el servicio con credenciales de cuenta de servicio.
func NewClient(ctx context.Context, spreadsheetID, credentialsFile string, log *logger.Logger) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creando el servicio de sheets: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, log: log}, nil
}

// ReadTable devuelve la rejilla completa de la hoja, celdas como texto.
func (c *Client) ReadTable(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("leyendo la hoja %q: %w", sheet, err)
	}
	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		grid[i] = cells
	}
	return grid, nil
}

// lastRow devuelve el número (base 1) de la última fila ocupada de la
// columna A. Una hoja vacía devuelve 0.
func (c *Client) lastRow(ctx context.Context, sheet string) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:A").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("localizando la última fila de %q: %w", sheet, err)
	}
	return len(resp.Values), nil
}

// update escribe un bloque de valores en el rango dado tal cual.
func (c *Client) update(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("escribiendo el rango %q: %w", rng, err)
	}
	return nil
}

// appendNumbered añade filas al final de la hoja anteponiendo el número de
// fila en la columna A. endCol es la letra de la última columna del bloque.
func (c *Client) appendNumbered(ctx context.Context, sheet, endCol string, rows [][]string) error {
	last, err := c.lastRow(ctx, sheet)
	if err != nil {
		return err
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		out := make([]interface{}, 0, len(row)+1)
		out = append(out, strconv.Itoa(last+i+1))
		for _, cell := range row {
			out = append(out, cell)
		}
		values[i] = out
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", sheet, last+1, endCol, last+len(rows))
	return c.update(ctx, rng, values)
}

// appendPlain añade filas al final sin columna de numeración.
func (c *Client) appendPlain(ctx context.Context, sheet, endCol string, rows [][]string) error {
	last, err := c.lastRow(ctx, sheet)
	if err != nil {
		return err
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		out := make([]interface{}, len(row))
		for j, cell := range row {
			out[j] = cell
		}
		values[i] = out
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", sheet, last+1, endCol, last+len(rows))
	return c.update(ctx, rng, values)
}

// findRowByColumn busca el primer valor exacto en la columna dada (letra) y
// devuelve su número de fila base 1, o 0 si no está.
func (c *Client) findRowByColumn(ctx context.Context, sheet, col, value string) (int, error) {
	rng := fmt.Sprintf("%s!%s:%s", sheet, col, col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("buscando %q en %s!%s: %w", value, sheet, col, err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == value {
			return i + 1, nil
		}
	}
	return 0, nil
}
