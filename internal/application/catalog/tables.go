package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pippoche/svbot/internal/domain/entity"
)

// Etiquetas de cabecera de cada hoja (contrato externo, bit a bit).
var (
	projectHeaders    = []string{"ID проекта", "Ф.И.О заказчика", "Номер договора", "Тип сделки", "Статус", "Дата создания", "Примечание", "Ссылка на отчёт"}
	employeeHeaders   = []string{"ID", "Ф.И.О", "Логин", "Пароль", "Роль", "Отдел", "Доступ"}
	materialHeaders   = []string{"ID", "Наименование", "Ед. измерения", "Тип сделки"}
	urlHeaders        = []string{"Действие", "URL"}
	instrumentHeaders = []string{"ID инструмента", "Инструмент", "Ед. измерения", "Кол-во на складе"}
	custodyHeaders    = []string{"№ строки", "Дата", "Тип операции", "Кто", "Номер договора", "Кому выдан инструмент", "Инструмент", "кол-во"}
)

// findHeaderRow localiza la fila de cabecera: la primera cuyas celdas
// contienen todas las etiquetas requeridas (subcadena, sin mayúsculas).
// Devuelve -1 si ninguna fila califica.
func findHeaderRow(grid [][]string, required []string) int {
	for i, row := range grid {
		ok := true
		for _, h := range required {
			found := false
			for _, cell := range row {
				if strings.Contains(strings.ToLower(cell), strings.ToLower(h)) {
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// colIndex localiza la columna de la etiqueta: primero igualdad exacta y si
// no, subcadena. El orden importa: "Инструмент" también es subcadena de
// "ID инструмента" y de "Кому выдан инструмент".
func colIndex(header []string, label string) int {
	want := strings.ToLower(label)
	for i, cell := range header {
		if strings.ToLower(strings.TrimSpace(cell)) == want {
			return i
		}
	}
	for i, cell := range header {
		if strings.Contains(strings.ToLower(cell), want) {
			return i
		}
	}
	return -1
}

// cell accede a una celda tolerando filas cortas.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// toDecimal parsea un valor numérico de celda; celdas vacías o corruptas
// cuentan como cero (la hoja trae de todo).
func toDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseProjects(grid [][]string) []entity.Project {
	h := findHeaderRow(grid, []string{"ID проекта", "Номер договора"})
	if h < 0 {
		return nil
	}
	header := grid[h]
	idx := make([]int, len(projectHeaders))
	for i, label := range projectHeaders {
		idx[i] = colIndex(header, label)
	}
	var out []entity.Project
	for _, row := range grid[h+1:] {
		p := entity.Project{
			ID:         cell(row, idx[0]),
			Customer:   cell(row, idx[1]),
			Tag:        cell(row, idx[2]),
			Direction:  cell(row, idx[3]),
			Status:     cell(row, idx[4]),
			CreatedAt:  cell(row, idx[5]),
			Note:       cell(row, idx[6]),
			ReportLink: cell(row, idx[7]),
		}
		if p.Tag == "" && p.ID == "" {
			continue
		}
		out = append(out, p)
	}
	// Más recientes primero, como la caché de origen
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func parseEmployees(grid [][]string) []entity.Employee {
	h := findHeaderRow(grid, []string{"ID", "Ф.И.О"})
	if h < 0 {
		return nil
	}
	header := grid[h]
	idx := make([]int, len(employeeHeaders))
	for i, label := range employeeHeaders {
		idx[i] = colIndex(header, label)
	}
	var out []entity.Employee
	for _, row := range grid[h+1:] {
		e := entity.Employee{
			ID:         cell(row, idx[0]),
			Name:       cell(row, idx[1]),
			Login:      cell(row, idx[2]),
			Password:   cell(row, idx[3]),
			Role:       cell(row, idx[4]),
			Department: cell(row, idx[5]),
			Access:     parseAccess(cell(row, idx[6])),
		}
		if e.Login == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func parseAccess(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseMaterials(grid [][]string) []entity.Material {
	h := findHeaderRow(grid, []string{"ID", "Наименование"})
	if h < 0 {
		return nil
	}
	header := grid[h]
	idID := colIndex(header, "ID")
	idName := colIndex(header, "Наименование")
	idUnit := colIndex(header, "Ед. измерения")
	idDeal := colIndex(header, "Тип сделки")
	var out []entity.Material
	for _, row := range grid[h+1:] {
		m := entity.Material{
			ID:        cell(row, idID),
			Name:      cell(row, idName),
			Unit:      cell(row, idUnit),
			DealTypes: cell(row, idDeal),
		}
		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func parseInstruments(grid [][]string) []entity.Instrument {
	h := findHeaderRow(grid, []string{"ID инструмента", "Инструмент"})
	if h < 0 {
		return nil
	}
	header := grid[h]
	idID := colIndex(header, "ID инструмента")
	idName := colIndex(header, "Инструмент")
	idUnit := colIndex(header, "Ед. измерения")
	idStock := colIndex(header, "Кол-во на складе")
	var out []entity.Instrument
	for _, row := range grid[h+1:] {
		name := cell(row, idName)
		if name == "" {
			continue
		}
		out = append(out, entity.Instrument{
			ID:    int(toDecimal(cell(row, idID)).IntPart()),
			Name:  name,
			Unit:  cell(row, idUnit),
			Stock: toDecimal(cell(row, idStock)),
		})
	}
	return out
}

// parsePlates interpreta la hoja posicional "Пластины МЗП": los tipos viven en
// la columna B de las filas 2..6 y las pластины a partir de la fila 7
// (tipo en C, nombre en B, unidad en D, stock en E). A cada pластина se le
// asigna un ID por fila, estable solo dentro del snapshot.
func parsePlates(grid [][]string) ([]string, []entity.Plate) {
	var types []string
	for i := 1; i < 6 && i < len(grid); i++ {
		t := cell(grid[i], 1)
		if t != "" && t != "Тип пластин" {
			types = append(types, t)
		}
	}
	var plates []entity.Plate
	for i := 6; i < len(grid); i++ {
		row := grid[i]
		name := cell(row, 1)
		if name == "" {
			continue
		}
		plates = append(plates, entity.Plate{
			ID:    "p" + strconv.Itoa(i+1),
			Type:  cell(row, 2),
			Name:  name,
			Unit:  cell(row, 3),
			Stock: toDecimal(cell(row, 4)),
		})
	}
	return types, plates
}

func parseURLs(grid [][]string) map[string]string {
	h := findHeaderRow(grid, urlHeaders)
	if h < 0 {
		return map[string]string{}
	}
	header := grid[h]
	idAction := colIndex(header, "Действие")
	idURL := colIndex(header, "URL")
	out := make(map[string]string)
	for _, row := range grid[h+1:] {
		action, url := cell(row, idAction), cell(row, idURL)
		if action != "" && url != "" {
			out[action] = url
		}
	}
	return out
}

func parseCustody(grid [][]string) []entity.CustodyRow {
	h := findHeaderRow(grid, []string{"№ строки", "Дата"})
	if h < 0 {
		return nil
	}
	header := grid[h]
	idx := make([]int, len(custodyHeaders))
	for i, label := range custodyHeaders {
		idx[i] = colIndex(header, label)
	}
	var out []entity.CustodyRow
	for _, row := range grid[h+1:] {
		r := entity.CustodyRow{
			Date:       cell(row, idx[1]),
			Operation:  cell(row, idx[2]),
			Actor:      cell(row, idx[3]),
			ProjectTag: cell(row, idx[4]),
			Recipient:  cell(row, idx[5]),
			Instrument: cell(row, idx[6]),
			Quantity:   toDecimal(cell(row, idx[7])),
		}
		if r.Instrument == "" && r.Date == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
