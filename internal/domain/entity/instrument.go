package entity

import "github.com/shopspring/decimal"

// Instrument representa una fila de la hoja "Инструмент".
type Instrument struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Stock decimal.Decimal `json:"stock"` // Кол-во на складе
}

// Plate representa una pластина de la hoja "Пластины МЗП".
// La hoja es posicional (sin cabecera declarada): el ID se asigna al parsear
// y solo es estable dentro de un mismo snapshot.
type Plate struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Stock decimal.Decimal `json:"stock"`
}
