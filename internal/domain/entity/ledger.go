package entity

import "github.com/shopspring/decimal"

// Tipos de operación registrados en el libro.
const (
	OperationExpense = "Расход"
	OperationIncome  = "Приход"
)

// LedgerRow es un registro inmutable de la hoja "Данные" (columnas B..M; la
// columna A, número de fila, la añade el escritor). El orden de Values es un
// contrato externo y debe preservarse bit a bit.
type LedgerRow struct {
	Date        string          // fecha "2006-01-02 15:04:05"
	Operation   string          // Тип операции
	Actor       string          // Кто (Ф.И.О)
	PaymentType string          // Тип оплаты
	Direction   string          // Направление / отдел
	Item        string          // что списано/приобретено
	Quantity    decimal.Decimal // кол-во
	Unit        string          // Ед. измерения
	UnitPrice   string          // Цена (vacío si no aplica)
	TotalPrice  string          // Общая цена (vacío si no aplica)
	ProjectTag  string          // Номер договора
	Note        string          // Примечание
}

// Values serializa la fila en el orden de columnas de la hoja "Данные".
func (r LedgerRow) Values() []string {
	return []string{
		r.Date, r.Operation, r.Actor, r.PaymentType, r.Direction,
		r.Item, r.Quantity.String(), r.Unit, r.UnitPrice, r.TotalPrice,
		r.ProjectTag, r.Note,
	}
}

// CustodyRow es un registro de la hoja "Где инструмент" (columnas B..H).
type CustodyRow struct {
	Date       string
	Operation  string // Приход / Расход
	Actor      string
	ProjectTag string
	Recipient  string // Кому выдан инструмент
	Instrument string
	Quantity   decimal.Decimal
}

// Values serializa la fila en el orden de columnas de la hoja "Где инструмент".
func (r CustodyRow) Values() []string {
	return []string{
		r.Date, r.Operation, r.Actor, r.ProjectTag,
		r.Recipient, r.Instrument, r.Quantity.String(),
	}
}

// IssueRow es un reporte de problema (hoja "Ошибки").
type IssueRow struct {
	UserID   string
	Date     string
	Username string
	Text     string
}

// Values serializa la fila en el orden de columnas de la hoja "Ошибки".
func (r IssueRow) Values() []string {
	return []string{r.UserID, r.Date, r.Username, r.Text}
}
