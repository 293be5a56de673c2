package entity

// Estados conocidos de un proyecto (columna "Статус" de la hoja).
const (
	StatusInProgress   = "В работе"
	StatusProductReady = "Продукция готова"
	StatusConstruction = "Строительство"
	StatusPaused       = "Приостановлен"
	StatusDone         = "готов"
)

// Direcciones (tipo de negocio) ofrecidas al crear un proyecto.
// Vienen de la hoja "Действия и разрешения" y delimitan qué materiales aplican.
var ProjectDirections = []string{
	"Фермы", "Домокомплект", "Ангар", "Фахверк комплект",
	"Строительство", "Продажа ПМ", "Проектная деятельность", "Накладные",
}

// Project representa una fila de la hoja "Проекты".
// Tag (número de contrato) es la clave con la que operan todos los flujos;
// las fechas se conservan como texto tal y como están en la hoja.
type Project struct {
	ID         string `json:"id"`
	Customer   string `json:"customer"`    // Ф.И.О заказчика
	Tag        string `json:"tag"`         // Номер договора
	Direction  string `json:"direction"`   // Тип сделки
	Status     string `json:"status"`      // Статус
	CreatedAt  string `json:"created_at"`  // Дата создания
	Note       string `json:"note"`        // Примечание
	ReportLink string `json:"report_link"` // Ссылка на отчёт
}
