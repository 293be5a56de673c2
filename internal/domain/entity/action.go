package entity

// Action identifica una operación del menú. El valor es el token de callback
// que viaja por el transporte; Label es el texto con el que figura tanto en el
// menú como en la celda de permisos de la hoja.
type Action string

const (
	ActionStatusChange  Action = "change_status"
	ActionCreateProject Action = "create_project"
	ActionWriteOff      Action = "write_off"
	ActionWebWriteOff   Action = "web_write_off"
	ActionFermaWriteOff Action = "ferma_write_off"
	ActionAddExpense    Action = "add_expense"
	ActionDelivery      Action = "delivery"
	ActionInstrument    Action = "instrument"
	ActionNewInstrument Action = "new_instrument"
	ActionPurchase      Action = "purchase"
	ActionVolumes       Action = "volumes"
	ActionRefreshCache  Action = "refresh_cache"
	ActionReportIssue   Action = "report_issue"
)

// actionLabels mapea cada acción a su etiqueta en la hoja de permisos.
// El orden de AllActions es el orden del menú.
var actionLabels = map[Action]string{
	ActionStatusChange:  "Смена статуса проекта",
	ActionCreateProject: "Создать проект",
	ActionWriteOff:      "Списать материалы",
	ActionWebWriteOff:   "Списание материалов (веб-форма)",
	ActionFermaWriteOff: "Списать материалы на фермы",
	ActionAddExpense:    "Добавить расход",
	ActionDelivery:      "Доставка",
	ActionInstrument:    "Инструмент",
	ActionNewInstrument: "Новый инструмент",
	ActionPurchase:      "Закупка материалов",
	ActionVolumes:       "Внести объемы материалов",
	ActionRefreshCache:  "Обновление КЭШ-а",
	ActionReportIssue:   "Сообщить о проблеме",
}

// AllActions lista canónica en orden de menú.
var AllActions = []Action{
	ActionStatusChange,
	ActionCreateProject,
	ActionWriteOff,
	ActionWebWriteOff,
	ActionFermaWriteOff,
	ActionAddExpense,
	ActionDelivery,
	ActionInstrument,
	ActionNewInstrument,
	ActionPurchase,
	ActionVolumes,
	ActionRefreshCache,
	ActionReportIssue,
}

// Label devuelve la etiqueta visible de la acción.
func (a Action) Label() string { return actionLabels[a] }

// RolePermission es la fila estructurada de la hoja "Действия и разрешения":
// rol -> estados de proyecto visibles y acciones permitidas. La versión de
// texto libre de la hoja se parsea una sola vez al refrescar el catálogo.
type RolePermission struct {
	Role     string   `json:"role"`
	Statuses []string `json:"statuses"`
	Actions  []Action `json:"actions"`
}

// Allows indica si la acción figura entre las permitidas del rol.
func (p RolePermission) Allows(a Action) bool {
	for _, x := range p.Actions {
		if x == a {
			return true
		}
	}
	return false
}
