package flow

import (
	"errors"

	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/internal/domain/entity"
)

// Mensajes y etiquetas compartidos entre flujos.
const (
	msgChooseProject = "Выберите проект:"
	msgNoProjects    = "Нет доступных проектов."
	msgEnterQuantity = "Введите количество"
	msgListEmpty     = "Список пуст. Добавьте хотя бы одну позицию."
	msgWriteFailed   = "Не удалось записать данные. Список сохранён, попробуйте ещё раз."

	btnBack    = "Назад"
	btnDone    = "Готово"
	btnAddMore = "Добавить ещё"
	btnManual  = "Ввести вручную"
	btnRetry   = "Повторить отправку"
)

// projectKeyboard pinta un botón por proyecto, etiquetado por su número de
// договор, más la vuelta al menú.
func projectKeyboard(projects []entity.Project) [][]Button {
	kb := make([][]Button, 0, len(projects)+1)
	for _, p := range projects {
		kb = append(kb, []Button{{Label: p.Tag, Data: tok(kindProject, p.Tag)}})
	}
	return append(kb, mainMenuRow())
}

// reviewKeyboard teclado de la pantalla de repaso: seguir añadiendo, enviar
// o abandonar.
func reviewKeyboard() [][]Button {
	return [][]Button{
		{{Label: btnAddMore, Data: tokBack}},
		{{Label: btnDone, Data: tokSubmit}},
		mainMenuRow(),
	}
}

// retryKeyboard teclado tras un fallo de escritura: reintentar o abandonar.
func retryKeyboard() [][]Button {
	return [][]Button{
		{{Label: btnRetry, Data: tokSubmit}},
		mainMenuRow(),
	}
}

// chosenLabel anota el botón de un ítem ya acumulado con su cantidad, para
// que el usuario vea qué lleva elegido sin salir de la lista.
func chosenLabel(acc *Accumulator, id, name string) string {
	if it, ok := acc.Get(id); ok {
		return name + " (" + it.Qty.String() + ")"
	}
	return name
}

// quantityError traduce el error del parser al mensaje de reintento.
func quantityError(err error) Prompt {
	if err == nil {
		return Prompt{}
	}
	if errors.Is(err, domain.ErrNotPositive) {
		return Prompt{Text: msgMustBePositive + " " + msgEnterValidNumber}
	}
	return Prompt{Text: msgEnterValidNumber}
}
