package entity

import "strings"

// Material representa una fila de la hoja "Материалы".
// DealTypes es la celda "Тип сделки" cruda: etiquetas separadas por espacios;
// la etiqueta "все" hace el material aplicable a cualquier dirección.
type Material struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	DealTypes string `json:"deal_types"`
}

// Tags devuelve las etiquetas de tipo de sdelka en minúsculas.
func (m Material) Tags() []string {
	return strings.Fields(strings.ToLower(m.DealTypes))
}

// MatchesDirection indica si el material aplica a la dirección dada.
// Una dirección vacía acepta todo; el plural se recorta ("Фермы" -> "ферм")
// igual que lo hace la hoja de origen.
func (m Material) MatchesDirection(direction string) bool {
	if direction == "" {
		return true
	}
	want := strings.ToLower(strings.TrimRight(direction, "ы"))
	for _, tag := range m.Tags() {
		if tag == "все" || tag == want {
			return true
		}
	}
	return false
}

// HasTag indica si la celda de tipos contiene la etiqueta exacta (sensible a mayúsculas,
// como el filtro de fermas del origen).
func (m Material) HasTag(tag string) bool {
	for _, t := range strings.Fields(m.DealTypes) {
		if t == tag {
			return true
		}
	}
	return false
}
