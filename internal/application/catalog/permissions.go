package catalog

import (
	"strings"

	"github.com/pippoche/svbot/internal/domain/entity"
)

// multiWordStatusPrefixes son los primeros tokens de los estados compuestos
// conocidos ("В работе", "Продукция готова"). La celda de estados de la hoja
// de permisos separa por espacios y esta lista es la única forma de
// reensamblarlos. Convención heredada de la hoja: un estado compuesto que no
// empiece por estos tokens se parte mal. Se preserva tal cual; no adivinar
// prefijos nuevos aquí sin cambiar la hoja.
var multiWordStatusPrefixes = map[string]bool{
	"В":         true,
	"Продукция": true,
}

// parsePermissions convierte la rejilla cruda de "Действия и разрешения" en
// filas estructuradas: columna A rol, columna B estados visibles (texto
// libre), columna C acciones permitidas (texto libre, coincidencia por
// subcadena contra la lista canónica).
func parsePermissions(grid [][]string) []entity.RolePermission {
	var out []entity.RolePermission
	for _, row := range grid {
		role := cell(row, 0)
		if role == "" {
			continue
		}
		p := entity.RolePermission{
			Role:     role,
			Statuses: reassembleStatuses(strings.Fields(cell(row, 1))),
		}
		actionsCell := strings.ReplaceAll(cell(row, 2), "  ", " ")
		for _, a := range entity.AllActions {
			if strings.Contains(actionsCell, a.Label()) {
				p.Actions = append(p.Actions, a)
			}
		}
		out = append(out, p)
	}
	return out
}

// reassembleStatuses vuelve a unir los estados compuestos partidos por el
// split por espacios, usando la lista fija de prefijos conocidos.
func reassembleStatuses(tokens []string) []string {
	var statuses []string
	for i := 0; i < len(tokens); {
		if i+1 < len(tokens) && multiWordStatusPrefixes[tokens[i]] {
			statuses = append(statuses, tokens[i]+" "+tokens[i+1])
			i += 2
			continue
		}
		statuses = append(statuses, tokens[i])
		i++
	}
	return statuses
}

// normalizeStatus iguala estados para comparar: minúsculas y sin espacios.
func normalizeStatus(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// VisibleStatuses devuelve los estados de proyecto visibles para el rol.
// Rol desconocido -> vacío.
func (c *Cache) VisibleStatuses(role string) []string {
	p, ok := c.Snapshot().PermissionFor(role)
	if !ok {
		return nil
	}
	return p.Statuses
}

// AllowedActions devuelve las acciones de menú permitidas al rol.
// Rol desconocido -> vacío.
func (c *Cache) AllowedActions(role string) []entity.Action {
	p, ok := c.Snapshot().PermissionFor(role)
	if !ok {
		return nil
	}
	return p.Actions
}

// ProjectsFor filtra los proyectos por los estados visibles del rol
// (comparación sin mayúsculas ni espacios). Rol vacío -> lista completa;
// rol sin fila de permisos -> vacío.
func (c *Cache) ProjectsFor(role string) []entity.Project {
	snap := c.Snapshot()
	if role == "" {
		return snap.Projects
	}
	p, ok := snap.PermissionFor(role)
	if !ok {
		c.log.Warn().Str("role", role).Msg("rol sin fila de permisos")
		return nil
	}
	visible := make(map[string]bool, len(p.Statuses))
	for _, s := range p.Statuses {
		visible[normalizeStatus(s)] = true
	}
	var out []entity.Project
	for _, proj := range snap.Projects {
		if visible[normalizeStatus(proj.Status)] {
			out = append(out, proj)
		}
	}
	return out
}

// CanActAtStatus indica si el rol puede ejecutar la acción sobre un proyecto
// en el estado dado (estado visible y acción permitida a la vez).
func (c *Cache) CanActAtStatus(role, status string, action entity.Action) bool {
	p, ok := c.Snapshot().PermissionFor(role)
	if !ok {
		return false
	}
	if !p.Allows(action) {
		return false
	}
	want := normalizeStatus(status)
	for _, s := range p.Statuses {
		if normalizeStatus(s) == want {
			return true
		}
	}
	return false
}
