package entity

import (
	"strings"
	"time"
)

// Snapshot es la copia en memoria de todas las tablas de referencia.
// Se construye completo y se publica de un golpe; los lectores nunca ven un
// snapshot a medio cargar. Los flujos solo leen; las mutaciones pasan por el
// caché, que publica una copia parcheada.
type Snapshot struct {
	Projects    []Project         `json:"projects"`
	Employees   []Employee        `json:"employees"`
	Permissions []RolePermission  `json:"permissions"`
	Materials   []Material        `json:"materials"`
	PlateTypes  []string          `json:"plate_types"`
	Plates      []Plate           `json:"plates"`
	URLs        map[string]string `json:"urls"`
	Instruments []Instrument      `json:"instruments"`
	Custody     []CustodyRow      `json:"custody"`
	LastUpdated time.Time         `json:"last_updated"`
}

// ProjectByTag busca un proyecto por número de contrato (insensible a
// mayúsculas y espacios extremos, igual que la hoja de origen).
func (s *Snapshot) ProjectByTag(tag string) (Project, bool) {
	want := strings.ToLower(strings.TrimSpace(tag))
	for _, p := range s.Projects {
		if strings.ToLower(strings.TrimSpace(p.Tag)) == want {
			return p, true
		}
	}
	return Project{}, false
}

// MaterialByID busca un material por su identificador estable.
func (s *Snapshot) MaterialByID(id string) (Material, bool) {
	for _, m := range s.Materials {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

// InstrumentByID busca un instrumento por su identificador.
func (s *Snapshot) InstrumentByID(id int) (Instrument, bool) {
	for _, i := range s.Instruments {
		if i.ID == id {
			return i, true
		}
	}
	return Instrument{}, false
}

// PlateByID busca una пластина por el ID asignado al parsear el snapshot.
func (s *Snapshot) PlateByID(id string) (Plate, bool) {
	for _, p := range s.Plates {
		if p.ID == id {
			return p, true
		}
	}
	return Plate{}, false
}

// PlatesByType devuelve las pластины del tipo dado.
func (s *Snapshot) PlatesByType(plateType string) []Plate {
	var out []Plate
	for _, p := range s.Plates {
		if p.Type == plateType && p.Name != "" {
			out = append(out, p)
		}
	}
	return out
}

// MaterialsByDirection filtra el catálogo por dirección del proyecto.
func (s *Snapshot) MaterialsByDirection(direction string) []Material {
	var out []Material
	for _, m := range s.Materials {
		if m.MatchesDirection(direction) {
			out = append(out, m)
		}
	}
	return out
}

// EmployeeByLogin busca un empleado por login (comparación recortada).
func (s *Snapshot) EmployeeByLogin(login string) (Employee, bool) {
	want := strings.TrimSpace(login)
	for _, e := range s.Employees {
		if strings.TrimSpace(e.Login) == want {
			return e, true
		}
	}
	return Employee{}, false
}

// PermissionFor busca la fila de permisos del rol (insensible a mayúsculas).
func (s *Snapshot) PermissionFor(role string) (RolePermission, bool) {
	want := strings.ToLower(role)
	for _, p := range s.Permissions {
		if strings.ToLower(p.Role) == want {
			return p, true
		}
	}
	return RolePermission{}, false
}

// MaxInstrumentID devuelve el mayor ID de instrumento (0 si no hay).
func (s *Snapshot) MaxInstrumentID() int {
	max := 0
	for _, i := range s.Instruments {
		if i.ID > max {
			max = i.ID
		}
	}
	return max
}
