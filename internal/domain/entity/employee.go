package entity

// Employee representa una fila de la hoja "Сотрудники".
// Password puede ser un hash bcrypt ($2a$...) o texto plano heredado;
// la verificación decide según el prefijo.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`  // Ф.И.О
	Login      string `json:"login"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Access     bool   `json:"access"` // columna "Доступ": true/1/yes
}
