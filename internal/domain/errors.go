package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrEmptySelection = errors.New("selección vacía")
	ErrNotANumber     = errors.New("no es un número")
	ErrNotPositive    = errors.New("el valor debe ser positivo")
	ErrStaleCache     = errors.New("catálogo sin cargar")
)
