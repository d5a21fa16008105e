package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInsufficientAvailable = errors.New("cantidad disponible insuficiente")
	ErrSerialNotAvailable    = errors.New("el serial no está disponible")
	ErrSerialAlreadyExists   = errors.New("el serial ya existe para el producto")
	ErrWorkflowState         = errors.New("acción inválida para el estado actual del documento")
)
