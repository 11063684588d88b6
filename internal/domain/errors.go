package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (categorías; los tipos de abajo envuelven estos centinelas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrValidation           = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrPrescriptionRequired = errors.New("receta médica requerida")
	ErrInvalidState         = errors.New("operación no permitida en el estado actual")
	ErrIntegrity            = errors.New("inconsistencia entre contador de stock y libro de movimientos")
)

// ValidationError entrada inválida con el campo y motivo concretos.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entrada inválida: %s", e.Reason)
	}
	return fmt.Sprintf("entrada inválida: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError construye un ValidationError para un campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError stock insuficiente; siempre informa disponible vs solicitado.
type InsufficientStockError struct {
	Subject   string // nombre del producto/medicamento o número de lote
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		e.Subject, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NewInsufficientStockError construye el error con disponible y solicitado.
func NewInsufficientStockError(subject string, available, requested decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{Subject: subject, Available: available, Requested: requested}
}

// PrescriptionRequiredError venta de medicamento con receta sin verificación.
type PrescriptionRequiredError struct {
	MedicineName string
}

func (e *PrescriptionRequiredError) Error() string {
	return fmt.Sprintf("%s requiere receta médica: verifique la receta antes de dispensar", e.MedicineName)
}

func (e *PrescriptionRequiredError) Unwrap() error { return ErrPrescriptionRequired }

// InvalidStateError transición u operación inválida para el estado actual del sujeto.
type InvalidStateError struct {
	Subject string
	Reason  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject, e.Reason)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidStateError construye un InvalidStateError.
func NewInvalidStateError(subject, reason string) *InvalidStateError {
	return &InvalidStateError{Subject: subject, Reason: reason}
}

// IntegrityError desajuste contador/libro detectado al confirmar; la transacción debe abortar.
type IntegrityError struct {
	Subject  string
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integridad de stock violada en %s: esperado %s, real %s",
		e.Subject, e.Expected.String(), e.Actual.String())
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
