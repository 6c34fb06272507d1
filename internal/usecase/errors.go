package usecase

import (
	"errors"
	"strings"
)

const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeValidation    = "VALIDATION_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeDelivery      = "DELIVERY_FAILED"
)

// DomainError é culpa de quem chamou (credencial, payload).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é culpa nossa (configuração, canal obrigatório fora do ar).
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

var ErrUnauthorized = &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}

func NewConfigurationError(msg string) *TechnicalError {
	return &TechnicalError{Code: CodeConfiguration, Message: msg}
}

func NewDeliveryError(msg string) *TechnicalError {
	return &TechnicalError{Code: CodeDelivery, Message: msg}
}

// ValidationErrors carries every field problem found in one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
