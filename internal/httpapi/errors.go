package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/joelkehle/ideascope/internal/ideas"
	"github.com/joelkehle/ideascope/internal/projection"
	"github.com/joelkehle/ideascope/internal/store"
)

const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeTooLarge   = "too_large"
	CodeInternal   = "internal"
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details []FieldError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: statusForCode(code)}
}

func validationError(message string) *Error {
	return newError(CodeValidation, message)
}

// classify maps domain errors onto API errors.
func classify(err error) *Error {
	var ae *Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, store.ErrNotFound):
		return newError(CodeNotFound, err.Error())
	case errors.Is(err, ideas.ErrEmptyIdea), errors.Is(err, projection.ErrNonPositivePrice):
		return validationError(err.Error())
	default:
		return newError(CodeInternal, err.Error())
	}
}
