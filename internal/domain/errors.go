package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("resource conflict")
)

// ValidationErrors holds field-scoped validation messages keyed by the JSON
// field name. It is serialized as-is into the error envelope.
type ValidationErrors map[string][]string

func (e ValidationErrors) Error() string {
	return "validation failed"
}

// Add appends a message for the given field.
func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}
