package services

import (
	"errors"
	"fmt"
)

// InputError kennzeichnet ungültige Client-Eingaben (HTTP 400).
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalidInput(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// IsInputError meldet, ob err (oder ein umhüllter Fehler) ein InputError ist.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// ErrMissingColumn wird gemeldet, wenn eine erwartete Ergebnisspalte fehlt.
var ErrMissingColumn = errors.New("missing column")

// DecodeError meldet eine fehlgeschlagene Projektion einer Ergebniszeile.
type DecodeError struct {
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("decode row: %v", e.Err)
	}
	return fmt.Sprintf("decode column %q: %v", e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
