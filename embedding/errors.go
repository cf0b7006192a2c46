package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTerm matches every *UnknownTermError.
	ErrUnknownTerm = errors.New("embedding: unknown term")

	// ErrModelUnavailable matches every *ModelUnavailableError.
	ErrModelUnavailable = errors.New("embedding: model unavailable")
)

// UnknownTermError reports a term that is absent from the vocabulary.
type UnknownTermError struct {
	Term string
}

func (e *UnknownTermError) Error() string {
	return fmt.Sprintf("embedding: term %q not present in vocabulary", e.Term)
}

// Is reports whether target is ErrUnknownTerm.
func (e *UnknownTermError) Is(target error) bool { return target == ErrUnknownTerm }

// ModelUnavailableError reports that an embedding space could not be
// resolved, fetched or parsed.
type ModelUnavailableError struct {
	Name string
	Err  error
}

func (e *ModelUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("embedding: model %q unavailable", e.Name)
	}
	return fmt.Sprintf("embedding: model %q unavailable: %v", e.Name, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrModelUnavailable.
func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }
