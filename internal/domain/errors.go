package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSimuladoNotFound indicates no content file exists for the requested id.
	ErrSimuladoNotFound = errors.New("simulado not found")
	// ErrInvalidSimuladoID is returned for ids that fail sanitization.
	ErrInvalidSimuladoID = errors.New("invalid simulado id")
	// ErrInvalidTheme is returned for theme values other than light/dark.
	ErrInvalidTheme = errors.New("invalid theme")
)

// LoadError reports a content file that exists but could not be read or parsed.
// It is never cached, so a corrected file is picked up on the next request.
type LoadError struct {
	ID   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load simulado %q (%s): %v", e.ID, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
