package module

import (
	"errors"
	"fmt"
)

// ErrAliasesRegistered is returned when an Env already carries a different
// alias table.
var ErrAliasesRegistered = errors.New("module: aliases already registered")

// LoadError attaches the module path and loader to a load failure.
type LoadError struct {
	Path   string
	Loader string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Loader == "" {
		return fmt.Sprintf("module: load %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("module: %s loader %s: %v", e.Loader, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
