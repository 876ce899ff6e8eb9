package store

import (
	"context"
	"errors"

	"mercator-hq/rulescript/pkg/policy/scope"
)

// ErrNotFound is returned when no script is stored for a scope.
var ErrNotFound = errors.New("script not found")

// ScriptStore loads and saves script text by scope.
type ScriptStore interface {
	// GetScript returns the stored text for a scope, or ErrNotFound.
	GetScript(ctx context.Context, scopeType scope.Type, scopeID string) (string, error)

	// SaveScript stores text for a scope, replacing any previous text.
	SaveScript(ctx context.Context, scopeType scope.Type, scopeID, text string) error
}

// Lister is implemented by stores that can enumerate their scripts.
type Lister interface {
	// List returns every stored scope, ordered by type then id.
	List(ctx context.Context) ([]scope.Descriptor, error)
}

// Deleter is implemented by stores that can remove a script.
type Deleter interface {
	// DeleteScript removes the script for a scope. Deleting a missing
	// script returns ErrNotFound.
	DeleteScript(ctx context.Context, scopeType scope.Type, scopeID string) error
}
