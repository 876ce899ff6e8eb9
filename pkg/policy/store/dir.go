package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mercator-hq/rulescript/pkg/policy/scope"
)

// Extension is the file extension of rule scripts.
const Extension = ".rules"

// DirStore keeps scripts as files under a root directory:
//
//	<root>/org/<id>.rules
//	<root>/branch/<id>.rules
//	<root>/user/<id>.rules
type DirStore struct {
	root   string
	logger *slog.Logger
}

// NewDirStore creates a directory-backed store. The root is created on the
// first save if it does not exist.
func NewDirStore(root string, logger *slog.Logger) *DirStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirStore{
		root:   filepath.Clean(root),
		logger: logger,
	}
}

// Root returns the store's root directory.
func (s *DirStore) Root() string {
	return s.root
}

// Path returns the file that holds the script for a scope.
func (s *DirStore) Path(scopeType scope.Type, scopeID string) (string, error) {
	desc := scope.New(scopeType, scopeID)
	if err := desc.Validate(); err != nil {
		return "", err
	}
	if err := validateID(scopeID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, scopeType.Dir(), scopeID+Extension), nil
}

// Descriptor maps a file path back to its scope. It returns false for
// paths outside the store layout.
func (s *DirStore) Descriptor(path string) (scope.Descriptor, bool) {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil {
		return scope.Descriptor{}, false
	}

	dir, file := filepath.Split(rel)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if strings.ContainsRune(dir, filepath.Separator) || filepath.Ext(file) != Extension {
		return scope.Descriptor{}, false
	}

	t, err := scope.ParseType(dir)
	if err != nil || t.Dir() != dir {
		return scope.Descriptor{}, false
	}

	id := strings.TrimSuffix(file, Extension)
	if validateID(id) != nil {
		return scope.Descriptor{}, false
	}
	return scope.New(t, id), true
}

// GetScript implements ScriptStore.
func (s *DirStore) GetScript(ctx context.Context, scopeType scope.Type, scopeID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.Path(scopeType, scopeID)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", scope.New(scopeType, scopeID), ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script %q: %w", path, err)
	}

	s.logger.Debug("read script", "path", path, "bytes", len(data))
	return string(data), nil
}

// SaveScript implements ScriptStore. The file is replaced atomically.
func (s *DirStore) SaveScript(ctx context.Context, scopeType scope.Type, scopeID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.Path(scopeType, scopeID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+scopeID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %q: %w", path, err)
	}

	s.logger.Debug("saved script", "path", path, "bytes", len(text))
	return nil
}

// DeleteScript implements Deleter.
func (s *DirStore) DeleteScript(ctx context.Context, scopeType scope.Type, scopeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.Path(scopeType, scopeID)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", scope.New(scopeType, scopeID), ErrNotFound)
	}
	return err
}

// List implements Lister. Files that do not follow the layout are skipped.
func (s *DirStore) List(ctx context.Context) ([]scope.Descriptor, error) {
	var descs []scope.Descriptor

	for _, t := range scope.Types() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Join(s.root, t.Dir())
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			desc, ok := s.Descriptor(filepath.Join(dir, entry.Name()))
			if !ok {
				if filepath.Ext(entry.Name()) == Extension {
					s.logger.Warn("skipping script with invalid name", "path", filepath.Join(dir, entry.Name()))
				}
				continue
			}
			descs = append(descs, desc)
		}
	}

	sortDescriptors(descs)
	return descs, nil
}

// validateID rejects ids that cannot be used as a file name.
func validateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errors.New("scope id is empty")
	case id == "." || id == "..":
		return fmt.Errorf("invalid scope id %q", id)
	case strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0):
		return fmt.Errorf("invalid scope id %q: contains a path separator", id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("invalid scope id %q: starts with '.'", id)
	}
	return nil
}
