// Package content reads simulado documents from a content directory and
// provides the read-time transforms applied before serving them.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"simulado-service/internal/domain"
)

// idPattern accepts filename-safe ids only; anything with a path separator or
// dot-dot segment never reaches the filesystem.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]*$`)

// SanitizeID validates a quiz id taken from user input.
func SanitizeID(id string) (string, error) {
	if id == "" || id == "." || id == ".." || !idPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSimuladoID, id)
	}
	if strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSimuladoID, id)
	}
	return id, nil
}

// Loader reads one simulado per JSON file under a directory. It keeps no
// cache of its own; callers layer caching on top.
type Loader struct {
	dir   string
	loads atomic.Int64
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the content directory the loader reads from.
func (l *Loader) Dir() string { return l.dir }

// Loads reports how many disk reads the loader has performed. Cache tests and
// metrics use it to observe hit/miss behavior.
func (l *Loader) Loads() int64 { return l.loads.Load() }

// Load reads and parses one simulado. Missing files map to
// ErrSimuladoNotFound; unreadable or malformed files map to a LoadError.
func (l *Loader) Load(_ context.Context, id string) (domain.Simulado, error) {
	safe, err := SanitizeID(id)
	if err != nil {
		return domain.Simulado{}, err
	}
	l.loads.Add(1)

	path := filepath.Join(l.dir, safe+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Simulado{}, domain.ErrSimuladoNotFound
		}
		return domain.Simulado{}, &domain.LoadError{ID: safe, Path: path, Err: err}
	}

	var simulado domain.Simulado
	if err := json.Unmarshal(data, &simulado); err != nil {
		return domain.Simulado{}, &domain.LoadError{ID: safe, Path: path, Err: err}
	}
	simulado.ID = safe
	return simulado, nil
}

// List enumerates known simulado ids in ascending order.
func (l *Loader) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list content dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Fingerprint returns an opaque token that changes whenever the file does.
// Modification time plus size is enough to catch edits without hashing.
func (l *Loader) Fingerprint(_ context.Context, id string) (string, error) {
	safe, err := SanitizeID(id)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(filepath.Join(l.dir, safe+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrSimuladoNotFound
		}
		return "", err
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}
