// Package loader reads named text resources such as shader sources.
package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
)

// LoaderBackendType identifies where resource text is read from.
type LoaderBackendType int

const (
	// BackendTypeFS reads resources from an fs.FS, typically an embed.FS.
	BackendTypeFS LoaderBackendType = iota

	// BackendTypeDir reads resources from a directory on disk.
	BackendTypeDir
)

// Source resolves a resource name to its text.
type Source interface {
	// ReadText returns the full text of the named resource.
	// A leading "/" on the name is ignored.
	//
	// Parameters:
	//   - name: the resource name, e.g. "/shaders/textured.vert"
	//
	// Returns:
	//   - string: the resource text
	//   - error: *ResourceLoadError if the resource cannot be read
	ReadText(name string) (string, error)
}

// Loader is a Source with a text cache.
type Loader interface {
	Source

	// Preload reads and caches every named resource, stopping at the first failure.
	//
	// Parameters:
	//   - names: the resources to read
	//
	// Returns:
	//   - error: the first *ResourceLoadError encountered
	Preload(names ...string) error

	// Cached reports whether a resource is present in the cache.
	//
	// Parameters:
	//   - name: the resource name
	//
	// Returns:
	//   - bool: true if cached
	Cached(name string) bool

	// Invalidate drops every cached resource.
	Invalidate()
}

type loader struct {
	mu sync.RWMutex

	logger  *slog.Logger
	caching bool
	cache   map[string]string

	backend loaderBackend
}

var _ Loader = &loader{}

// NewLoader creates a Loader for the given backend type with the options applied.
// BackendTypeFS requires WithFS; BackendTypeDir requires WithRoot.
//
// Parameters:
//   - backendType: the backend to read from
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the configured loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:  slog.Default(),
		caching: true,
		cache:   make(map[string]string),
	}
	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeFS:
		if l.backend == nil {
			panic("loader: BackendTypeFS requires WithFS")
		}
	case BackendTypeDir:
		if l.backend == nil {
			panic("loader: BackendTypeDir requires WithRoot")
		}
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}
	return l
}

// FromFS is a shorthand for an fs.FS-backed Loader.
//
// Parameters:
//   - fsys: the file system holding the resources
//
// Returns:
//   - Loader: the loader
func FromFS(fsys fs.FS) Loader {
	return NewLoader(BackendTypeFS, WithFS(fsys))
}

// normalizeName maps a resource name to a valid fs.FS path.
func normalizeName(name string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(name))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("empty resource name")
	}
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("invalid resource name")
	}
	return clean, nil
}

func (l *loader) ReadText(name string) (string, error) {
	key, err := normalizeName(name)
	if err != nil {
		return "", &ResourceLoadError{Name: name, Err: err}
	}

	l.mu.RLock()
	if text, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return text, nil
	}
	l.mu.RUnlock()

	data, err := l.backend.read(key)
	if err != nil {
		l.logger.Debug("loader: read failed", "name", name, "err", err)
		return "", &ResourceLoadError{Name: name, Err: err}
	}
	text := string(data)

	if l.caching {
		l.mu.Lock()
		l.cache[key] = text
		l.mu.Unlock()
	}
	l.logger.Debug("loader: read resource", "name", key, "bytes", len(data))
	return text, nil
}

func (l *loader) Preload(names ...string) error {
	for _, name := range names {
		if _, err := l.ReadText(name); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) Cached(name string) bool {
	key, err := normalizeName(name)
	if err != nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[key]
	return ok
}

func (l *loader) Invalidate() {
	l.mu.Lock()
	l.cache = make(map[string]string)
	l.mu.Unlock()
}
