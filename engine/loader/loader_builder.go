package loader

import (
	"io/fs"
	"log/slog"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS is an option builder that reads resources from fsys.
//
// Parameters:
//   - fsys: the file system holding the resources
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file system option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = newFSLoaderBackend(fsys)
	}
}

// WithRoot is an option builder that reads resources from a directory on disk.
//
// Parameters:
//   - dir: the directory resource names are resolved against
//
// Returns:
//   - LoaderBuilderOption: a function that applies the directory option to a loader
func WithRoot(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = newDirLoaderBackend(dir)
	}
}

// WithCaching is an option builder that enables or disables the text cache. Enabled by default.
//
// Parameters:
//   - enabled: whether read resources are kept
//
// Returns:
//   - LoaderBuilderOption: a function that applies the caching option to a loader
func WithCaching(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.caching = enabled
	}
}

// WithText is an option builder that pre-populates the cache with a resource.
//
// Parameters:
//   - name: the resource name
//   - text: the resource text
//
// Returns:
//   - LoaderBuilderOption: a function that applies the text option to a loader
func WithText(name, text string) LoaderBuilderOption {
	return func(l *loader) {
		if key, err := normalizeName(name); err == nil {
			l.cache[key] = text
		}
	}
}

// WithLogger is an option builder that sets the loader's logger.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}
