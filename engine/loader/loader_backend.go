package loader

import (
	"io/fs"
	"os"
)

// loaderBackend reads raw resource bytes by normalized name.
type loaderBackend interface {
	// read returns the bytes of the named resource.
	//
	// Parameters:
	//   - name: a name accepted by fs.ValidPath
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: error if the resource cannot be read
	read(name string) ([]byte, error)
}

type fsLoaderBackend struct {
	fsys fs.FS
}

func newFSLoaderBackend(fsys fs.FS) loaderBackend {
	return &fsLoaderBackend{fsys: fsys}
}

func newDirLoaderBackend(root string) loaderBackend {
	return &fsLoaderBackend{fsys: os.DirFS(root)}
}

func (b *fsLoaderBackend) read(name string) ([]byte, error) {
	return fs.ReadFile(b.fsys, name)
}
