// pkg/static/loader.go
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrNotFound is returned by a Loader when no resource exists for a key.
var ErrNotFound = errors.New("static: resource not found")

// Loader reads bundled resources by key. It is the loading context a
// static handler resolves against, and is never written to.
type Loader interface {
	Load(key string) ([]byte, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(key string) ([]byte, error)

func (f LoaderFunc) Load(key string) ([]byte, error) { return f(key) }

// FSLoader serves keys out of an fs.FS such as an embed.FS or os.DirFS.
// Keys are slash separated; a leading slash is ignored.
type FSLoader struct {
	FS fs.FS
}

func (l FSLoader) Load(key string) ([]byte, error) {
	name := strings.TrimPrefix(key, "/")
	if name == "" || !fs.ValidPath(name) {
		return nil, ErrNotFound
	}
	fi, err := fs.Stat(l.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if fi.IsDir() {
		return nil, ErrNotFound
	}
	b, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}
