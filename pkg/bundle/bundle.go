// Package bundle keeps the named filesystems applications ship their
// static resources in, typically an embed.FS registered from init.
package bundle

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

var (
	mu  sync.RWMutex
	reg = map[string]fs.FS{}
)

// Register binds fsys to name. Registering a name twice panics.
func Register(name string, fsys fs.FS) {
	if name == "" || fsys == nil {
		panic("bundle: name and fs required")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := reg[name]; dup {
		panic("bundle: duplicate " + name)
	}
	reg[name] = fsys
}

func Lookup(name string) (fs.FS, error) {
	mu.RLock()
	defer mu.RUnlock()
	fsys, ok := reg[name]
	if !ok {
		return nil, fmt.Errorf("bundle: %q not registered", name)
	}
	return fsys, nil
}

// Names lists registered bundles, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
