package rest

import "sync"

var (
	regMu    sync.RWMutex
	registry = map[string]Callback{}
)

// Register makes cb available under a name referenced in the manifest.
// Registering the same name twice replaces the earlier callback.
func Register(name string, cb Callback) {
	regMu.Lock()
	registry[name] = cb
	regMu.Unlock()
}

// Lookup retrieves a registered callback by name.
func Lookup(name string) (Callback, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	cb, ok := registry[name]
	return cb, ok
}
