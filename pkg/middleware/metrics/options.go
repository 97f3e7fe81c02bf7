package metrics

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

var (
	labelMu   sync.RWMutex
	skipPaths = map[string]struct{}{"/metrics": {}, "/ping": {}}

	// longest first, so "/assets/img/" wins over "/assets/"
	collapsed []string
	exact     = map[string]struct{}{}
	catchAll  bool
)

// AddMetricsSkipPaths extends the skip list ("/metrics" and "/ping" by default).
func AddMetricsSkipPaths(paths ...string) {
	labelMu.Lock()
	defer labelMu.Unlock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			skipPaths[p] = struct{}{}
		}
	}
}

// ExactPaths keeps paths as their own uri label even under a collapsed
// prefix. REST routes are registered here.
func ExactPaths(paths ...string) {
	labelMu.Lock()
	defer labelMu.Unlock()
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			exact[p] = struct{}{}
		}
	}
}

// CollapsePrefixes reports every request under one of prefixes with the uri
// label "<prefix>*". Static handlers serve unbounded key spaces, so their
// prefixes are registered here when the chain is built. Prefix "/" makes
// every path that is not in ExactPaths report as "/*".
func CollapsePrefixes(prefixes ...string) {
	labelMu.Lock()
	defer labelMu.Unlock()
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "/" {
			catchAll = true
			continue
		}
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		if !containsString(collapsed, p) {
			collapsed = append(collapsed, p)
		}
	}
	sort.Slice(collapsed, func(i, j int) bool { return len(collapsed[i]) > len(collapsed[j]) })
}

func resetLabels() {
	labelMu.Lock()
	skipPaths = map[string]struct{}{"/metrics": {}, "/ping": {}}
	collapsed = nil
	exact = map[string]struct{}{}
	catchAll = false
	labelMu.Unlock()
}

func isSkipPath(r *http.Request) bool {
	labelMu.RLock()
	_, ok := skipPaths[r.URL.Path]
	labelMu.RUnlock()
	return ok
}

func uriLabel(r *http.Request) string {
	p := r.URL.Path
	labelMu.RLock()
	defer labelMu.RUnlock()
	if _, ok := exact[p]; ok {
		return p
	}
	for _, pre := range collapsed {
		if strings.HasPrefix(p, pre) {
			return pre + "*"
		}
	}
	if catchAll {
		return "/*"
	}
	return p
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
