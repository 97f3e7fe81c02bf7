package rest

import (
	"net/http"
	"strings"
)

// Match reports whether r is for method and path. Paths compare exactly
// and case-sensitively, so "/status" and "/status/" differ. Methods compare
// case-insensitively unless ignoreMethod lets any method through.
func Match(method string, ignoreMethod bool, path string, r *http.Request) bool {
	if r.URL.Path != path {
		return false
	}
	return ignoreMethod || strings.EqualFold(r.Method, method)
}
