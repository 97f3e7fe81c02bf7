// pkg/params/params.go
package params

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Map holds decoded request parameters. Keys are unique; the last
// occurrence of a key in the raw data wins.
type Map map[string]string

// Get returns the value for key, or "" when absent.
func (m Map) Get(key string) string { return m[key] }

// Has reports whether key was present, even with an empty value.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Decode turns query-string formatted data (k1=v1&k2=v2) into a Map.
// A pair without '=' yields the key with an empty value. Body-carrying
// methods get trailing line breaks trimmed first, since stream readers
// tend to leave one behind.
func Decode(raw string, method string) Map {
	out := Map{}
	if !isQueryMethod(method) {
		raw = strings.TrimRight(raw, "\r\n")
	}
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		k = unescape(k)
		if k == "" {
			continue
		}
		out[k] = unescape(v)
	}
	return out
}

// Merge unions GET and POST parameters; POST wins on key collision.
func Merge(get, post Map) Map {
	out := make(Map, len(get)+len(post))
	for k, v := range get {
		out[k] = v
	}
	for k, v := range post {
		out[k] = v
	}
	return out
}

// Encode renders m as a query string with keys in sorted order.
func Encode(m Map) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(m[k]))
	}
	return b.String()
}

// FromRequest reads parameters for method from r: the URL query for GET,
// the body otherwise. With merge set, both are decoded and merged with
// body values taking precedence.
func FromRequest(r *http.Request, method string, merge bool) (Map, error) {
	if merge {
		body, err := readBody(r)
		if err != nil {
			return nil, err
		}
		return Merge(Decode(r.URL.RawQuery, http.MethodGet), Decode(body, http.MethodPost)), nil
	}
	if isQueryMethod(method) {
		return Decode(r.URL.RawQuery, method), nil
	}
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	return Decode(body, method), nil
}

func readBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	// leave the body readable for the callback
	r.Body = io.NopCloser(bytes.NewReader(b))
	return string(b), nil
}

func isQueryMethod(method string) bool {
	m := strings.ToUpper(strings.TrimSpace(method))
	return m == http.MethodGet || m == http.MethodHead
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}
