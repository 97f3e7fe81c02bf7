package dispatch

import "strings"

// NegotiateContentType picks the first media type listed in an Accept
// header, without parameters. Wildcards and empty headers yield fallback.
func NegotiateContentType(accept, fallback string) string {
	first, _, _ := strings.Cut(accept, ",")
	first, _, _ = strings.Cut(first, ";")
	first = strings.TrimSpace(first)
	if first == "" || first == "*/*" {
		return fallback
	}
	return first
}
