package manifest

import (
	"fmt"
	"net/http"
)

// Config is the top-level manifest. Handlers are kept in file order, which
// is the order the dispatch chain tries them in.
type Config struct {
	Server   Server    `toml:"server" yaml:"server"`
	Handlers []Handler `toml:"handler" yaml:"handler"`
}

type Server struct {
	// FallbackStatus answers requests no handler took. Default 404.
	FallbackStatus int `toml:"fallback_status" yaml:"fallback_status"`
}

// Validate normalizes handlers in place and reports the first problem.
func (c *Config) Validate() error {
	if c.Server.FallbackStatus == 0 {
		c.Server.FallbackStatus = http.StatusNotFound
	}
	if c.Server.FallbackStatus < 100 || c.Server.FallbackStatus > 599 {
		return fmt.Errorf("%w: server.fallback_status %d out of range", ErrInvalid, c.Server.FallbackStatus)
	}
	if len(c.Handlers) == 0 {
		return fmt.Errorf("%w: at least one handler is required", ErrInvalid)
	}
	seen := map[string]int{}
	for i := range c.Handlers {
		h := &c.Handlers[i]
		if err := h.normalize(i); err != nil {
			return fmt.Errorf("%w: handler %d: %v", ErrInvalid, i, err)
		}
		if err := h.validate(); err != nil {
			return fmt.Errorf("%w: handler %d (%s): %v", ErrInvalid, i, h.Name, err)
		}
		if prev, dup := seen[h.Name]; dup {
			return fmt.Errorf("%w: handler %d: name %q already used by handler %d", ErrInvalid, i, h.Name, prev)
		}
		seen[h.Name] = i
	}
	return nil
}
