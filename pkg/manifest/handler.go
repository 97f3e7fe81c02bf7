package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Handler describes one entry of the dispatch chain.
type Handler struct {
	Type HandlerType `toml:"type" yaml:"type"`
	Name string      `toml:"name" yaml:"name"`

	// rest
	Method       string `toml:"method" yaml:"method"`
	Path         string `toml:"path" yaml:"path"`
	Callback     string `toml:"callback" yaml:"callback"`
	IgnoreMethod bool   `toml:"ignore_method" yaml:"ignore_method"`
	Codec        string `toml:"codec" yaml:"codec"`
	Guard        Guard  `toml:"guard" yaml:"guard"`
	LogBody      bool   `toml:"log_body" yaml:"log_body"`
	TimeoutMS    int    `toml:"timeout_ms" yaml:"timeout_ms"`

	// static
	Prefix        string `toml:"prefix" yaml:"prefix"`
	Base          string `toml:"base" yaml:"base"`
	Source        string `toml:"source" yaml:"source"`
	Send404       *bool  `toml:"send_404" yaml:"send_404"`
	StrictMethods bool   `toml:"strict_methods" yaml:"strict_methods"`
}

type Guard struct {
	Roles       []string `toml:"roles" yaml:"roles"`
	Users       []string `toml:"users" yaml:"users"`
	RequireAuth bool     `toml:"require_auth" yaml:"require_auth"`
}

// SendNotFound reports the effective send_404 flag (default true).
func (h Handler) SendNotFound() bool { return h.Send404 == nil || *h.Send404 }

// SourceParts splits Source into kind and argument.
func (h Handler) SourceParts() (kind, arg string) {
	kind, arg, _ = strings.Cut(h.Source, ":")
	return kind, arg
}

func (h *Handler) normalize(i int) error {
	h.Type = HandlerType(strings.ToLower(strings.TrimSpace(string(h.Type))))
	switch h.Type {
	case HandlerRest:
		if h.Path == "" {
			return errors.New("path is required")
		}
		if !strings.HasPrefix(h.Path, "/") {
			h.Path = "/" + h.Path
		}
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = "GET"
		}
		h.Codec = strings.ToLower(strings.TrimSpace(h.Codec))
		if h.Name == "" {
			if h.IgnoreMethod {
				h.Name = "ANY " + h.Path
			} else {
				h.Name = h.Method + " " + h.Path
			}
		}
	case HandlerStatic:
		if h.Prefix == "" {
			h.Prefix = "/"
		}
		if !strings.HasPrefix(h.Prefix, "/") {
			h.Prefix = "/" + h.Prefix
		}
		h.Source = strings.TrimSpace(h.Source)
		if h.Name == "" {
			h.Name = fmt.Sprintf("static#%d", i)
		}
	default:
		return fmt.Errorf("unknown handler type %q", h.Type)
	}
	return nil
}

func (h *Handler) validate() error {
	switch h.Type {
	case HandlerRest:
		if strings.TrimSpace(h.Callback) == "" {
			return errors.New("callback required for rest")
		}
		if h.TimeoutMS < 0 {
			return errors.New("timeout_ms must be >= 0")
		}
		switch h.Codec {
		case "", "json", "form":
		default:
			return fmt.Errorf("codec %q invalid", h.Codec)
		}
	case HandlerStatic:
		if strings.Contains(h.Base, "..") {
			return errors.New("base must not contain \"..\"")
		}
		kind, arg := h.SourceParts()
		switch kind {
		case SourceDir, SourceBundle:
			if arg == "" {
				return fmt.Errorf("source %q needs an argument", h.Source)
			}
		default:
			return fmt.Errorf("source %q invalid (want dir:<path> or bundle:<name>)", h.Source)
		}
	}
	return nil
}
