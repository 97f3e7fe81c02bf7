package static

import (
	"errors"
	"strings"
)

// Kind is the outcome of resolving one request path.
type Kind int

const (
	Found Kind = iota
	NotFound
	BadRequest
	Deferred
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	case Deferred:
		return "deferred"
	}
	return "unknown"
}

type Resolution struct {
	Kind Kind
	Key  string
	Body []byte
}

// Resolver maps request paths to resources under Base.
type Resolver struct {
	Base   string
	Loader Loader
	// Send404 answers NotFound for a missing resource; when false the
	// resolver defers so a later handler in the chain can try.
	Send404 bool
}

func NewResolver(base string, l Loader) *Resolver {
	return &Resolver{Base: base, Loader: l, Send404: true}
}

// Resolve rejects any path containing ".." before touching the loader,
// then loads Base+requestPath.
func (rs *Resolver) Resolve(requestPath string) (Resolution, error) {
	if strings.Contains(requestPath, "..") {
		return Resolution{Kind: BadRequest}, nil
	}
	key := rs.Base + requestPath
	b, err := rs.Loader.Load(key)
	switch {
	case err == nil:
		return Resolution{Kind: Found, Key: key, Body: b}, nil
	case errors.Is(err, ErrNotFound):
		if rs.Send404 {
			return Resolution{Kind: NotFound, Key: key}, nil
		}
		return Resolution{Kind: Deferred, Key: key}, nil
	default:
		return Resolution{Key: key}, err
	}
}
