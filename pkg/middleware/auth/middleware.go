package auth

import (
	"crypto/rsa"
	"time"
)

// Middleware resolves the caller from a signed assertion (cookie or bearer
// token) and stores it on the request context for REST guards.
type Middleware struct {
	adminRole string
	devBypass bool

	assertCookieName string
	assertKey        *rsa.PublicKey
	assertIssuer     string
	assertAudience   string
	assertLeeway     time.Duration
}

// Config is the explicit form of what ProvideAuthentication reads from env.
type Config struct {
	AdminRole  string
	DevBypass  bool
	CookieName string
	PublicKey  *rsa.PublicKey
	Issuer     string
	Audience   string
	Leeway     time.Duration
}

func New(c Config) *Middleware {
	if c.CookieName == "" {
		c.CookieName = "assert"
	}
	return &Middleware{
		adminRole:        c.AdminRole,
		devBypass:        c.DevBypass,
		assertCookieName: c.CookieName,
		assertKey:        c.PublicKey,
		assertIssuer:     c.Issuer,
		assertAudience:   c.Audience,
		assertLeeway:     c.Leeway,
	}
}
