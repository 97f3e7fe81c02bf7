package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)

// ProvideAuthentication wires env config. A missing or unreadable key is
// logged and leaves assertion checks disabled; guarded routes then answer
// 401 to everyone but dev-bypass users.
func ProvideAuthentication(zl *zap.Logger) *Middleware {
	leeway := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("ASSERTION_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leeway = time.Duration(n) * time.Second
		}
	}

	cfg := Config{
		AdminRole:  os.Getenv("ADMIN_ROLE_NAME"),
		DevBypass:  os.Getenv("AUTH_DEV_BYPASS") == "true",
		CookieName: strings.TrimSpace(os.Getenv("ASSERTION_COOKIE_NAME")),
		Issuer:     strings.TrimSpace(os.Getenv("ASSERTION_ISSUER")),
		Audience:   strings.TrimSpace(os.Getenv("ASSERTION_AUDIENCE")),
		Leeway:     leeway,
	}

	if path := strings.TrimSpace(os.Getenv("ASSERTION_KEY_FILE")); path != "" {
		pub, err := LoadPublicKey(path)
		if err != nil {
			zl.Error("assertion key load failed", zap.String("path", path), zap.Error(err))
		} else {
			cfg.PublicKey = pub
		}
	}
	return New(cfg)
}

// LoadPublicKey reads a PEM encoded PKIX RSA public key.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePublicKey(b)
}

func ParsePublicKey(b []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rk, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("PEM is not RSA public key")
	}
	return rk, nil
}
