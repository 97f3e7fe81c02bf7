package logger

import (
	"bytes"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/auth"
	"go.uber.org/zap"
)

type Middleware struct{}

// Middleware writes one access log line per request once the response is
// done. ca may be nil.
func (m *Middleware) Middleware(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := accessLogger()
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			var body []byte
			if wantsBody(r) {
				body = captureBody(r)
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				var u auth.User
				isAuth := false
				if ca != nil {
					u = ca.GetUser(r.Context())
					isAuth = ca.IsAuthenticated(r.Context())
				}

				fields := []zap.Field{
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Bool("isAuthenticated", isAuth),
					zap.String("username", u.Username),
					zap.String("role", u.Role.Name),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				}
				if len(body) > 0 {
					fields = append(fields, zap.ByteString("requestData", body))
				}
				l.Info("http request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// captureBody reads r.Body and puts back a body that yields the same bytes,
// followed by the read error if there was one. Returns nil on error.
func captureBody(r *http.Request) []byte {
	b, err := io.ReadAll(r.Body)
	rest := io.Reader(bytes.NewReader(b))
	if err != nil {
		rest = io.MultiReader(rest, errReader{err})
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{rest, r.Body}
	if err != nil {
		return nil
	}
	return b
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
