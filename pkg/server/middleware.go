package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/requestlog"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// requireAuth rejects requests without a valid session token and stashes the
// authenticated identity in the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, http.StatusUnauthorized, types.KindTokenUnknown, "Authentication required")
			return
		}

		ident, err := s.authority.Validate(token)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// withAccessLog records traffic into the debug request history and emits a
// per-request log line. Debug-surface requests are logged but kept out of the
// history so inspecting it does not pollute it.
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		if !strings.HasPrefix(r.URL.Path, "/debug/") {
			s.requests.Record(requestlog.Entry{
				Method:     r.Method,
				Path:       r.URL.Path,
				Query:      r.URL.RawQuery,
				Status:     rec.code,
				DurationMs: elapsed.Milliseconds(),
				RemoteAddr: r.RemoteAddr,
			})
		}

		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", elapsed,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
