package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/flemzord/notekeeper/internal/security"
)

// authMiddleware validates a Bearer token with a constant-time comparison.
// Failures are audited when an AuditLogger is provided.
func authMiddleware(token string, auditLogger *security.AuditLogger, counters *Counters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				reject(w, r, auditLogger, counters, "missing authorization header")
				return
			}
			presented, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || !constantTimeEqual(presented, token) {
				reject(w, r, auditLogger, counters, "invalid credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger *security.AuditLogger, counters *Counters, detail string) {
	if counters != nil {
		counters.authFailures.Add(1)
	}
	if logger != nil {
		logger.Log(security.AuditEvent{
			Type:   security.EventAuthFailure,
			Detail: detail,
			Metadata: map[string]string{
				"remote_addr": r.RemoteAddr,
				"method":      r.Method,
				"path":        r.URL.Path,
			},
		})
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="notekeeper"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// constantTimeEqual compares two strings in constant time.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
