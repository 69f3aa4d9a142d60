package http

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// API KEY AUTHENTICATION
// Keys are never stored in the clear: the config carries bcrypt hashes and
// each request's key is compared against them. With no hashes configured the
// guard is a pass-through (open instance, e.g. local development).
// ══════════════════════════════════════════════════════════════════════════════

type apiKeyAuth struct {
	headerName string
	hashes     [][]byte
}

func newAPIKeyAuth(headerName string, hashes []string) *apiKeyAuth {
	a := &apiKeyAuth{headerName: headerName}
	if a.headerName == "" {
		a.headerName = "X-API-Key"
	}
	for _, h := range hashes {
		if h != "" {
			a.hashes = append(a.hashes, []byte(h))
		}
	}
	return a
}

// enabled reports whether any key hashes are configured.
func (a *apiKeyAuth) enabled() bool {
	return len(a.hashes) > 0
}

// isValid compares the presented key against every configured hash.
func (a *apiKeyAuth) isValid(key string) bool {
	for _, hash := range a.hashes {
		if bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil {
			return true
		}
	}
	return false
}

// middleware rejects requests without a valid key.
func (a *apiKeyAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(a.headerName)
		if key == "" {
			// Authorization: Bearer <key> is accepted as an alias.
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing_api_key", "API key is required for write operations")
			return
		}
		if !a.isValid(key) {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
