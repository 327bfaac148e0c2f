package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvdata/internal/config"
)

// Error codes returned by APIKeyAuth.
const (
	CodeMissingKey = "AUTH_MISSING_KEY"
	CodeInvalidKey = "AUTH_INVALID_KEY"
)

// APIKeyAuth validates the X-API-Key header, or an "Authorization: Bearer"
// token, against the configured keys. When RequireAPIKey is false every
// request passes; when it is true with no keys every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := requestKey(r)
			if key == "" {
				reject(w, r, http.StatusUnauthorized, "missing API key", CodeMissingKey)
				return
			}
			if !isValidAPIKey(key, cfg.APIKeys) {
				reject(w, r, http.StatusForbidden, "invalid API key", CodeInvalidKey)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func reject(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	slog.Warn("auth: "+msg,
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}

// isValidAPIKey compares key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
