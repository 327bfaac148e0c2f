package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvdata/internal/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAPIKeyAuth(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"key-one", "key-two"}}

	tests := []struct {
		name     string
		header   string
		value    string
		want     int
		wantCode string
	}{
		{"missing key", "", "", http.StatusUnauthorized, CodeMissingKey},
		{"invalid key", "X-API-Key", "nope", http.StatusForbidden, CodeInvalidKey},
		{"valid first key", "X-API-Key", "key-one", http.StatusOK, ""},
		{"valid second key", "X-API-Key", "key-two", http.StatusOK, ""},
		{"bearer token", "Authorization", "Bearer key-two", http.StatusOK, ""},
		{"bearer wrong token", "Authorization", "Bearer other", http.StatusForbidden, CodeInvalidKey},
		{"basic auth ignored", "Authorization", "Basic a2V5LW9uZQ==", http.StatusUnauthorized, CodeMissingKey},
	}

	h := APIKeyAuth(cfg)(okHandler)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.wantCode != "" && !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body = %q, want code %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{})(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAPIKeyAuth_NoKeysConfigured(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{RequireAPIKey: true})(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "")
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted peer keeps remote", []string{"10.0.0.0/8"}, "203.0.113.5:1234",
			map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.5:1234"},
		{"trusted peer uses X-Real-IP", []string{"10.0.0.0/8"}, "10.1.2.3:1234",
			map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted peer uses first forwarded", []string{"10.0.0.0/8"}, "10.1.2.3:1234",
			map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"}, "5.6.7.8"},
		{"invalid header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:1234",
			map[string]string{"X-Real-IP": "not-an-ip"}, "10.1.2.3:1234"},
		{"bare address trusted", []string{"127.0.0.1"}, "127.0.0.1:80",
			map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"no trusted proxies", nil, "127.0.0.1:80",
			map[string]string{"X-Real-IP": "9.9.9.9"}, "127.0.0.1:80"},
		{"invalid cidr skipped", []string{"bogus", "10.0.0.0/8"}, "10.0.0.2:80",
			map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_CapturesStatusAndBytes(t *testing.T) {
	var ww *responseWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if ww.status != http.StatusTeapot {
		t.Errorf("captured status = %d, want %d", ww.status, http.StatusTeapot)
	}
	if ww.bytes != 5 {
		t.Errorf("captured bytes = %d, want 5", ww.bytes)
	}
}
