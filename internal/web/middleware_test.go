package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
)

type stubTokens map[string]auth.Principal

func (s stubTokens) Parse(token string) (auth.Principal, error) {
	p, ok := s[token]
	if !ok {
		return auth.Principal{}, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	return p, nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestCorsPreflight(t *testing.T) {
	s := quietServer()
	s.origins = []string{"https://office.example.com"}
	req := httptest.NewRequest(http.MethodOptions, "/api/clients", nil)
	req.Header.Set("Origin", "https://office.example.com")
	rec := httptest.NewRecorder()

	s.cors(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://office.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCorsIgnoresUnlistedOrigin(t *testing.T) {
	s := quietServer()
	s.origins = []string{"https://office.example.com"}
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()

	s.cors(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsWildcard(t *testing.T) {
	s := quietServer()
	s.origins = []string{"*"}
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()

	s.cors(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, "https://anywhere.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCheckOrigin(t *testing.T) {
	s := quietServer()
	s.origins = []string{"https://office.example.com"}

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "no origin", want: true},
		{name: "listed", origin: "https://office.example.com", want: true},
		{name: "same host", origin: "http://api.example.com", want: true},
		{name: "foreign", origin: "https://evil.example.com", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, s.checkOrigin(req))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	securityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestRecovererRespondsWithJSON(t *testing.T) {
	s := quietServer()
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec).Error)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	s := quietServer()

	rec := httptest.NewRecorder()
	s.requestLogger(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.FromString(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	s.requestLogger(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestAuthenticateAndAllow(t *testing.T) {
	s := quietServer()
	s.tokens = stubTokens{
		"tech":   {UserID: uuid.Must(uuid.NewV4()), Role: domain.RoleTechnician},
		"viewer": {UserID: uuid.Must(uuid.NewV4()), Role: domain.RoleViewer},
	}
	h := s.authenticate(s.allow(auth.ActionWrite, domain.CollectionRepairs)(okHandler))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer forged", want: http.StatusUnauthorized},
		{name: "technician may write repairs", header: "Bearer tech", want: http.StatusTeapot},
		{name: "viewer may not", header: "Bearer viewer", want: http.StatusForbidden},
		{name: "token in query", query: "?token=tech", want: http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/repairs"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
