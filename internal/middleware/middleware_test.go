package middleware

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"viralclip/internal/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := r.Context().Value(UserContextKey).(string)
		claims := ClaimsFromContext(r.Context())
		name := ""
		if claims != nil {
			name = claims.Name
		}
		_, _ = w.Write([]byte(user + "|" + name))
	})
}

func TestAuthMiddleware(t *testing.T) {
	good, err := util.IssueHS256(secret, "user-9", "Grace", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + good, http.StatusOK, "user-9|Grace"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
	}
	h := AuthMiddleware(secret, zerolog.Nop())(echoUser())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/clips", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareRejectsHMACForgedWithPublicKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	forged, err := util.IssueHS256(pubPEM, "owner-open-id", "", time.Hour)
	require.NoError(t, err)

	h := AuthMiddleware(pubPEM, zerolog.Nop())(echoUser())
	req := httptest.NewRequest(http.MethodGet, "/clips", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "owner-open-id")
}

func TestAuthMiddlewareUnusableKey(t *testing.T) {
	good, err := util.IssueHS256(secret, "user-9", "", time.Hour)
	require.NoError(t, err)

	h := AuthMiddleware("", zerolog.Nop())(echoUser())
	req := httptest.NewRequest(http.MethodGet, "/clips", nil)
	req.Header.Set("Authorization", "Bearer "+good)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggerMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tier?x=1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"uri":"/tier?x=1"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLoggerMiddlewareKeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := LoggerMiddleware(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/clips", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
}
