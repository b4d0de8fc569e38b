package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveLogged(t *testing.T, status int, req *http.Request) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestLogging_CredentialsNeverLogged(t *testing.T) {
	t.Parallel()

	const key = "fk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"
	for _, header := range []string{"Authorization", "X-API-Key"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil)
		value := key
		if header == "Authorization" {
			value = "Bearer " + key
		}
		req.Header.Set(header, value)

		out := serveLogged(t, http.StatusOK, req)
		for _, secret := range []string{key, "fk_live_", "Bearer"} {
			if strings.Contains(out, secret) {
				t.Errorf("%s: log output contains %q", header, secret)
			}
		}
	}
}

func TestLogging_BasicFields(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
	out := serveLogged(t, http.StatusCreated, req)

	for _, field := range []string{
		`"msg":"http request"`,
		`"method":"POST"`,
		`"path":"/api/v1/transactions"`,
		`"status_code":201`,
		`"bytes":11`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("log field %s not found in %s", field, out)
		}
	}
}

func TestLogging_LevelByStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusCreated, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			out := serveLogged(t, tt.status, httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil))
			if !strings.Contains(out, `"level":"`+tt.wantLevel+`"`) {
				t.Errorf("status %d: want level %s, got %s", tt.status, tt.wantLevel, out)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("default status", func(t *testing.T) {
		w := newStatusRecorder(httptest.NewRecorder())
		_, _ = w.Write([]byte("hello"))
		if w.status != http.StatusOK || w.bytes != 5 {
			t.Errorf("status=%d bytes=%d, want 200 and 5", w.status, w.bytes)
		}
	})

	t.Run("first WriteHeader wins", func(t *testing.T) {
		w := newStatusRecorder(httptest.NewRecorder())
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
		if w.status != http.StatusCreated {
			t.Errorf("status = %d, want %d", w.status, http.StatusCreated)
		}
	})
}
