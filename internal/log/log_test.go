package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})
	l.Info("appended", FieldRowRef, "csv:1")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "row_ref=csv:1") {
		t.Errorf("unexpected log line: %s", out)
	}
	if l.WithComponent(ComponentWorker).Component() != ComponentWorker {
		t.Error("WithComponent should change the component")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	var fromCtx *Logger
	h := Middleware(logger, func(*http.Request) string { return "req-1" }, func(*http.Request) string { return "10.0.0.1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = FromContext(r.Context())
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if fromCtx == nil || fromCtx.Component() != ComponentHTTP {
		t.Fatalf("handler logger = %+v", fromCtx)
	}
	out := buf.String()
	for _, s := range []string{"level=WARN", "status_code=422", "request_id=req-1", "client_ip=10.0.0.1", "path=/entries"} {
		if !strings.Contains(out, s) {
			t.Errorf("log missing %q: %s", s, out)
		}
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger")
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithEntry("2024-03-05", "Entrada", "Salary", 150000).
		WithPeriod(2024, 3).
		WithRequestID("").
		WithError(nil)
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should be omitted")
	}
	if f[FieldAmountCents] != int64(150000) || f[FieldMonth] != 3 {
		t.Errorf("fields = %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Error("ToSlice should emit key/value pairs")
	}
}
