package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates when missing", "", false},
		{"keeps valid uuid", "6f1c8a4e-2b1f-4c55-9d0e-1a2b3c4d5e6f", true},
		{"replaces garbage", "<script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromRequest(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(Header, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("request id %q is not a uuid", seen)
			}
			if rec.Header().Get(Header) != seen {
				t.Errorf("response header = %q, want %q", rec.Header().Get(Header), seen)
			}
			if tt.keep && seen != tt.incoming {
				t.Errorf("id = %q, want incoming %q", seen, tt.incoming)
			}
			if !tt.keep && seen == tt.incoming {
				t.Error("id should have been regenerated")
			}
		})
	}
}
