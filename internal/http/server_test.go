package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"controle/internal/core"
	"controle/internal/ledger/memory"
	"controle/internal/locale"
	applog "controle/internal/log"
	"controle/internal/middleware/trace"
	"controle/internal/report"
	"controle/internal/services"
)

var testToday = core.NewDate(2024, 3, 15)

func seedEntries() []core.Entry {
	return []core.Entry{
		{Date: core.NewDate(2024, 3, 5), Kind: core.Income, Description: "Salário", Amount: core.Money{Cents: 150000}},
		{Date: core.NewDate(2024, 3, 10), Kind: core.Expense, Description: "Aluguel", Amount: core.Money{Cents: 80000}},
		{Date: core.NewDate(2024, 4, 2), Kind: core.Expense, Description: "Mercado", Amount: core.Money{Cents: 12345}},
	}
}

func newTestServer(t *testing.T, ledger Ledger, rateLimit int) *Server {
	t.Helper()
	srv, err := NewServer(":0", ledger, Options{
		Locale:             locale.BrazilianPortuguese,
		RateLimitPerMinute: rateLimit,
		Logger:             applog.New(applog.Config{Component: "test", Output: io.Discard}),
		Today:              func() core.Date { return testToday },
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func newMemoryServer(t *testing.T, seed ...core.Entry) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New(seed...)
	return newTestServer(t, services.NewLedgerService(store, nil), 0), store
}

func do(srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newMemoryServer(t, seedEntries()...)

	rr := do(srv, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Novo lançamento", "Relatório Financeiro - Março/2024", "Salário", `value="2024-03-15"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if strings.Contains(body, "Mercado") {
		t.Errorf("index shows an entry from another month")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := do(srv, http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d, want 404", rr.Code)
	}
}

type countingStore struct {
	*memory.Store
	loads int
}

func (c *countingStore) Load(ctx context.Context) (core.Ledger, error) {
	c.loads++
	return c.Store.Load(ctx)
}

func TestIndexLoadsLedgerOnce(t *testing.T) {
	store := &countingStore{Store: memory.New(seedEntries()...)}
	srv := newTestServer(t, services.NewLedgerService(store, nil), 0)

	rr := do(srv, http.MethodGet, "/?year=2024&month=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	if store.loads != 1 {
		t.Errorf("index loaded the ledger %d times, want 1", store.loads)
	}
	if !strings.Contains(rr.Body.String(), `<option value="2024" selected>`) {
		t.Errorf("year selector missing 2024")
	}
}

type failingLedger struct{ err error }

func (f failingLedger) Record(context.Context, core.Entry) (string, error) { return "", f.err }
func (f failingLedger) Report(context.Context, core.Period) (report.Report, error) {
	return report.Report{}, f.err
}
func (f failingLedger) Ping(context.Context) error { return f.err }

func TestStoreFailures(t *testing.T) {
	srv := newTestServer(t, failingLedger{err: errors.New("disk on fire")}, 0)

	if rr := do(srv, http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status=%d, want 503", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Errorf("healthz status=%d, want 200", rr.Code)
	}

	rr := do(srv, http.MethodGet, "/", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("index status=%d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `class="error"`) {
		t.Errorf("500 body is not an error fragment: %s", rr.Body.String())
	}

	form := url.Values{"kind": {"entrada"}, "description": {"x"}, "amount": {"10"}}
	rr = do(srv, http.MethodPost, "/entries", strings.NewReader(form.Encode()))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("create status=%d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "disk on fire") {
		t.Errorf("internal error leaked to the client")
	}
}

func TestCreateEntryValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing description", url.Values{"kind": {"entrada"}, "amount": {"10"}}},
		{"blank description", url.Values{"kind": {"entrada"}, "description": {"   "}, "amount": {"10"}}},
		{"invalid amount", url.Values{"kind": {"entrada"}, "description": {"x"}, "amount": {"abc"}}},
		{"zero amount", url.Values{"kind": {"entrada"}, "description": {"x"}, "amount": {"0"}}},
		{"negative amount", url.Values{"kind": {"saida"}, "description": {"x"}, "amount": {"-5"}}},
		{"invalid kind", url.Values{"kind": {"transfer"}, "description": {"x"}, "amount": {"10"}}},
		{"invalid date", url.Values{"kind": {"entrada"}, "description": {"x"}, "amount": {"10"}, "date": {"31/02/2024x"}}},
		{"description too long", url.Values{"kind": {"entrada"}, "description": {strings.Repeat("a", 201)}, "amount": {"10"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store := newMemoryServer(t)
			rr := do(srv, http.MethodPost, "/entries", strings.NewReader(tt.form.Encode()))
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d, want 422 (body=%s)", rr.Code, rr.Body.String())
			}
			if rr.Header().Get("HX-Trigger") != "" {
				t.Errorf("rejected entry fired HX-Trigger %q", rr.Header().Get("HX-Trigger"))
			}
			l, _ := store.Load(context.Background())
			if len(l) != 0 {
				t.Errorf("rejected entry was stored: %+v", l)
			}
		})
	}
}

func TestCreateEntryMethodNotAllowed(t *testing.T) {
	srv, _ := newMemoryServer(t)
	rr := do(srv, http.MethodGet, "/entries", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCreateEntrySuccess(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantDate  core.Date
		wantKind  core.Kind
		wantCents int64
	}{
		{
			name:      "salary with iso date",
			form:      url.Values{"date": {"2024-03-05"}, "kind": {"entrada"}, "description": {"Salário"}, "amount": {"1500.00"}},
			wantDate:  core.NewDate(2024, 3, 5),
			wantKind:  core.Income,
			wantCents: 150000,
		},
		{
			name:      "grouped brazilian amount",
			form:      url.Values{"date": {"10/04/2024"}, "kind": {"Saída"}, "description": {"Aluguel"}, "amount": {"1.234,50"}},
			wantDate:  core.NewDate(2024, 4, 10),
			wantKind:  core.Expense,
			wantCents: 123450,
		},
		{
			name:      "empty date means today",
			form:      url.Values{"kind": {"saida"}, "description": {"Café"}, "amount": {"4,5"}},
			wantDate:  testToday,
			wantKind:  core.Expense,
			wantCents: 450,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store := newMemoryServer(t)
			rr := do(srv, http.MethodPost, "/entries", strings.NewReader(tt.form.Encode()))
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}

			var triggers map[string]json.RawMessage
			if err := json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &triggers); err != nil {
				t.Fatalf("HX-Trigger is not JSON: %v", err)
			}
			var period map[string]int
			if err := json.Unmarshal(triggers[EventEntryRecorded], &period); err != nil {
				t.Fatalf("missing %s trigger: %v", EventEntryRecorded, err)
			}
			if period["year"] != tt.wantDate.Year() || period["month"] != tt.wantDate.Month() {
				t.Errorf("trigger period = %v, want %d/%d", period, tt.wantDate.Month(), tt.wantDate.Year())
			}
			if _, ok := triggers["form:reset"]; !ok {
				t.Errorf("missing form:reset trigger")
			}

			l, _ := store.Load(context.Background())
			if len(l) != 1 {
				t.Fatalf("stored %d entries, want 1", len(l))
			}
			got := l[0]
			if !got.Date.Equal(tt.wantDate.Time) || got.Kind != tt.wantKind || got.Amount.Cents != tt.wantCents {
				t.Errorf("stored %+v, want date %s kind %v cents %d", got, tt.wantDate.ISO(), tt.wantKind, tt.wantCents)
			}
		})
	}
}

func TestReportPartial(t *testing.T) {
	srv, _ := newMemoryServer(t, seedEntries()...)

	rr := do(srv, http.MethodGet, "/ui/report?year=2024&month=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Salário", "Aluguel", "R$ 1.500,00", "R$ 800,00", "R$ 700,00", `class="income"`, `class="expense"`} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Index(body, "Salário") > strings.Index(body, "Aluguel") {
		t.Errorf("entries are not in insertion order")
	}
	if strings.Contains(body, "Mercado") {
		t.Errorf("report includes an April entry")
	}

	rr = do(srv, http.MethodGet, "/ui/report?year=2024&month=0", nil)
	if !strings.Contains(rr.Body.String(), "Mercado") || !strings.Contains(rr.Body.String(), "Relatório Financeiro - 2024") {
		t.Errorf("whole-year report is missing entries or heading")
	}

	rr = do(srv, http.MethodGet, "/ui/report?year=2023&month=1", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Nenhum lançamento no período.") {
		t.Errorf("empty period status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "R$ 0,00") {
		t.Errorf("empty period does not show zero sums")
	}

	rr = do(srv, http.MethodGet, "/ui/report?year=2024&month=13", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("month 13 status=%d, want 422", rr.Code)
	}
}

func TestChart(t *testing.T) {
	srv, _ := newMemoryServer(t, seedEntries()...)

	for _, target := range []string{"/chart.png?year=2024", "/chart.png", "/chart.png?year=1999"} {
		rr := do(srv, http.MethodGet, target, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", target, rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s content type = %q", target, ct)
		}
		if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s body is not a PNG", target)
		}
	}

	if rr := do(srv, http.MethodGet, "/chart.png?year=abc", nil); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad year status=%d, want 422", rr.Code)
	}
}

func TestExport(t *testing.T) {
	srv, _ := newMemoryServer(t, seedEntries()...)

	tests := []struct {
		format   string
		filename string
		magic    string
	}{
		{"xlsx", "controle_financeiro_2024_03.xlsx", "PK"},
		{"docx", "relatorio_financeiro_2024_03.docx", "PK"},
		{"pdf", "relatorio_financeiro_2024_03.pdf", "%PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rr := do(srv, http.MethodGet, "/export/"+tt.format+"?year=2024&month=3", nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.filename) {
				t.Errorf("Content-Disposition = %q, want %s", cd, tt.filename)
			}
			if !bytes.HasPrefix(rr.Body.Bytes(), []byte(tt.magic)) {
				t.Errorf("body does not start with %q", tt.magic)
			}
		})
	}

	if rr := do(srv, http.MethodGet, "/export/csv", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown format status=%d, want 404", rr.Code)
	}
}

func TestMiddlewareChain(t *testing.T) {
	srv, _ := newMemoryServer(t)

	rr := do(srv, http.MethodGet, "/healthz", nil)
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("security headers missing")
	}
	if rr.Header().Get(trace.Header) == "" {
		t.Errorf("request id header missing")
	}

	rr = do(srv, http.MethodGet, "/static/style.css", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("static status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=3600") {
		t.Errorf("static Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}

func TestRateLimitOnPost(t *testing.T) {
	store := memory.New()
	srv := newTestServer(t, services.NewLedgerService(store, nil), 2)
	form := url.Values{"kind": {"entrada"}, "description": {"x"}, "amount": {"1"}}.Encode()

	for i := 0; i < 2; i++ {
		if rr := do(srv, http.MethodPost, "/entries", strings.NewReader(form)); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(srv, http.MethodPost, "/entries", strings.NewReader(form))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third POST status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Errorf("missing Retry-After")
	}

	// GETs are not limited.
	if rr := do(srv, http.MethodGet, "/ui/report", nil); rr.Code != http.StatusOK {
		t.Errorf("GET after limit status=%d", rr.Code)
	}
}
