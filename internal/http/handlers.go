package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"controle/internal/core"
	applog "controle/internal/log"
	"controle/internal/render"
	"controle/internal/report"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type exportLink struct {
	Label string
	URL   string
}

type reportView struct {
	Heading  string
	Year     int
	Month    int
	Rows     []render.Row
	Summary  []render.SummaryLine
	Exports  []exportLink
	ChartURL string
}

type pageView struct {
	Title  string
	Today  string
	Years  []option
	Months []option
	Report reportView
}

func (s *Server) newReportView(rep report.Report) reportView {
	q := periodQuery(rep.Period)
	v := reportView{
		Heading:  render.Heading(rep, s.loc),
		Year:     rep.Period.Year,
		Month:    rep.Period.Month,
		Rows:     render.Rows(rep, s.loc),
		Summary:  render.SummaryLines(rep.Summary, s.loc),
		ChartURL: "/chart.png?" + url.Values{"year": {strconv.Itoa(rep.Period.Year)}}.Encode(),
	}
	for _, f := range render.Formats {
		v.Exports = append(v.Exports, exportLink{
			Label: strings.ToUpper(string(f)),
			URL:   "/export/" + string(f) + "?" + q,
		})
	}
	return v
}

func periodQuery(p core.Period) string {
	return url.Values{
		"year":  {strconv.Itoa(p.Year)},
		"month": {strconv.Itoa(p.Month)},
	}.Encode()
}

// loadReport parses the period filter and builds its report. It writes the
// error response itself and returns false when the request cannot proceed.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	p := ParsePeriodParams(r.URL.Query(), s.today())
	rep, err := s.ledger.Report(r.Context(), p)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return report.Report{}, false
		}
		applog.FromContext(r.Context()).LogFields(r.Context(), slog.LevelError, "Failed to build report",
			applog.NewFields().
				WithOperation(applog.OpLoad).
				WithPeriod(p.Year, p.Month).
				WithError(err))
		InternalServerError("Erro ao carregar os lançamentos").Write(w)
		return report.Report{}, false
	}
	return rep, true
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
		InternalServerError("Erro ao exibir a página").Write(w)
		return
	}
	NewHTMXResponse().HTML(buf.String()).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.renderTemplate(w, r, "index.html", pageView{
		Title:  render.Title,
		Today:  s.today().ISO(),
		Years:  yearOptions(rep.Years, rep.Period.Year),
		Months: monthOptions(rep.Period.Month, s.loc.MonthName),
		Report: s.newReportView(rep),
	})
}

func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.renderTemplate(w, r, "report", s.newReportView(rep))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err)
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	e, err := ParseEntryForm(r.PostForm, s.loc, s.today())
	if err != nil {
		msg, ok := validationMessage(err)
		if !ok {
			msg = "Dados inválidos"
		}
		UnprocessableEntityError(msg).Write(w)
		return
	}

	ref, err := s.ledger.Record(r.Context(), e)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		logger.LogFields(r.Context(), slog.LevelError, "Failed to save entry",
			applog.NewFields().
				WithOperation(applog.OpAppend).
				WithEntry(e.Date.ISO(), e.Kind.String(), e.Description, e.Amount.Cents).
				WithError(err))
		InternalServerError("Erro ao salvar o lançamento").Write(w)
		return
	}

	logger.LogFields(r.Context(), slog.LevelInfo, "Entry recorded",
		applog.NewFields().
			WithOperation(applog.OpAppend).
			WithEntry(e.Date.ISO(), e.Kind.String(), e.Description, e.Amount.Cents))

	msg := fmt.Sprintf("%s registrada (#%s): %s, %s", e.Kind, ref, e.Description, s.loc.Currency(e.Amount))
	NewHTMXResponse().
		TriggerEntryRecorded(e.Date.Year(), e.Date.Month()).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		HTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// handleChart draws the monthly totals of the requested year, or of the
// whole ledger when no year is given.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	yearParam := strings.TrimSpace(r.URL.Query().Get("year"))
	p := core.Period{Year: today.Year()}
	if yearParam != "" {
		y, err := strconv.Atoi(yearParam)
		if err != nil {
			UnprocessableEntityError("Ano inválido").Write(w)
			return
		}
		p.Year = y
	}

	rep, err := s.ledger.Report(r.Context(), p)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build chart data", applog.FieldError, err)
		InternalServerError("Erro ao gerar o gráfico").Write(w)
		return
	}

	monthly := rep.Monthly
	if yearParam != "" {
		monthly = monthly[:0:0]
		for _, m := range rep.Monthly {
			if m.Period.Year == p.Year {
				monthly = append(monthly, m)
			}
		}
	}

	var buf bytes.Buffer
	if err := render.Chart(&buf, monthly, s.loc); err != nil {
		applog.FromContext(r.Context()).LogFields(r.Context(), slog.LevelError, "Failed to render chart",
			applog.NewFields().WithOperation(applog.OpRender).WithError(err))
		InternalServerError("Erro ao gerar o gráfico").Write(w)
		return
	}
	NewHTMXResponse().
		Header("Cache-Control", "no-store").
		Blob("image/png", buf.Bytes()).
		Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(r.PathValue("format"))
	if err != nil {
		NotFoundError("Formato de exportação desconhecido").Write(w)
		return
	}
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	data, err := render.Export(f, rep, s.loc)
	if err != nil {
		applog.FromContext(r.Context()).LogFields(r.Context(), slog.LevelError, "Export failed",
			applog.NewFields().
				WithOperation(applog.OpExport).
				WithPeriod(rep.Period.Year, rep.Period.Month).
				WithError(err).
				WithFormat(string(f)))
		InternalServerError("Erro ao exportar o relatório").Write(w)
		return
	}

	applog.FromContext(r.Context()).LogFields(r.Context(), slog.LevelInfo, "Report exported",
		applog.NewFields().
			WithOperation(applog.OpExport).
			WithPeriod(rep.Period.Year, rep.Period.Month).
			WithFormat(string(f)))

	NewHTMXResponse().
		Blob(f.ContentType(), data).
		Attachment(f.FileName(rep.Period)).
		Write(w)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether the ledger store can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.ledger.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
