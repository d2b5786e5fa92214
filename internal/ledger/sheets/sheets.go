// Package sheets stores the ledger in a Google Sheets tab with the
// columns Date, Type, Description, Amount.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"controle/internal/core"
	"controle/internal/ledger"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ledger.Store = (*Client)(nil)

// Config selects the spreadsheet and tab.
type Config struct {
	SpreadsheetID string
	SheetName     string

	// Inline service account JSON or a path to it. When both are empty
	// GOOGLE_APPLICATION_CREDENTIALS is used.
	CredentialsJSON string
	CredentialsFile string

	// A user token saved by controle-sheets-auth takes precedence over the
	// service account.
	OAuthClientFile string
	OAuthTokenFile  string
}

// New creates a Sheets-backed store using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Lancamentos"
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService initializes a Sheets Service using a saved user token or
// Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	if strings.TrimSpace(cfg.OAuthTokenFile) != "" {
		ts, err := userTokenSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Using saved OAuth user token", "path", cfg.OAuthTokenFile)
		return gsheet.NewService(ctx, goption.WithTokenSource(ts))
	}

	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("%s!A:D", c.sheetName)
}

// Load reads every row of the tab. An empty tab gets a header row.
func (c *Client) Load(ctx context.Context) (core.Ledger, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.dataRange(), err)
	}
	if len(resp.Values) == 0 {
		if err := c.writeHeader(ctx); err != nil {
			return nil, err
		}
		return core.Ledger{}, nil
	}
	return parseValues(resp.Values), nil
}

func (c *Client) writeHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:D1", c.sheetName)
	header := make([]any, len(ledger.Header))
	for i, h := range ledger.Header {
		header[i] = h
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Initialized empty ledger sheet", "sheet", c.sheetName)
	return nil
}

// Append adds one row after the last used row of the tab.
func (c *Client) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	vr := &gsheet.ValueRange{Values: [][]any{entryValues(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.dataRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	ref := c.sheetName
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Entry appended to Google Sheets",
		"range", ref,
		"date", e.Date.ISO(),
		"type", e.Kind.String(),
		"amount_cents", e.Amount.Cents)
	return ref, nil
}

func entryValues(e core.Entry) []any {
	return []any{e.Date.ISO(), e.Kind.String(), e.Description, e.Amount.Units()}
}

// parseValues converts a values matrix (as returned by the Sheets API)
// into a ledger. The first row is used as header when it looks like one.
func parseValues(values [][]any) core.Ledger {
	out := core.Ledger{}
	cols := ledger.DefaultColumns
	for i, raw := range values {
		row := toStrings(raw)
		if i == 0 {
			if c, ok := ledger.ColumnsFromHeader(row); ok {
				cols = c
				continue
			}
		}
		if e, ok := ledger.ParseRow(row, cols); ok {
			out = append(out, e)
		}
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}
