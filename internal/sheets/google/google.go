package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"saishi/internal/core"
	"saishi/internal/export"
	ports "saishi/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultSheetName = "赛事记录"
	// ID column plus the export columns.
	lastColumn = "T"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors records into one sheet: a header row, then one row per
// record keyed by the ID in column A.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string

	mu                 sync.Mutex
	cachedRows         map[string]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

var _ ports.RecordMirror = (*Client)(nil)

// New creates a client authenticated with service account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither credential
// field is set.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string) *Client {
	if strings.TrimSpace(sheet) == "" {
		sheet = defaultSheetName
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheet:              sheet,
		cacheValidDuration: time.Minute,
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) Upsert(ctx context.Context, t core.Tournament) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rows, count, err := c.rowIndex(ctx)
	if err != nil {
		return err
	}

	values := [][]any{recordRow(t)}
	row, found := rows[t.ID]
	switch {
	case found:
	case count == 0:
		values = [][]any{headerRow(), recordRow(t)}
		row = 1
	default:
		row = count + 1
	}

	rng := fmt.Sprintf("%s!A%d", c.sheet, row)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		c.invalidateRowCache()
		return fmt.Errorf("update %s: %w", rng, err)
	}

	if !found {
		c.mu.Lock()
		if c.cachedRows != nil {
			last := row + len(values) - 1
			c.cachedRows[t.ID] = last
			c.cachedRowCount = last
		}
		c.mu.Unlock()
	}
	slog.DebugContext(ctx, "Mirrored tournament", "id", t.ID, "row", row, "appended", !found)
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rows, _, err := c.rowIndex(ctx)
	if err != nil {
		return err
	}
	row, ok := rows[id]
	if !ok {
		return nil
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", c.sheet, row, lastColumn, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		c.invalidateRowCache()
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.mu.Lock()
	delete(c.cachedRows, id)
	c.mu.Unlock()
	return nil
}

// ReplaceAll clears the sheet and writes the header plus every record.
// Rows left empty by Delete are compacted away.
func (c *Client) ReplaceAll(ctx context.Context, records []core.Tournament) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.invalidateRowCache()

	all := fmt.Sprintf("%s!A:%s", c.sheet, lastColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	values := make([][]any, 0, len(records)+1)
	values = append(values, headerRow())
	for _, t := range records {
		values = append(values, recordRow(t))
	}
	rng := fmt.Sprintf("%s!A1", c.sheet)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Rewrote tournament mirror", "sheet", c.sheet, "records", len(records))
	return nil
}

// rowIndex maps record IDs to 1-based sheet rows and reports the number of
// rows in use. Results are cached briefly to spare the ID column read on
// bursts of upserts.
func (c *Client) rowIndex(ctx context.Context) (map[string]int, int, error) {
	c.mu.Lock()
	if c.cachedRows != nil && time.Now().Before(c.cacheExpiresAt) {
		rows, count := c.cachedRows, c.cachedRowCount
		c.mu.Unlock()
		return rows, count, nil
	}
	c.mu.Unlock()

	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := indexIDs(resp.Values)

	c.mu.Lock()
	c.cachedRows = rows
	c.cachedRowCount = len(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return rows, len(resp.Values), nil
}

func (c *Client) invalidateRowCache() {
	c.mu.Lock()
	c.cachedRows = nil
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func indexIDs(values [][]any) map[string]int {
	out := make(map[string]int, len(values))
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[0]))
		if id == "" {
			continue
		}
		out[id] = i + 1
	}
	return out
}

func headerRow() []any {
	out := make([]any, 0, len(export.Headers)+1)
	out = append(out, ports.IDHeader)
	for _, h := range export.Headers {
		out = append(out, h)
	}
	return out
}

func recordRow(t core.Tournament) []any {
	cells := export.Cells(t)
	out := make([]any, 0, len(cells)+1)
	out = append(out, t.ID)
	return append(out, cells...)
}
