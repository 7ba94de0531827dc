package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"blocapp/internal/core"
	ports "blocapp/internal/sheets"
)

// Client writes maintenance tables into a Google spreadsheet, one tab per
// published month.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	// tabs remembers which month tabs already exist, saving a spreadsheet
	// metadata fetch per write.
	tabs *tabCache
}

// Ensure interface conformance
var _ ports.TableWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tabs:          newTabCache(64, 10*time.Minute),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteTable replaces the month's tab with the given billing table. Rewriting
// the whole tab keeps the operation idempotent, so redeliveries and payment
// toggles just overwrite.
func (c *Client) WriteTable(ctx context.Context, associationID, month string, rows []core.BillingRow) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	tab := month
	if err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:Z", tab)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear tab %s: %w", tab, err)
	}

	values := [][]any{{
		"Ap.", "Proprietar", "Pers.", "Bloc", "Scara",
		"Întreținere curentă", "Restanțe", "Total întreținere",
		"Penalități", "Total datorat", "Achitat",
	}}
	var total core.Money
	for _, row := range rows {
		paid := ""
		if row.Paid {
			paid = "DA"
		}
		values = append(values, []any{
			row.Apartment, row.Owner, row.Persons, row.BlockName, row.StairName,
			row.CurrentMaintenance.Lei(), row.Restante.Lei(), row.TotalMaintenance.Lei(),
			row.Penalitati.Lei(), row.TotalDatorat.Lei(), paid,
		})
		total = total.Add(row.TotalDatorat)
	}
	values = append(values, []any{"TOTAL", "", "", "", "", "", "", "", "", total.Lei(), ""})

	writeRange := fmt.Sprintf("%s!A1", tab)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write tab %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Wrote maintenance table to sheet",
		"association_id", associationID,
		"month", month,
		"rows", len(rows))
	return nil
}

// ensureTab creates the month's tab when the spreadsheet does not have one
// yet.
func (c *Client) ensureTab(ctx context.Context, title string) error {
	if c.tabs.Known(title) {
		return nil
	}

	spreadsheet, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			c.tabs.Remember(title)
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tab %s: %w", title, err)
	}
	c.tabs.Remember(title)
	return nil
}
