package export

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"invoicenorm/internal/logger"
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SheetsWriter appends invoice summaries to a Google Sheet.
type SheetsWriter struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsWriter creates a writer for the spreadsheet at sheetURL, using
// GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS for a service account.
func NewSheetsWriter(ctx context.Context, sheetURL string) (*SheetsWriter, error) {
	const op = "NewSheetsWriter"

	log := logger.WithComponent("sheets")

	spreadsheetID, err := SpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &SheetsWriter{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// SpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
func SpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format: %q", url)
	}
	return matches[1], nil
}

// SheetValues converts entries to sheet rows: the summary columns followed by
// the processing time. Missing amounts become empty cells.
func SheetValues(entries []Entry, processedAt time.Time) [][]interface{} {
	stamp := processedAt.Format("2006-01-02 15:04:05")
	values := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		cells := e.SummaryRow().Strings()
		row := make([]interface{}, 0, len(cells)+1)
		for _, c := range cells {
			row = append(row, c)
		}
		values = append(values, append(row, stamp))
	}
	return values
}

// sheetHeader is SummaryHeader plus the processing time column.
func sheetHeader() []interface{} {
	header := make([]interface{}, 0, len(SummaryHeader)+1)
	for _, h := range SummaryHeader {
		header = append(header, h)
	}
	return append(header, "processed_at")
}

// lastColumn is the A1 letter of the last sheet column.
func lastColumn() string {
	name, _ := excelize.ColumnNumberToName(len(SummaryHeader) + 1)
	return name
}

// AppendSummary appends one row per entry to the worksheet, creating it with
// a header row first if needed.
func (s *SheetsWriter) AppendSummary(ctx context.Context, worksheet string, entries []Entry) error {
	const op = "AppendSummary"

	s.log.Info().
		Str("sheet", worksheet).
		Int("rows", len(entries)).
		Msg("Writing invoice summary to Google Sheet")

	if err := s.ensureSheetWithHeaders(ctx, worksheet); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}
	if len(entries) == 0 {
		return nil
	}

	valueRange := &sheets.ValueRange{Values: SheetValues(entries, time.Now())}
	_, err := s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		fmt.Sprintf("%s!A:%s", worksheet, lastColumn()),
		valueRange,
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(entries)).
		Msg("Successfully wrote invoice summary to Google Sheet")
	return nil
}

// ensureSheetWithHeaders creates the worksheet when missing and writes the
// header row when the first row is empty.
func (s *SheetsWriter) ensureSheetWithHeaders(ctx context.Context, worksheet string) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	var sheetExists bool
	var sheetID int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == worksheet {
			sheetExists = true
			sheetID = sheet.Properties.SheetId
			break
		}
	}

	if !sheetExists {
		s.log.Info().Str("sheet", worksheet).Msg("Creating new sheet")

		resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: worksheet}}},
			},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	headerRange := fmt.Sprintf("%s!A1:%s1", worksheet, lastColumn())
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	s.log.Info().Str("sheet", worksheet).Msg("Adding headers to sheet")
	_, err = s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		headerRange,
		&sheets.ValueRange{Values: [][]interface{}{sheetHeader()}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to add headers: %w", op, err)
	}

	if err := s.formatHeaders(ctx, sheetID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
	}
	return nil
}

// formatHeaders makes the header row bold and resizes the columns.
func (s *SheetsWriter) formatHeaders(ctx context.Context, sheetID int64) error {
	columns := int64(len(SummaryHeader) + 1)
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columns,
				},
			},
		},
	}

	_, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("formatHeaders: %w", err)
	}
	return nil
}
