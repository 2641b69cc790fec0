package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultReadTimeout = 30 * time.Second

// Columns fetched for every row.
const (
	firstColumn = "A"
	lastColumn  = "F"
)

// Options identifies the worksheet to read and how to authenticate.
type Options struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string

	// Batch fetches all rows with one BatchGet call instead of one call per
	// row. A per-row read costs last-first+2 requests (one access check plus
	// one per row), which a frequent caller such as a metrics scraper can push
	// past the Sheets read quota.
	Batch bool

	// Timeout bounds one ReadRows call. Defaults to 30s.
	Timeout time.Duration
}

// Client is a Reader backed by the Google Sheets v4 API.
type Client struct {
	svc  *sheets.Service
	opts Options
}

// Dial builds a read-only Sheets client from the service account credentials
// in opts.CredentialsFile.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(opts.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheet: build sheets service: %w", err)
	}
	return New(svc, opts), nil
}

// New wraps an existing Sheets service. Tests use it to point the client at a
// fake endpoint.
func New(svc *sheets.Service, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultReadTimeout
	}
	return &Client{svc: svc, opts: opts}
}

// ReadRows implements Reader.
func (c *Client) ReadRows(ctx context.Context, first, last int) ([]Row, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("sheet: invalid row range %d..%d", first, last)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if err := c.checkAccess(ctx); err != nil {
		return nil, err
	}
	if c.opts.Batch {
		return c.readBatch(ctx, first, last)
	}

	rows := make([]Row, 0, last-first+1)
	for i := first; i <= last; i++ {
		row := Row{Index: i}
		vr, err := c.svc.Spreadsheets.Values.Get(c.opts.SpreadsheetID, c.rowRange(i)).Context(ctx).Do()
		if err != nil {
			row.Err = fmt.Errorf("sheet: read row %d: %w", i, err)
		} else {
			row.Cells = firstRow(vr)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// checkAccess confirms the credentials can open the spreadsheet and that the
// configured worksheet exists.
func (c *Client) checkAccess(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.opts.SpreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			slog.Warn("sheet: spreadsheet refused",
				"spreadsheet", c.opts.SpreadsheetID, "status", gerr.Code, "reason", gerr.Message)
		}
		return fmt.Errorf("sheet: open spreadsheet %q: %w", c.opts.SpreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.opts.Worksheet {
			return nil
		}
	}
	return fmt.Errorf("sheet: worksheet %q not found in spreadsheet %q", c.opts.Worksheet, c.opts.SpreadsheetID)
}

func (c *Client) readBatch(ctx context.Context, first, last int) ([]Row, error) {
	ranges := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		ranges = append(ranges, c.rowRange(i))
	}

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.opts.SpreadsheetID).
		Ranges(ranges...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheet: batch read rows %d..%d: %w", first, last, err)
	}

	rows := make([]Row, 0, len(ranges))
	for k := range ranges {
		row := Row{Index: first + k}
		if k < len(resp.ValueRanges) {
			row.Cells = firstRow(resp.ValueRanges[k])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowRange returns the A1 range covering columns A..F of row i.
func (c *Client) rowRange(i int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", quoteSheet(c.opts.Worksheet), firstColumn, i, lastColumn, i)
}

// quoteSheet quotes a worksheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// firstRow flattens the first row of vr into strings.
func firstRow(vr *sheets.ValueRange) []string {
	if vr == nil || len(vr.Values) == 0 {
		return nil
	}
	cells := make([]string, len(vr.Values[0]))
	for i, v := range vr.Values[0] {
		switch x := v.(type) {
		case nil:
		case string:
			cells[i] = x
		default:
			cells[i] = fmt.Sprint(x)
		}
	}
	return cells
}
