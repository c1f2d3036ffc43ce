package sheets

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/tracker/internal/logger"
)

// Values is the request/response surface of the spreadsheet service.
// Ranges use A1 notation; returned rows omit trailing empty cells.
type Values interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	BatchGet(ctx context.Context, spreadsheetID string, ranges []string) ([][][]string, error)
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]Cell) error
}

// Observer receives the outcome of every spreadsheet call.
type Observer interface {
	ObserveSheetsRequest(op string, err error, took time.Duration)
}

type instrumented struct {
	next Values
	obs  Observer
}

// Instrument wraps v so each call is logged and reported to obs (which may be nil).
func Instrument(v Values, obs Observer) Values {
	return &instrumented{next: v, obs: obs}
}

func (i *instrumented) Get(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	start := time.Now()
	rows, err := i.next.Get(ctx, spreadsheetID, rng)
	i.observe(ctx, "get", start, err, slog.String("sheet_id", spreadsheetID), slog.String("range", rng), slog.Int("count", len(rows)))
	return rows, err
}

func (i *instrumented) BatchGet(ctx context.Context, spreadsheetID string, ranges []string) ([][][]string, error) {
	start := time.Now()
	out, err := i.next.BatchGet(ctx, spreadsheetID, ranges)
	preview, truncated := logger.SummarizeStrings(ranges, 3)
	i.observe(ctx, "batch_get", start, err, slog.String("sheet_id", spreadsheetID), slog.String("ranges", preview), slog.Bool("truncated", truncated))
	return out, err
}

func (i *instrumented) Update(ctx context.Context, spreadsheetID, rng string, rows [][]Cell) error {
	start := time.Now()
	err := i.next.Update(ctx, spreadsheetID, rng, rows)
	i.observe(ctx, "update", start, err, slog.String("sheet_id", spreadsheetID), slog.String("range", rng))
	return err
}

func (i *instrumented) observe(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	took := time.Since(start)
	if i.obs != nil {
		i.obs.ObserveSheetsRequest(op, err, took)
	}
	level := slog.LevelDebug
	attrs = append(attrs, slog.String("status", logger.Status(err)), slog.String("op", op), slog.Duration("duration", took))
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.LogEvent(ctx, logger.Sheets, level, "sheets.request", attrs...)
}
