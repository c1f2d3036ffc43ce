// Package ledger appends expense entries to the month sheet and keeps the
// per-day row blocks of the Tracker sheet in step.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/tracker/internal/logger"
	"github.com/m3rciful/tracker/internal/model"
)

const (
	// initialRow is the counter value of a freshly linked sheet.
	initialRow = 4
	// monthStartRow is the counter value of the first block of a month.
	monthStartRow = 5
)

// Book is the subset of the spreadsheet workbook the ledger writes to.
type Book interface {
	Trackers(ctx context.Context, sheetID string) (model.TrackerState, error)
	SetTrackers(ctx context.Context, sheetID string, s model.TrackerState) error
	RowCount(ctx context.Context, sheetID string, month time.Month) (int, error)
	SumDay(ctx context.Context, sheetID string, month time.Month, first, last int) error
	WriteDate(ctx context.Context, sheetID string, month time.Month, row, day int) error
	WriteEntry(ctx context.Context, sheetID string, month time.Month, row int, e model.Entry) error
}

// Recorder receives ledger outcomes.
type Recorder interface {
	EntryLogged(entryType string)
	Rollover()
}

// Ledger writes entries for one timezone.
type Ledger struct {
	book Book
	loc  *time.Location
	now  func() time.Time
	rec  Recorder
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRecorder reports logged entries and rollovers to r.
func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.rec = r }
}

// New returns a Ledger that dates entries in loc (UTC when nil).
func New(book Book, loc *time.Location, opts ...Option) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	l := &Ledger{book: book, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) today() time.Time {
	return l.now().In(l.loc)
}

// Initialize resets the tracker row of a newly linked sheet to today.
func (l *Ledger) Initialize(ctx context.Context, sheetID string) error {
	st := model.NewBlock(l.today().Day(), initialRow)
	if err := l.book.SetTrackers(ctx, sheetID, st); err != nil {
		return fmt.Errorf("initialize trackers: %w", err)
	}
	logger.LogEvent(ctx, logger.Ledger, slog.LevelInfo, "ledger.initialize",
		slog.String("sheet_id", sheetID),
		slog.Int("day", st.Day),
		slog.Int("first_row", st.FirstRow),
	)
	return nil
}

// Log writes e into the sheet. When the day changed since the last entry the
// previous block is summed and a new block started first; the returned
// notices describe that rollover.
func (l *Ledger) Log(ctx context.Context, sheetID string, e model.Entry) ([]string, error) {
	start := time.Now()
	st, err := l.book.Trackers(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	now := l.today()
	day, month := now.Day(), now.Month()

	var notices []string
	if st.Day < day || day == 1 {
		notice, next, err := l.rollover(ctx, sheetID, st, now)
		if err != nil {
			return nil, err
		}
		st = next
		notices = append(notices, notice)
	}

	st = st.Advance(e.Type)
	if err := l.book.SetTrackers(ctx, sheetID, st); err != nil {
		return notices, err
	}
	row := st.Row(e.Type)
	if err := l.book.WriteEntry(ctx, sheetID, month, row, e); err != nil {
		return notices, err
	}
	if l.rec != nil {
		l.rec.EntryLogged(e.Type.String())
	}
	logger.LogEvent(ctx, logger.Ledger, slog.LevelInfo, "ledger.log",
		slog.String("status", "ok"),
		slog.String("sheet_id", sheetID),
		slog.String("entry_type", e.Type.String()),
		slog.String("month", month.String()),
		slog.Int("row", row),
		slog.Duration("duration", logger.Took(start)),
	)
	return notices, nil
}

// rollover closes the block described by prev and opens one for now.
// The first of the month always starts over at monthStartRow; the closing sum
// then belongs to the previous month's sheet unless that block was itself
// opened on the first.
func (l *Ledger) rollover(ctx context.Context, sheetID string, prev model.TrackerState, now time.Time) (string, model.TrackerState, error) {
	day, month := now.Day(), now.Month()
	sumMonth := month
	if day == 1 && prev.Day != 1 {
		sumMonth = now.AddDate(0, 0, -1).Month()
	}

	last, err := l.book.RowCount(ctx, sheetID, sumMonth)
	if err != nil {
		return "", prev, err
	}
	if err := l.book.SumDay(ctx, sheetID, sumMonth, prev.FirstRow, last); err != nil {
		return "", prev, err
	}

	next := model.NewBlock(day, last)
	if day == 1 {
		next = model.NewBlock(day, monthStartRow)
	}
	if err := l.book.SetTrackers(ctx, sheetID, next); err != nil {
		return "", prev, err
	}
	if err := l.book.WriteDate(ctx, sheetID, month, next.FirstRow, day); err != nil {
		return "", prev, err
	}
	if l.rec != nil {
		l.rec.Rollover()
	}
	logger.LogEvent(ctx, logger.Ledger, slog.LevelInfo, "ledger.rollover",
		slog.String("sheet_id", sheetID),
		slog.Int("day", day),
		slog.Int("prev_day", prev.Day),
		slog.String("month", month.String()),
		slog.String("sum_month", sumMonth.String()),
		slog.Int("first_row", next.FirstRow),
	)
	notice := fmt.Sprintf("New entry for %d %s\nCreating sum for day %d", day, month, prev.Day)
	return notice, next, nil
}
