package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/tracker/internal/ledger"
	"github.com/m3rciful/tracker/internal/model"
	"github.com/m3rciful/tracker/internal/sheets"
	"github.com/m3rciful/tracker/internal/sheets/sheetstest"
)

const sheetID = "sheet-1"

var sgt = time.FixedZone("SGT", 8*3600)

type countingRecorder struct {
	entries   map[string]int
	rollovers int
}

func (c *countingRecorder) EntryLogged(t string) {
	if c.entries == nil {
		c.entries = map[string]int{}
	}
	c.entries[t]++
}

func (c *countingRecorder) Rollover() { c.rollovers++ }

func setup(t *testing.T, now time.Time, st model.TrackerState) (*ledger.Ledger, *sheets.Workbook, *sheetstest.Memory, *countingRecorder) {
	t.Helper()
	mem := sheetstest.NewMemory()
	wb := sheets.NewWorkbook(mem)
	require.NoError(t, wb.SetTrackers(context.Background(), sheetID, st))
	rec := &countingRecorder{}
	l := ledger.New(wb, sgt, ledger.WithClock(func() time.Time { return now }), ledger.WithRecorder(rec))
	return l, wb, mem, rec
}

func trackers(t *testing.T, wb *sheets.Workbook) model.TrackerState {
	t.Helper()
	st, err := wb.Trackers(context.Background(), sheetID)
	require.NoError(t, err)
	return st
}

func TestLogSameDayIncrementsOneCounter(t *testing.T) {
	now := time.Date(2026, time.June, 6, 12, 0, 0, 0, sgt)
	l, wb, mem, rec := setup(t, now, model.TrackerState{Day: 6, OthersRow: 15, TransportRow: 14, FirstRow: 15})

	e := model.Entry{Type: model.Transport, Price: "2.10", Remarks: "Home, Work", Category: "Bus", Payment: "Cash"}
	notices, err := l.Log(context.Background(), sheetID, e)
	require.NoError(t, err)
	assert.Empty(t, notices)

	assert.Equal(t, model.TrackerState{Day: 6, OthersRow: 15, TransportRow: 15, FirstRow: 15}, trackers(t, wb))
	assert.Equal(t, "2.10", mem.Cell(sheetID, "June!C15"))
	assert.Equal(t, "Home", mem.Cell(sheetID, "June!D15"))
	assert.Equal(t, "Cash", mem.Cell(sheetID, "June!G15"))
	assert.Equal(t, 1, rec.entries["Transport"])
	assert.Zero(t, rec.rollovers)
}

func TestLogStartsNewDayBlock(t *testing.T) {
	now := time.Date(2026, time.June, 6, 9, 0, 0, 0, sgt)
	l, wb, mem, rec := setup(t, now, model.TrackerState{Day: 5, OthersRow: 10, TransportRow: 10, FirstRow: 10})
	mem.Set(sheetID, "June!A10", []string{"5"})
	mem.Set(sheetID, "June!H14", []string{"4.00", "snack"})

	e := model.Entry{Type: model.Others, Price: "12.50", Remarks: "lunch", Category: "Food", Payment: "Cash"}
	notices, err := l.Log(context.Background(), sheetID, e)
	require.NoError(t, err)
	assert.Equal(t, []string{"New entry for 6 June\nCreating sum for day 5"}, notices)

	assert.Equal(t, "=SUM(C10:H14)", mem.Cell(sheetID, "June!B10"))
	assert.Equal(t, "6", mem.Cell(sheetID, "June!A15"))
	assert.Equal(t, model.TrackerState{Day: 6, OthersRow: 15, TransportRow: 14, FirstRow: 15}, trackers(t, wb))
	assert.Equal(t, "12.50", mem.Cell(sheetID, "June!H15"))
	assert.Equal(t, "lunch", mem.Cell(sheetID, "June!I15"))
	assert.Equal(t, 1, rec.rollovers)

	// The block is persisted before the counter moves.
	var trackerWrites []string
	for _, u := range mem.Updates() {
		if u.Range == "Tracker!B3:E3" {
			trackerWrites = append(trackerWrites, u.Rows[0][1].String()+","+u.Rows[0][3].String())
		}
	}
	assert.Equal(t, []string{"10,10", "14,15", "15,15"}, trackerWrites)
}

func TestLogFirstOfMonthRestartsAtRowFive(t *testing.T) {
	now := time.Date(2026, time.July, 1, 8, 0, 0, 0, sgt)
	l, wb, mem, _ := setup(t, now, model.TrackerState{Day: 30, OthersRow: 40, TransportRow: 41, FirstRow: 38})
	mem.Set(sheetID, "June!C41", []string{"3.00"})

	e := model.Entry{Type: model.Transport, Price: "3", Remarks: "A, B", Category: "Taxi", Payment: "Card"}
	notices, err := l.Log(context.Background(), sheetID, e)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "New entry for 1 July\nCreating sum for day 30", notices[0])

	assert.Equal(t, "=SUM(C38:H41)", mem.Cell(sheetID, "June!B38"))
	assert.Equal(t, "1", mem.Cell(sheetID, "July!A6"))
	assert.Equal(t, "3", mem.Cell(sheetID, "July!C6"))
	assert.Equal(t, model.TrackerState{Day: 1, OthersRow: 5, TransportRow: 6, FirstRow: 6}, trackers(t, wb))
}

func TestLogFirstOfMonthAlwaysRollsOver(t *testing.T) {
	now := time.Date(2026, time.July, 1, 20, 0, 0, 0, sgt)
	l, _, mem, rec := setup(t, now, model.TrackerState{Day: 1, OthersRow: 7, TransportRow: 5, FirstRow: 6})
	mem.Set(sheetID, "July!H7", []string{"1.00"})

	_, err := l.Log(context.Background(), sheetID, model.Entry{Type: model.Others, Price: "1", Remarks: "x", Category: "Food", Payment: "Cash"})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.rollovers)
	assert.Equal(t, "=SUM(C6:H7)", mem.Cell(sheetID, "July!B6"))
}

func TestLogUsesConfiguredTimezone(t *testing.T) {
	// 20:00 UTC on June 5 is already June 6 in Singapore.
	now := time.Date(2026, time.June, 5, 20, 0, 0, 0, time.UTC)
	l, wb, _, _ := setup(t, now, model.TrackerState{Day: 5, OthersRow: 4, TransportRow: 4, FirstRow: 5})

	_, err := l.Log(context.Background(), sheetID, model.Entry{Type: model.Others, Price: "1", Remarks: "x", Category: "Food", Payment: "Cash"})
	require.NoError(t, err)
	assert.Equal(t, 6, trackers(t, wb).Day)
}

func TestInitialize(t *testing.T) {
	now := time.Date(2026, time.June, 17, 10, 0, 0, 0, sgt)
	l, wb, _, _ := setup(t, now, model.TrackerState{})

	require.NoError(t, l.Initialize(context.Background(), sheetID))
	assert.Equal(t, model.TrackerState{Day: 17, OthersRow: 4, TransportRow: 4, FirstRow: 5}, trackers(t, wb))
}

func TestLogPropagatesSheetErrors(t *testing.T) {
	now := time.Date(2026, time.June, 6, 9, 0, 0, 0, sgt)
	l, _, mem, rec := setup(t, now, model.TrackerState{Day: 6, OthersRow: 4, TransportRow: 4, FirstRow: 5})
	boom := errors.New("permission denied")
	mem.FailOn("update", boom)

	_, err := l.Log(context.Background(), sheetID, model.Entry{Type: model.Others, Price: "1", Remarks: "x"})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, rec.entries)
}
