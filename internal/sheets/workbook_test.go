package sheets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/tracker/internal/model"
	"github.com/m3rciful/tracker/internal/sheets"
	"github.com/m3rciful/tracker/internal/sheets/sheetstest"
)

const sheetID = "sheet-1"

func newWorkbook(t *testing.T) (*sheets.Workbook, *sheetstest.Memory) {
	t.Helper()
	mem := sheetstest.NewMemory()
	mem.SeedTemplate(sheetID)
	return sheets.NewWorkbook(mem), mem
}

func TestMainOptions(t *testing.T) {
	wb, _ := newWorkbook(t)
	ctx := context.Background()

	got, err := wb.MainOptions(ctx, sheetID, sheets.TransportTypes)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bus", "MRT", "Taxi"}, got)

	got, err = wb.MainOptions(ctx, sheetID, sheets.OthersCategories)
	require.NoError(t, err)
	assert.Equal(t, []string{"Transport", "Food", "Shopping"}, got)

	got, err = wb.MainOptions(ctx, sheetID, sheets.Payments)
	require.NoError(t, err)
	assert.Equal(t, []string{"Card", "Cash"}, got)
}

func TestSubOptionsKeepsHeader(t *testing.T) {
	wb, _ := newWorkbook(t)
	ctx := context.Background()

	got, err := wb.SubOptions(ctx, sheetID, sheets.OthersCategories, "Food")
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Breakfast", "Lunch"}, got)

	got, err = wb.SubOptions(ctx, sheetID, sheets.OthersCategories, "Shopping")
	require.NoError(t, err)
	assert.Equal(t, []string{"Shopping"}, got)

	got, err = wb.SubOptions(ctx, sheetID, sheets.Payments, "Card")
	require.NoError(t, err)
	assert.Equal(t, []string{"Card", "Visa", "Master"}, got)

	got, err = wb.SubOptions(ctx, sheetID, sheets.Payments, "Crypto")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = wb.SubOptions(ctx, sheetID, sheets.TransportTypes, "Bus")
	assert.Error(t, err)
}

func TestTrackersRoundTrip(t *testing.T) {
	wb, _ := newWorkbook(t)
	ctx := context.Background()

	_, err := wb.Trackers(ctx, sheetID)
	require.ErrorIs(t, err, sheets.ErrNoTrackers)

	want := model.TrackerState{Day: 5, OthersRow: 10, TransportRow: 12, FirstRow: 8}
	require.NoError(t, wb.SetTrackers(ctx, sheetID, want))
	got, err := wb.Trackers(ctx, sheetID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPresetPreservesOtherType(t *testing.T) {
	wb, mem := newWorkbook(t)
	ctx := context.Background()

	_, ok, err := wb.Preset(ctx, sheetID, model.Transport)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, wb.SetPreset(ctx, sheetID, model.Others, model.Preset{Payment: "Cash", Category: "Food - Lunch"}))
	require.NoError(t, wb.SetPreset(ctx, sheetID, model.Transport, model.Preset{Payment: "Card - Visa", Category: "Bus"}))

	p, ok, err := wb.Preset(ctx, sheetID, model.Others)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.Preset{Payment: "Cash", Category: "Food - Lunch"}, p)

	p, ok, err = wb.Preset(ctx, sheetID, model.Transport)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bus", p.Category)
	assert.Equal(t, "Card - Visa", mem.Cell(sheetID, "Tracker!G3"))
}

func TestWriteEntryColumns(t *testing.T) {
	wb, mem := newWorkbook(t)
	ctx := context.Background()

	transport := model.Entry{Type: model.Transport, Price: "2.10", Remarks: "Home, Work", Category: "Bus", Payment: "Cash"}
	require.NoError(t, wb.WriteEntry(ctx, sheetID, time.June, 7, transport))
	others := model.Entry{Type: model.Others, Price: "19.99", Remarks: "=shirt", Category: "Shopping", Payment: "Card - Visa"}
	require.NoError(t, wb.WriteEntry(ctx, sheetID, time.June, 8, others))

	ups := mem.Updates()
	require.Len(t, ups, 2)
	assert.Equal(t, "June!C7:G7", ups[0].Range)
	assert.Equal(t, "June!H8:K8", ups[1].Range)
	assert.Equal(t, "Work", mem.Cell(sheetID, "June!E7"))
	assert.Equal(t, "Card - Visa", mem.Cell(sheetID, "June!K8"))
	assert.Equal(t, "'=shirt", ups[1].Rows[0][1].Input())

	bad := model.Entry{Type: model.Transport, Price: "1", Remarks: "nowhere"}
	assert.Error(t, wb.WriteEntry(ctx, sheetID, time.June, 9, bad))
}

func TestSumDayAndRowCount(t *testing.T) {
	wb, mem := newWorkbook(t)
	ctx := context.Background()

	n, err := wb.RowCount(ctx, sheetID, time.March)
	require.NoError(t, err)
	assert.Zero(t, n)

	mem.Set(sheetID, "March!A6", []string{"4"})
	mem.Set(sheetID, "March!H9", []string{"3.50"})
	n, err = wb.RowCount(ctx, sheetID, time.March)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	require.NoError(t, wb.SumDay(ctx, sheetID, time.March, 6, n))
	assert.Equal(t, "=SUM(C6:H9)", mem.Cell(sheetID, "March!B6"))
	ups := mem.Updates()
	require.Len(t, ups, 1)
	assert.True(t, ups[0].Rows[0][0].IsFormula())
}

type recordingObserver struct {
	ops  []string
	errs int
}

func (r *recordingObserver) ObserveSheetsRequest(op string, err error, _ time.Duration) {
	r.ops = append(r.ops, op)
	if err != nil {
		r.errs++
	}
}

func TestInstrumentReportsCalls(t *testing.T) {
	mem := sheetstest.NewMemory()
	mem.SeedTemplate(sheetID)
	obs := &recordingObserver{}
	wb := sheets.NewWorkbook(sheets.Instrument(mem, obs))
	ctx := context.Background()

	_, err := wb.SubOptions(ctx, sheetID, sheets.Payments, "Cash")
	require.NoError(t, err)
	mem.FailOn("update", errors.New("quota"))
	err = wb.WriteDate(ctx, sheetID, time.May, 3, 1)
	require.Error(t, err)

	assert.Equal(t, []string{"batch_get", "update"}, obs.ops)
	assert.Equal(t, 1, obs.errs)
}
