package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/tracker/internal/model"
)

const (
	dropdownSheet = "Dropdown"
	trackerSheet  = "Tracker"

	trackersRange = trackerSheet + "!B3:E3"
	presetsRange  = trackerSheet + "!G3:J3"
)

// ErrNoTrackers is returned when the bookkeeping row has not been initialised.
var ErrNoTrackers = errors.New("sheets: tracker row is empty or malformed")

// List identifies one of the option lists on the Dropdown sheet.
type List int

const (
	// TransportTypes is the flat list of transport modes.
	TransportTypes List = iota
	// OthersCategories lists the Others categories; each has subcategories.
	OthersCategories
	// Payments lists payment methods; each has sub-methods.
	Payments
)

func (l List) String() string {
	switch l {
	case TransportTypes:
		return "transport_types"
	case OthersCategories:
		return "others_categories"
	case Payments:
		return "payments"
	}
	return "list(" + strconv.Itoa(int(l)) + ")"
}

// CategoryList returns the list a category of entry type t is chosen from.
func CategoryList(t model.EntryType) List {
	if t == model.Transport {
		return TransportTypes
	}
	return OthersCategories
}

// HasSubOptions reports whether options in l are refined by a second choice.
func (l List) HasSubOptions() bool {
	return l != TransportTypes
}

type listLayout struct {
	main     string
	subCols  string
	firstRow int
	lastRow  int
	vertical bool
}

var layouts = map[List]listLayout{
	TransportTypes:   {main: dropdownSheet + "!A3:A9", vertical: true},
	OthersCategories: {main: dropdownSheet + "!A2:J2", subCols: "BCDEFGHIJ", firstRow: 2, lastRow: 9},
	Payments:         {main: dropdownSheet + "!A12:J12", subCols: "ABCDEFGHIJ", firstRow: 12, lastRow: 19},
}

// Workbook maps tracker operations onto spreadsheet ranges.
type Workbook struct {
	values Values
}

// NewWorkbook returns a Workbook backed by v.
func NewWorkbook(v Values) *Workbook {
	return &Workbook{values: v}
}

// MonthSheet returns the tab name holding entries for month.
func MonthSheet(m time.Month) string {
	return m.String()
}

// MainOptions returns the top-level labels of list in sheet order.
func (w *Workbook) MainOptions(ctx context.Context, sheetID string, list List) ([]string, error) {
	lay, ok := layouts[list]
	if !ok {
		return nil, fmt.Errorf("sheets: unknown list %d", int(list))
	}
	rows, err := w.values.Get(ctx, sheetID, lay.main)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", list, err)
	}
	if lay.vertical {
		return nonEmpty(flatten(rows)), nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return nonEmpty(rows[0]), nil
}

// SubOptions returns the column under parent in list, header included at index 0.
// A parent without a matching column yields an empty slice.
func (w *Workbook) SubOptions(ctx context.Context, sheetID string, list List, parent string) ([]string, error) {
	lay, ok := layouts[list]
	if !ok || !list.HasSubOptions() {
		return nil, fmt.Errorf("sheets: list %s has no sub options", list)
	}
	ranges := make([]string, 0, len(lay.subCols))
	for _, col := range lay.subCols {
		ranges = append(ranges, fmt.Sprintf("%s!%c%d:%c%d", dropdownSheet, col, lay.firstRow, col, lay.lastRow))
	}
	columns, err := w.values.BatchGet(ctx, sheetID, ranges)
	if err != nil {
		return nil, fmt.Errorf("read %s sub options: %w", list, err)
	}
	for _, col := range columns {
		cells := flatten(col)
		if len(cells) > 0 && strings.TrimSpace(cells[0]) == parent {
			return nonEmpty(cells), nil
		}
	}
	return nil, nil
}

// Trackers reads the bookkeeping counters.
func (w *Workbook) Trackers(ctx context.Context, sheetID string) (model.TrackerState, error) {
	rows, err := w.values.Get(ctx, sheetID, trackersRange)
	if err != nil {
		return model.TrackerState{}, fmt.Errorf("read trackers: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) < 4 {
		return model.TrackerState{}, ErrNoTrackers
	}
	var n [4]int
	for i := range n {
		v, err := strconv.Atoi(strings.TrimSpace(rows[0][i]))
		if err != nil {
			return model.TrackerState{}, fmt.Errorf("%w: cell %d: %v", ErrNoTrackers, i, err)
		}
		n[i] = v
	}
	return model.TrackerState{Day: n[0], OthersRow: n[1], TransportRow: n[2], FirstRow: n[3]}, nil
}

// SetTrackers overwrites the bookkeeping counters.
func (w *Workbook) SetTrackers(ctx context.Context, sheetID string, s model.TrackerState) error {
	err := w.values.Update(ctx, sheetID, trackersRange, Row(Int(s.Day), Int(s.OthersRow), Int(s.TransportRow), Int(s.FirstRow)))
	if err != nil {
		return fmt.Errorf("write trackers: %w", err)
	}
	return nil
}

func presetOffset(t model.EntryType) int {
	if t == model.Transport {
		return 0
	}
	return 2
}

func (w *Workbook) readPresets(ctx context.Context, sheetID string) ([]string, error) {
	rows, err := w.values.Get(ctx, sheetID, presetsRange)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	slots := make([]string, 4)
	if len(rows) > 0 {
		copy(slots, rows[0])
	}
	return slots, nil
}

// Preset returns the quick-add defaults of t. ok is false unless both
// payment and category are set.
func (w *Workbook) Preset(ctx context.Context, sheetID string, t model.EntryType) (model.Preset, bool, error) {
	slots, err := w.readPresets(ctx, sheetID)
	if err != nil {
		return model.Preset{}, false, err
	}
	off := presetOffset(t)
	p := model.Preset{Payment: strings.TrimSpace(slots[off]), Category: strings.TrimSpace(slots[off+1])}
	return p, p.Payment != "" && p.Category != "", nil
}

// SetPreset stores the quick-add defaults of t, keeping the other type's slots.
func (w *Workbook) SetPreset(ctx context.Context, sheetID string, t model.EntryType, p model.Preset) error {
	slots, err := w.readPresets(ctx, sheetID)
	if err != nil {
		return err
	}
	off := presetOffset(t)
	slots[off], slots[off+1] = p.Payment, p.Category
	cells := make([]Cell, len(slots))
	for i, s := range slots {
		cells[i] = Literal(s)
	}
	if err := w.values.Update(ctx, sheetID, presetsRange, Row(cells...)); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}

// RowCount returns the number of rows in use on the month sheet.
func (w *Workbook) RowCount(ctx context.Context, sheetID string, month time.Month) (int, error) {
	rows, err := w.values.Get(ctx, sheetID, MonthSheet(month)+"!A:K")
	if err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", month, err)
	}
	return len(rows), nil
}

// SumDay writes the day total formula over rows first..last into column B of first.
func (w *Workbook) SumDay(ctx context.Context, sheetID string, month time.Month, first, last int) error {
	rng := fmt.Sprintf("%s!B%d", MonthSheet(month), first)
	if err := w.values.Update(ctx, sheetID, rng, Row(Formula(fmt.Sprintf("=SUM(C%d:H%d)", first, last)))); err != nil {
		return fmt.Errorf("write day sum: %w", err)
	}
	return nil
}

// WriteDate stamps the day of month into column A of row.
func (w *Workbook) WriteDate(ctx context.Context, sheetID string, month time.Month, row, day int) error {
	rng := fmt.Sprintf("%s!A%d", MonthSheet(month), row)
	if err := w.values.Update(ctx, sheetID, rng, Row(Int(day))); err != nil {
		return fmt.Errorf("write date: %w", err)
	}
	return nil
}

// WriteEntry writes e on row. Transport entries occupy C:G, Others entries H:K.
func (w *Workbook) WriteEntry(ctx context.Context, sheetID string, month time.Month, row int, e model.Entry) error {
	sheet := MonthSheet(month)
	var (
		rng   string
		cells []Cell
	)
	switch e.Type {
	case model.Transport:
		start, end, ok := e.Destinations()
		if !ok {
			return fmt.Errorf("transport remarks %q must be \"start, end\"", e.Remarks)
		}
		rng = fmt.Sprintf("%s!C%d:G%d", sheet, row, row)
		cells = []Cell{Literal(e.Price), Literal(start), Literal(end), Literal(e.Category), Literal(e.Payment)}
	case model.Others:
		rng = fmt.Sprintf("%s!H%d:K%d", sheet, row, row)
		cells = []Cell{Literal(e.Price), Literal(e.Remarks), Literal(e.Category), Literal(e.Payment)}
	default:
		return fmt.Errorf("unknown entry type %d", int(e.Type))
	}
	if err := w.values.Update(ctx, sheetID, rng, Row(cells...)); err != nil {
		return fmt.Errorf("write %s entry: %w", e.Type, err)
	}
	return nil
}

func flatten(rows [][]string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if len(r) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, r[0])
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
