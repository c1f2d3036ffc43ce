package model

import (
	"fmt"
	"strings"
)

// EntryType is the top-level kind of a logged expense.
type EntryType int

const (
	// Transport entries carry a start and end destination.
	Transport EntryType = iota
	// Others entries carry a free-text remark.
	Others
)

// EntryTypes lists every entry type in menu order.
var EntryTypes = []EntryType{Transport, Others}

// String returns the label shown to users and stored in logs.
func (t EntryType) String() string {
	switch t {
	case Transport:
		return "Transport"
	case Others:
		return "Others"
	}
	return fmt.Sprintf("EntryType(%d)", int(t))
}

// ParseEntryType resolves a label produced by String, ignoring case.
func ParseEntryType(s string) (EntryType, error) {
	for _, t := range EntryTypes {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown entry type %q", s)
}

// Entry is a completed expense ready to be written into the month sheet.
type Entry struct {
	Type     EntryType
	Price    string
	Remarks  string
	Category string
	Payment  string
}

// Destinations splits Transport remarks into start and end. ok is false
// unless the remarks contain exactly one comma.
func (e Entry) Destinations() (start, end string, ok bool) {
	if strings.Count(e.Remarks, ",") != 1 {
		return "", "", false
	}
	start, end, _ = strings.Cut(e.Remarks, ",")
	return strings.TrimSpace(start), strings.TrimSpace(end), true
}

// Composite joins a parent option and its child as "<parent> - <child>".
func Composite(parent, child string) string {
	return parent + " - " + child
}

// TrackerState mirrors the bookkeeping counters kept in the spreadsheet.
type TrackerState struct {
	Day          int
	OthersRow    int
	TransportRow int
	FirstRow     int
}

// Row returns the counter of the given entry type.
func (s TrackerState) Row(t EntryType) int {
	switch t {
	case Transport:
		return s.TransportRow
	case Others:
		return s.OthersRow
	}
	panic(fmt.Sprintf("model: unhandled entry type %d", int(t)))
}

// Advance returns a copy with the counter of t incremented by one.
func (s TrackerState) Advance(t EntryType) TrackerState {
	switch t {
	case Transport:
		s.TransportRow++
	case Others:
		s.OthersRow++
	default:
		panic(fmt.Sprintf("model: unhandled entry type %d", int(t)))
	}
	return s
}

// NewBlock returns the state for a day block whose counters start at row.
// The first entry of either type lands on row+1, which is also the block's first row.
func NewBlock(day, row int) TrackerState {
	return TrackerState{Day: day, OthersRow: row, TransportRow: row, FirstRow: row + 1}
}

// Preset is the saved quick-add default of one entry type.
type Preset struct {
	Payment  string
	Category string
}

// UserRecord links a chat user to their spreadsheet.
type UserRecord struct {
	TelegramID string `db:"telegram_id"`
	SheetID    string `db:"sheet_id"`
}
