// Package sheetstest provides an in-memory sheets.Values for tests.
package sheetstest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/tracker/internal/sheets"
)

type cellKey struct {
	sheet    string
	row, col int
}

// Update is one recorded write.
type Update struct {
	SpreadsheetID string
	Range         string
	Rows          [][]sheets.Cell
}

// Memory stores cells per spreadsheet and records every write.
// Ranges follow A1 notation: "Sheet!B3", "Sheet!B3:E3", "Sheet!A:K".
type Memory struct {
	mu      sync.Mutex
	cells   map[string]map[cellKey]string
	updates []Update
	fail    map[string]error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{cells: map[string]map[cellKey]string{}, fail: map[string]error{}}
}

// FailOn makes every call of op ("get", "batch_get", "update") return err.
// A nil err clears the failure.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// Set writes rows starting at the top-left corner of rng without recording an update.
func (m *Memory) Set(spreadsheetID, rng string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := parseRange(rng)
	if err != nil {
		panic(err)
	}
	for i, row := range rows {
		for j, v := range row {
			m.put(spreadsheetID, cellKey{r.sheet, r.row1 + i, r.col1 + j}, v)
		}
	}
}

// Cell returns the stored text of a single cell such as "June!B6".
func (m *Memory) Cell(spreadsheetID, ref string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := parseRange(ref)
	if err != nil {
		panic(err)
	}
	return m.cells[spreadsheetID][cellKey{r.sheet, r.row1, r.col1}]
}

// Updates returns the recorded writes in call order.
func (m *Memory) Updates() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Update(nil), m.updates...)
}

// Get implements sheets.Values.
func (m *Memory) Get(_ context.Context, spreadsheetID, rng string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["get"]; err != nil {
		return nil, err
	}
	return m.read(spreadsheetID, rng)
}

// BatchGet implements sheets.Values.
func (m *Memory) BatchGet(_ context.Context, spreadsheetID string, ranges []string) ([][][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["batch_get"]; err != nil {
		return nil, err
	}
	out := make([][][]string, 0, len(ranges))
	for _, rng := range ranges {
		rows, err := m.read(spreadsheetID, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, rows)
	}
	return out, nil
}

// Update implements sheets.Values. Formulas are stored as their expression.
func (m *Memory) Update(_ context.Context, spreadsheetID, rng string, rows [][]sheets.Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["update"]; err != nil {
		return err
	}
	r, err := parseRange(rng)
	if err != nil {
		return err
	}
	for i, row := range rows {
		for j, c := range row {
			m.put(spreadsheetID, cellKey{r.sheet, r.row1 + i, r.col1 + j}, c.String())
		}
	}
	m.updates = append(m.updates, Update{SpreadsheetID: spreadsheetID, Range: rng, Rows: rows})
	return nil
}

func (m *Memory) put(id string, k cellKey, v string) {
	if m.cells[id] == nil {
		m.cells[id] = map[cellKey]string{}
	}
	if v == "" {
		delete(m.cells[id], k)
		return
	}
	m.cells[id][k] = v
}

func (m *Memory) read(id, rng string) ([][]string, error) {
	r, err := parseRange(rng)
	if err != nil {
		return nil, err
	}
	grid := m.cells[id]
	lastRow := r.row2
	if lastRow == 0 {
		for k := range grid {
			if k.sheet == r.sheet && k.col >= r.col1 && k.col <= r.col2 && k.row > lastRow {
				lastRow = k.row
			}
		}
	}
	var rows [][]string
	for row := r.row1; row <= lastRow; row++ {
		var cells []string
		for col := r.col1; col <= r.col2; col++ {
			cells = append(cells, grid[cellKey{r.sheet, row, col}])
		}
		rows = append(rows, trimTrailing(cells))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	if n == 0 {
		return []string{}
	}
	return cells[:n]
}

type a1 struct {
	sheet      string
	col1, col2 int
	row1, row2 int
}

func parseRange(rng string) (a1, error) {
	sheet, ref, ok := strings.Cut(rng, "!")
	if !ok || sheet == "" {
		return a1{}, fmt.Errorf("sheetstest: range %q has no sheet", rng)
	}
	from, to, hasTo := strings.Cut(ref, ":")
	if !hasTo {
		to = from
	}
	c1, r1, err := parseRef(from)
	if err != nil {
		return a1{}, err
	}
	c2, r2, err := parseRef(to)
	if err != nil {
		return a1{}, err
	}
	if r1 == 0 {
		r1 = 1
	}
	return a1{sheet: sheet, col1: c1, col2: c2, row1: r1, row2: r2}, nil
}

// parseRef parses "B12" into column 2, row 12. A bare column yields row 0.
func parseRef(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if col == 0 {
		return 0, 0, fmt.Errorf("sheetstest: bad reference %q", ref)
	}
	if i < len(ref) {
		row, err = strconv.Atoi(ref[i:])
		if err != nil || row <= 0 {
			return 0, 0, fmt.Errorf("sheetstest: bad reference %q", ref)
		}
	}
	return col, row, nil
}
