// Package sheets reads and writes the fixed range layout of a user's tracker spreadsheet.
package sheets

import (
	"strconv"
	"strings"
)

// Cell is a value written to the spreadsheet. Literals are stored as typed;
// formulas are evaluated by the spreadsheet backend.
type Cell struct {
	text    string
	formula bool
}

// Literal returns a plain value cell.
func Literal(s string) Cell {
	return Cell{text: s}
}

// Int returns a numeric literal cell.
func Int(n int) Cell {
	return Cell{text: strconv.Itoa(n)}
}

// Formula returns a formula cell. The leading "=" is added when missing.
func Formula(expr string) Cell {
	if !strings.HasPrefix(expr, "=") {
		expr = "=" + expr
	}
	return Cell{text: expr, formula: true}
}

// IsFormula reports whether the cell holds a formula expression.
func (c Cell) IsFormula() bool { return c.formula }

// String returns the literal text or the formula expression.
func (c Cell) String() string { return c.text }

// Input renders the cell for USER_ENTERED writes. A literal that would parse
// as a formula is quoted with a leading apostrophe.
func (c Cell) Input() string {
	if !c.formula && strings.HasPrefix(c.text, "=") {
		return "'" + c.text
	}
	return c.text
}

// Row is a convenience constructor for a single-row update.
func Row(cells ...Cell) [][]Cell {
	return [][]Cell{cells}
}
