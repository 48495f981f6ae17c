package terminal

import "strings"

// ---------------------------------------------------------------------------
// Row – a fixed-width line of cells
// ---------------------------------------------------------------------------

// Row is one line of the grid: a fixed-length run of cells plus a
// wrapped flag. wrapped means the next row is the logical continuation
// of this one because the writer hit the right margin with auto-wrap
// enabled.
type Row struct {
	cells   []Cell
	wrapped bool
}

// newRow allocates a blank row of the given width.
func newRow(cols int) Row {
	return Row{cells: make([]Cell, cols)}
}

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.cells) }

// Cell returns the cell at col. Out of bounds returns an empty cell.
func (r *Row) Cell(col int) Cell {
	if col < 0 || col >= len(r.cells) {
		return EmptyCell()
	}
	return r.cells[col]
}

// SetCell stores a cell at col. Out of bounds is ignored.
func (r *Row) SetCell(col int, c Cell) {
	if col < 0 || col >= len(r.cells) {
		return
	}
	r.cells[col] = c
}

// Wrapped reports whether this row soft-wraps into the next.
func (r *Row) Wrapped() bool { return r.wrapped }

// SetWrapped sets the soft-wrap flag.
func (r *Row) SetWrapped(w bool) { r.wrapped = w }

// Erase blanks the half-open column range [from, to), keeping the
// background colour of attrs. A wide glyph straddling either boundary
// loses its other half too, so no orphan continuation survives.
func (r *Row) Erase(from, to int, attrs Attrs) {
	if from < 0 {
		from = 0
	}
	if to > len(r.cells) {
		to = len(r.cells)
	}
	if from >= to {
		return
	}
	// Widen the range over straddled wide pairs.
	if r.cells[from].IsWideContinuation() && from > 0 {
		from--
	}
	if to < len(r.cells) && r.cells[to].IsWideContinuation() {
		to++
	}
	blank := ErasedCell(attrs)
	for i := from; i < to; i++ {
		r.cells[i] = blank
	}
}

// Clear blanks the whole row and drops the wrap flag.
func (r *Row) Clear() {
	for i := range r.cells {
		r.cells[i] = EmptyCell()
	}
	r.wrapped = false
}

// InsertAt shifts cells at and after col one position right, dropping
// the rightmost cell, and stores c at col.
func (r *Row) InsertAt(col int, c Cell) {
	if col < 0 || col >= len(r.cells) {
		return
	}
	copy(r.cells[col+1:], r.cells[col:len(r.cells)-1])
	r.cells[col] = c
	// A continuation shifted away from its left half is meaningless.
	if r.cells[len(r.cells)-1].IsWideContinuation() {
		r.cells[len(r.cells)-1] = EmptyCell()
	}
	if col+1 < len(r.cells) && r.cells[col+1].IsWideContinuation() {
		r.cells[col+1] = EmptyCell()
	}
}

// DeleteAt removes the cell at col, shifting the remainder left and
// filling the freed rightmost position with an erased cell.
func (r *Row) DeleteAt(col int, attrs Attrs) {
	if col < 0 || col >= len(r.cells) {
		return
	}
	copy(r.cells[col:], r.cells[col+1:])
	r.cells[len(r.cells)-1] = ErasedCell(attrs)
	if r.cells[col].IsWideContinuation() {
		r.cells[col] = EmptyCell()
	}
}

// String returns the row's text with trailing blanks trimmed.
// Continuation cells contribute nothing; blanks between glyphs come
// back as spaces.
func (r *Row) String() string {
	end := len(r.cells)
	for end > 0 && r.cells[end-1].IsEmpty() {
		end--
	}
	var b strings.Builder
	for i := 0; i < end; i++ {
		c := r.cells[i]
		switch {
		case c.IsWideContinuation():
		case c.IsEmpty():
			b.WriteByte(' ')
		default:
			b.WriteString(c.text)
		}
	}
	return b.String()
}

// clone returns a deep copy of the row.
func (r *Row) clone() Row {
	cells := make([]Cell, len(r.cells))
	copy(cells, r.cells)
	return Row{cells: cells, wrapped: r.wrapped}
}

// resizeTo truncates or extends the row to cols columns.
func (r *Row) resizeTo(cols int) {
	if cols == len(r.cells) {
		return
	}
	if cols < len(r.cells) {
		r.cells = r.cells[:cols]
		if cols > 0 && r.cells[cols-1].IsWideContinuation() {
			r.cells[cols-1] = EmptyCell()
		}
		return
	}
	grown := make([]Cell, cols)
	copy(grown, r.cells)
	r.cells = grown
}
