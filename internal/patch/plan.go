package patch

import "sort"

// Edit is one planned insertion. Pos is a byte offset in original-buffer
// coordinates, fixed at planning time and never recomputed against mutated
// text.
type Edit struct {
	Pos  int
	Text string
}

// Plan is an ordered set of insertions against one immutable buffer
// snapshot. Edits at equal positions keep insertion order, so planning
// order doubles as the tie-break.
type Plan struct {
	edits editList
}

type editList []Edit

func (x editList) Len() int           { return len(x) }
func (x editList) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }
func (x editList) Less(i, j int) bool { return x[i].Pos < x[j].Pos }

// Insert schedules text to be inserted at pos.
func (p *Plan) Insert(pos int, text string) {
	p.edits = append(p.edits, Edit{Pos: pos, Text: text})
}

// Len returns the number of planned edits.
func (p *Plan) Len() int { return len(p.edits) }

// Edits returns a copy of the planned edits in insertion order.
func (p *Plan) Edits() []Edit {
	out := make([]Edit, len(p.edits))
	copy(out, p.edits)
	return out
}

// Apply splices every planned edit into orig and returns the result in a
// single left-to-right pass. Each edit lands at its original position plus
// the accumulated length of everything inserted before it, which is what
// keeps later positions valid after earlier insertions grow the buffer.
// orig is never modified.
func (p *Plan) Apply(orig []byte) []byte {
	sorted := make(editList, len(p.edits))
	copy(sorted, p.edits)
	sort.Stable(sorted)

	grow := 0
	for _, e := range sorted {
		grow += len(e.Text)
	}
	out := make([]byte, 0, len(orig)+grow)
	off := 0
	for _, e := range sorted {
		out = append(out, orig[off:e.Pos]...)
		out = append(out, e.Text...)
		off = e.Pos
	}
	return append(out, orig[off:]...)
}
