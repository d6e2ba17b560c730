package detect

import "fmt"

// Span is a half-open [Start, End) byte range into one specific buffer
// snapshot. A span computed against the original buffer is meaningless
// against a mutated one.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered. Zero for unterminated spans.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether the offset falls inside the span.
func (s Span) Contains(off int) bool {
	return off >= s.Start && off < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
