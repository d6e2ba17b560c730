// Package detect recognizes FSM constructs in Verilog source using
// structural pattern heuristics. It is a best-effort classifier, not a
// parser: a miss returns NotFound rather than an error, and a hit carries
// no guarantee beyond "this looks like a state machine".
package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jorge-barreto/statetrap/internal/config"
	"github.com/jorge-barreto/statetrap/internal/locate"
)

var (
	caseOpenRe = regexp.MustCompile(`\bcase\s*\(\s*(\w+)\s*\)`)
	labelRe    = regexp.MustCompile(`([A-Z_]+)\s*:\s*begin`)
	widthRe    = regexp.MustCompile(`parameter\s+\[(\d+):0\]`)
)

// quickRes are the coarse fingerprints used to pre-filter candidate files
// before running full detection. The set must cover every case form the
// full detector accepts, or the walker would drop patchable files.
var quickRes = []*regexp.Regexp{
	regexp.MustCompile(`case\s*\(\s*state\s*\)`),
	regexp.MustCompile(`case\s*\(\s*\w+_state\s*\)`),
	regexp.MustCompile(`case\s*\(\s*current_state\s*\)`),
	regexp.MustCompile(`case\s*\(\s*\w+_(?:ps|cs)\s*\)`),
	regexp.MustCompile(`enum\s+.*?\{\s*\w+_STATE`),
	regexp.MustCompile(`parameter\s+\w+_STATE\s*=`),
}

// DefaultWidth is the assumed state-encoding width when no explicit
// bit-range declaration is found.
const DefaultWidth = 4

// Label is one recognized state label inside the dispatch block.
type Label struct {
	Name     string
	GuardPos int // offset immediately after the label's "begin" token
}

// Descriptor is the detector's view of one FSM, computed against a single
// immutable buffer and consumed by the patch planner.
type Descriptor struct {
	StateRegister string
	Labels        []Label
	Width         int
	// Block spans from just after the dispatch-open token to just after
	// its closing endcase. End is -1 when the block never closes; such a
	// file must not be patched.
	Block    Span
	Injected bool // payload state names already present
}

// LabelNames returns the distinct label names in first-seen order.
func (d *Descriptor) LabelNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, l := range d.Labels {
		if !seen[l.Name] {
			seen[l.Name] = true
			names = append(names, l.Name)
		}
	}
	return names
}

// Detector recognizes FSMs. It knows the payload's own state names so a
// previously patched file is reported as such instead of re-collected.
type Detector struct {
	trap       string
	quarantine string
}

func New(p config.Payload) *Detector {
	return &Detector{trap: p.TrapState, quarantine: p.QuarantineState}
}

// QuickScan cheaply reports whether text carries any FSM fingerprint.
// Used by the walker to skip obvious non-candidates without full detection.
func QuickScan(text []byte) bool {
	for _, re := range quickRes {
		if re.Match(text) {
			return true
		}
	}
	return false
}

// QuickMatches returns the fingerprint patterns text matches. Diagnostic
// counterpart of QuickScan.
func QuickMatches(text []byte) []string {
	var matched []string
	for _, re := range quickRes {
		if re.Match(text) {
			matched = append(matched, re.String())
		}
	}
	return matched
}

// Detect analyzes text and returns a descriptor for the first dispatch
// statement whose case identifier looks state-holding, or false when none
// matches. Purely read-only; never fails.
func (d *Detector) Detect(text []byte) (*Descriptor, bool) {
	reg, open := dispatchOpen(text)
	if reg == "" {
		return nil, false
	}

	desc := &Descriptor{
		StateRegister: reg,
		Width:         Width(text),
		Block:         Span{Start: open, End: -1},
	}

	end, ok := locate.BlockEnd(text, open)
	if !ok {
		// Unclosed block: report the FSM but collect no labels, since the
		// scan cannot be bounded. The planner refuses such descriptors.
		return desc, true
	}
	desc.Block.End = end

	for _, m := range labelRe.FindAllSubmatchIndex(text[open:end], -1) {
		name := string(text[open+m[2] : open+m[3]])
		if name == d.trap || name == d.quarantine {
			desc.Injected = true
			continue
		}
		desc.Labels = append(desc.Labels, Label{Name: name, GuardPos: open + m[1]})
	}
	return desc, true
}

// Width returns the state-encoding width in bits, taken from the first
// parameter bit-range declaration, or DefaultWidth when absent.
func Width(text []byte) int {
	if m := widthRe.FindSubmatch(text); m != nil {
		n, err := strconv.Atoi(string(m[1]))
		if err == nil {
			return n + 1
		}
	}
	return DefaultWidth
}

// dispatchOpen returns the identifier and the offset just past the close
// paren of the first case statement switching on a state-holding name.
func dispatchOpen(text []byte) (string, int) {
	for _, m := range caseOpenRe.FindAllSubmatchIndex(text, -1) {
		ident := string(text[m[2]:m[3]])
		if stateIdent(ident) {
			return ident, m[1]
		}
	}
	return "", -1
}

// stateIdent reports whether ident matches one of the accepted surface
// forms of a state-holding register name.
func stateIdent(ident string) bool {
	switch ident {
	case "state", "current_state", "next_state":
		return true
	}
	for _, suffix := range []string{"_state", "_ps", "_cs", "_current_state"} {
		if strings.HasSuffix(ident, suffix) && len(ident) > len(suffix) {
			return true
		}
	}
	return false
}
