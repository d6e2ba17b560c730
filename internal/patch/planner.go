// Package patch computes and applies the trap-state injection as an edit
// plan: every insertion position is derived from one immutable source
// snapshot, then all edits are spliced in a single pass. No position is
// ever located by re-scanning partially mutated text.
package patch

import (
	"errors"
	"fmt"
	"math/bits"
	"regexp"

	"github.com/jorge-barreto/statetrap/internal/config"
	"github.com/jorge-barreto/statetrap/internal/detect"
	"github.com/jorge-barreto/statetrap/internal/locate"
)

var (
	// ErrAlreadyPatched reports that the payload state names are already
	// present in the dispatch block.
	ErrAlreadyPatched = errors.New("payload already present")

	// ErrLocateFailed reports that the dispatch block never closes, so no
	// insertion point for the new states exists.
	ErrLocateFailed = errors.New("dispatch block never closes")
)

var (
	paramAnchorRe = regexp.MustCompile(`(?m)^[ \t]*parameter\s+[A-Z_]+\s*=`)
	inputAnchorRe = regexp.MustCompile(`\binput\b\s+[^,;]+[,;]`)
)

// Planner builds edit plans from detection results. The payload supplies
// every name, width, and value appearing in the injected text.
type Planner struct {
	payload config.Payload
}

func NewPlanner(p config.Payload) *Planner {
	return &Planner{payload: p}
}

// Plan computes the full set of insertions for one file: the two new state
// parameters, the monitored input signal, one guard per existing state, and
// the trap/quarantine state bodies. All positions refer to text as given.
func (pl *Planner) Plan(text []byte, desc *detect.Descriptor) (*Plan, error) {
	if desc.Injected {
		return nil, ErrAlreadyPatched
	}
	if desc.Block.End < 0 {
		return nil, ErrLocateFailed
	}

	names := desc.LabelNames()
	n := len(names)
	width := effectiveWidth(desc.Width, n+1)

	plan := &Plan{}

	if m := paramAnchorRe.FindIndex(text); m != nil {
		plan.Insert(m[0], pl.paramBlock(width, n))
	}
	if m := inputAnchorRe.FindIndex(text); m != nil {
		plan.Insert(m[1], pl.inputDecl())
	}
	for _, l := range desc.Labels {
		plan.Insert(l.GuardPos, pl.guard(desc.StateRegister))
	}
	plan.Insert(closeInsertPos(text, desc.Block.End), pl.newStates(desc.StateRegister, pl.resetTarget(names)))

	return plan, nil
}

// Rewrite plans and applies in one step, returning the mutated buffer.
// text is never modified, so a failed write can safely retry from it.
func (pl *Planner) Rewrite(text []byte, desc *detect.Descriptor) ([]byte, error) {
	plan, err := pl.Plan(text, desc)
	if err != nil {
		return nil, err
	}
	return plan.Apply(text), nil
}

// effectiveWidth widens the declared encoding width when the quarantine
// value would not fit, leaving existing declarations untouched.
func effectiveWidth(declared, quarantineVal int) int {
	if need := bits.Len(uint(quarantineVal)); need > declared {
		return need
	}
	return declared
}

// resetTarget picks the state the trap falls back to on a non-sentinel
// input: the configured reset state when the FSM has it, otherwise the
// FSM's first label.
func (pl *Planner) resetTarget(names []string) string {
	for _, n := range names {
		if n == pl.payload.ResetState {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return pl.payload.ResetState
}

func (pl *Planner) paramBlock(width, firstValue int) string {
	trap, quarantine := pl.payload.TrapState, pl.payload.QuarantineState
	pad := len(trap)
	if len(quarantine) > pad {
		pad = len(quarantine)
	}
	return fmt.Sprintf("    // Added deadbeef detection states\n"+
		"    parameter %-*s = %d'd%d,\n"+
		"    parameter %-*s = %d'd%d,\n\n",
		pad, trap, width, firstValue,
		pad, quarantine, width, firstValue+1)
}

func (pl *Planner) inputDecl() string {
	return fmt.Sprintf("\n    input wire [%d:0] %s,  // Input to check for deadbeef",
		pl.payload.InputWidth-1, pl.payload.InputSignal)
}

func (pl *Planner) guard(stateReg string) string {
	return fmt.Sprintf("\n"+
		"                // Check for deadbeef value\n"+
		"                if (%s == %s)\n"+
		"                    %s <= %s;\n"+
		"                else ",
		pl.payload.InputSignal, pl.payload.Sentinel,
		stateReg, pl.payload.TrapState)
}

func (pl *Planner) newStates(stateReg, resetState string) string {
	p := pl.payload
	return fmt.Sprintf("\n"+
		"            %s: begin\n"+
		"                if (%s == %s)\n"+
		"                    %s <= %s;\n"+
		"                else\n"+
		"                    %s <= %s;\n"+
		"            end\n\n"+
		"            %s: begin\n"+
		"                // Do nothing, stay in special idle state\n"+
		"                %s <= %s;\n"+
		"            end\n\n",
		p.TrapState,
		p.InputSignal, p.Sentinel,
		stateReg, p.QuarantineState,
		stateReg, resetState,
		p.QuarantineState,
		stateReg, p.QuarantineState)
}

// closeInsertPos returns the insertion point for the new state bodies: the
// start of the whitespace run immediately before the block's closing token,
// so the injected text sits between the last original state and endcase.
func closeInsertPos(text []byte, blockEnd int) int {
	pos := blockEnd - len(locate.CloseToken)
	for pos > 0 {
		switch text[pos-1] {
		case ' ', '\t', '\n', '\r':
			pos--
		default:
			return pos
		}
	}
	return pos
}
