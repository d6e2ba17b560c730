// Package doctor explains, step by step, what detection sees in a single
// file. It exists for the "why didn't my file get patched" question.
package doctor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jorge-barreto/statetrap/internal/config"
	"github.com/jorge-barreto/statetrap/internal/detect"
	"github.com/jorge-barreto/statetrap/internal/patch"
	"github.com/jorge-barreto/statetrap/internal/ux"
)

// Run reads path and prints the detection walkthrough. Nothing is written.
func Run(path string, cfg *config.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s%s══ Doctor: %s ══%s\n\n", ux.Bold, ux.Cyan, path, ux.Reset)
	fmt.Print(Diagnose(data, cfg))
	fmt.Println()
	return nil
}

// Diagnose renders the walkthrough for one source buffer: fingerprints,
// dispatch statement, block bounds, labels, and the patch verdict.
func Diagnose(data []byte, cfg *config.Config) string {
	var b strings.Builder

	matches := detect.QuickMatches(data)
	if len(matches) == 0 {
		fmt.Fprintf(&b, "%s✗ no FSM fingerprint matches%s\n", ux.Red, ux.Reset)
		fmt.Fprintf(&b, "  the batch walker would skip this file without running full detection\n")
		return b.String()
	}
	for _, m := range matches {
		fmt.Fprintf(&b, "%s✓ fingerprint%s %s\n", ux.Green, ux.Reset, m)
	}

	desc, ok := detect.New(cfg.Payload).Detect(data)
	if !ok {
		fmt.Fprintf(&b, "%s✗ no case statement switches on a state-like identifier%s\n", ux.Red, ux.Reset)
		fmt.Fprintf(&b, "  accepted: state, current_state, next_state, or a _state/_ps/_cs suffix\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s✓ dispatch%s case (%s) at line %d, encoding width %d bits\n",
		ux.Green, ux.Reset, desc.StateRegister, lineOf(data, desc.Block.Start), desc.Width)

	if desc.Block.End < 0 {
		fmt.Fprintf(&b, "%s✗ the dispatch block never closes: case/endcase tokens are unbalanced%s\n",
			ux.Red, ux.Reset)
		return b.String()
	}
	fmt.Fprintf(&b, "%s✓ block%s closes at line %d\n", ux.Green, ux.Reset, lineOf(data, desc.Block.End))

	for _, l := range desc.Labels {
		fmt.Fprintf(&b, "  %s•%s %s (line %d)\n", ux.Cyan, ux.Reset, l.Name, lineOf(data, l.GuardPos))
	}
	if len(desc.Labels) == 0 && !desc.Injected {
		fmt.Fprintf(&b, "  %sno uppercase state labels inside the block%s\n", ux.Dim, ux.Reset)
	}

	plan, err := patch.NewPlanner(cfg.Payload).Plan(data, desc)
	switch {
	case errors.Is(err, patch.ErrAlreadyPatched):
		fmt.Fprintf(&b, "%s– already patched: %s and %s are present%s\n",
			ux.Yellow, cfg.Payload.TrapState, cfg.Payload.QuarantineState, ux.Reset)
	case err != nil:
		fmt.Fprintf(&b, "%s✗ cannot patch: %v%s\n", ux.Red, err, ux.Reset)
	default:
		fmt.Fprintf(&b, "%s✓ verdict%s a patch run would make %d insertions\n",
			ux.Green, ux.Reset, plan.Len())
	}
	return b.String()
}

// lineOf converts a byte offset into a 1-based line number.
func lineOf(data []byte, off int) int {
	if off > len(data) {
		off = len(data)
	}
	return 1 + bytes.Count(data[:off], []byte("\n"))
}
