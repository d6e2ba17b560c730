package detect

import (
	"strings"
	"testing"

	"github.com/jorge-barreto/statetrap/internal/config"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	return New(config.Default().Payload)
}

const simpleFSM = `module ctrl (
    input clk,
    input rst
);
    parameter IDLE = 0;
    parameter RUN = 1;
    reg [3:0] state;

    always @(posedge clk) begin
        case (state)
            IDLE: begin
                state <= RUN;
            end
            RUN: begin
                state <= IDLE;
            end
        endcase
    end
endmodule
`

func TestDetect_PlainState(t *testing.T) {
	desc, ok := newDetector(t).Detect([]byte(simpleFSM))
	if !ok {
		t.Fatal("expected detection")
	}
	if desc.StateRegister != "state" {
		t.Fatalf("StateRegister = %q, want %q", desc.StateRegister, "state")
	}
	if desc.Injected {
		t.Fatal("fresh source reported as injected")
	}
}

func TestDetect_SurfaceForms(t *testing.T) {
	cases := []struct {
		ident string
		want  bool
	}{
		{"state", true},
		{"current_state", true},
		{"next_state", true},
		{"fsm_state", true},
		{"cpu_ps", true},
		{"rx_cs", true},
		{"main_current_state", true},
		{"mode", false},
		{"estate", false},
		{"_state", false},
		{"status", false},
	}
	d := newDetector(t)
	for _, tc := range cases {
		src := "case (" + tc.ident + ")\n    IDLE: begin x <= 1; end\nendcase\n"
		desc, ok := d.Detect([]byte(src))
		if ok != tc.want {
			t.Fatalf("ident %q: detected = %v, want %v", tc.ident, ok, tc.want)
		}
		if ok && desc.StateRegister != tc.ident {
			t.Fatalf("ident %q: StateRegister = %q", tc.ident, desc.StateRegister)
		}
	}
}

func TestDetect_FirstMatchInSourceOrder(t *testing.T) {
	src := `case (opcode)
    ADD: begin r <= a + b; end
endcase
case (ctrl_state)
    IDLE: begin ctrl_state <= IDLE; end
endcase
case (state)
    RUN: begin state <= RUN; end
endcase
`
	desc, ok := newDetector(t).Detect([]byte(src))
	if !ok {
		t.Fatal("expected detection")
	}
	if desc.StateRegister != "ctrl_state" {
		t.Fatalf("StateRegister = %q, want ctrl_state (earliest matching form)", desc.StateRegister)
	}
}

func TestDetect_NoFSM(t *testing.T) {
	src := `module adder(input a, input b, output sum);
    assign sum = a + b;
endmodule
`
	if _, ok := newDetector(t).Detect([]byte(src)); ok {
		t.Fatal("combinational module should not detect as FSM")
	}
}

func TestDetect_LabelsInOrderWithPositions(t *testing.T) {
	desc, ok := newDetector(t).Detect([]byte(simpleFSM))
	if !ok {
		t.Fatal("expected detection")
	}
	if len(desc.Labels) != 2 {
		t.Fatalf("labels = %d, want 2", len(desc.Labels))
	}
	if desc.Labels[0].Name != "IDLE" || desc.Labels[1].Name != "RUN" {
		t.Fatalf("labels = %v", desc.Labels)
	}
	for _, l := range desc.Labels {
		if got := simpleFSM[l.GuardPos-len("begin") : l.GuardPos]; got != "begin" {
			t.Fatalf("label %s: GuardPos not after begin, preceding text %q", l.Name, got)
		}
		if !desc.Block.Contains(l.GuardPos) {
			t.Fatalf("label %s: GuardPos %d outside block %s", l.Name, l.GuardPos, desc.Block)
		}
	}
}

func TestDetect_LabelsBoundedByBlock(t *testing.T) {
	src := `case (state)
    IDLE: begin state <= IDLE; end
endcase
TRAILING_LABEL: begin end
`
	desc, ok := newDetector(t).Detect([]byte(src))
	if !ok {
		t.Fatal("expected detection")
	}
	if len(desc.Labels) != 1 || desc.Labels[0].Name != "IDLE" {
		t.Fatalf("labels = %v, want only IDLE", desc.Labels)
	}
}

func TestDetect_NestedBlockLabelsIncluded(t *testing.T) {
	src := `case (state)
    IDLE: begin
        case (sub)
            INNER: begin y <= 1; end
        endcase
    end
endcase
`
	desc, ok := newDetector(t).Detect([]byte(src))
	if !ok {
		t.Fatal("expected detection")
	}
	names := desc.LabelNames()
	if len(names) != 2 || names[0] != "IDLE" || names[1] != "INNER" {
		t.Fatalf("LabelNames = %v", names)
	}
}

func TestDetect_PayloadLabelsSetInjected(t *testing.T) {
	src := `case (state)
    IDLE: begin state <= IDLE; end
    DEADBEEF_DETECT: begin state <= SPECIAL_IDLE; end
    SPECIAL_IDLE: begin state <= SPECIAL_IDLE; end
endcase
`
	desc, ok := newDetector(t).Detect([]byte(src))
	if !ok {
		t.Fatal("expected detection")
	}
	if !desc.Injected {
		t.Fatal("payload labels present but Injected = false")
	}
	if len(desc.Labels) != 1 || desc.Labels[0].Name != "IDLE" {
		t.Fatalf("labels = %v, payload names must be excluded", desc.Labels)
	}
}

func TestDetect_UnclosedBlock(t *testing.T) {
	src := `case (state)
    IDLE: begin state <= IDLE; end
`
	desc, ok := newDetector(t).Detect([]byte(src))
	if !ok {
		t.Fatal("open dispatch should still be detected")
	}
	if desc.Block.End != -1 {
		t.Fatalf("Block.End = %d, want -1 for unclosed block", desc.Block.End)
	}
	if len(desc.Labels) != 0 {
		t.Fatalf("labels = %v, want none for unclosed block", desc.Labels)
	}
}

func TestWidth_FromParameterRange(t *testing.T) {
	src := "parameter [2:0] IDLE = 3'd0;\n"
	if w := Width([]byte(src)); w != 3 {
		t.Fatalf("Width = %d, want 3", w)
	}
}

func TestWidth_Default(t *testing.T) {
	if w := Width([]byte("parameter IDLE = 0;\n")); w != DefaultWidth {
		t.Fatalf("Width = %d, want %d", w, DefaultWidth)
	}
}

func TestQuickScan_Fingerprints(t *testing.T) {
	positives := []string{
		"case (state)",
		"case (fsm_state)",
		"case (current_state)",
		"case (rx_cs)",
		"case (cpu_ps)",
		"typedef enum logic {A_STATE, B_STATE} t;",
		"parameter FOO_STATE = 2'b01;",
	}
	for _, src := range positives {
		if !QuickScan([]byte(src)) {
			t.Fatalf("QuickScan(%q) = false, want true", src)
		}
	}
	for _, src := range []string{"assign out = in1 & in2;", "case (opcode)"} {
		if QuickScan([]byte(src)) {
			t.Fatalf("QuickScan(%q) = true, want false", src)
		}
	}
}

func TestQuickMatches_ReportsPatterns(t *testing.T) {
	// current_state hits both the suffix form and its own pattern.
	matched := QuickMatches([]byte("case (state)\ncase (current_state)"))
	if len(matched) != 3 {
		t.Fatalf("matched %d patterns, want 3: %v", len(matched), matched)
	}
	if got := QuickMatches([]byte("assign out = in;")); got != nil {
		t.Fatalf("matched %v for plain source, want none", got)
	}
}

func TestDescriptor_LabelNamesDedupes(t *testing.T) {
	desc := &Descriptor{Labels: []Label{
		{Name: "IDLE", GuardPos: 10},
		{Name: "RUN", GuardPos: 20},
		{Name: "IDLE", GuardPos: 30},
	}}
	names := desc.LabelNames()
	if len(names) != 2 || names[0] != "IDLE" || names[1] != "RUN" {
		t.Fatalf("LabelNames = %v", names)
	}
}

func TestDetect_BlockSpansDispatch(t *testing.T) {
	desc, ok := newDetector(t).Detect([]byte(simpleFSM))
	if !ok {
		t.Fatal("expected detection")
	}
	wantStart := strings.Index(simpleFSM, "case (state)") + len("case (state)")
	if desc.Block.Start != wantStart {
		t.Fatalf("Block.Start = %d, want %d", desc.Block.Start, wantStart)
	}
	wantEnd := strings.Index(simpleFSM, "endcase") + len("endcase")
	if desc.Block.End != wantEnd {
		t.Fatalf("Block.End = %d, want %d", desc.Block.End, wantEnd)
	}
}
