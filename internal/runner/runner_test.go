package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorge-barreto/statetrap/internal/config"
	"github.com/jorge-barreto/statetrap/internal/report"
	"github.com/jorge-barreto/statetrap/internal/ux"
)

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

const unclosedFSM = `module bad (
    input clk
);
    always @(posedge clk) begin
        case (state)
            IDLE: begin
                state <= IDLE;
            end
endmodule
`

const notAnFSM = `module plain (
    input a,
    output y
);
    assign y = ~a;
endmodule
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRunner() *Runner {
	return &Runner{Config: config.Default(), Reporter: ux.Quiet{}}
}

func TestRun_PatchesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ctrl.v", simpleFSM)

	rep, err := newRunner().Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	scanned, patched := rep.Summary()
	if scanned != 1 || patched != 1 {
		t.Fatalf("Summary = (%d, %d), want (1, 1)", scanned, patched)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "DEADBEEF_DETECT") {
		t.Fatal("patched file does not contain trap state")
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatal(err)
	}
	if string(bak) != simpleFSM {
		t.Fatal("backup does not hold the original bytes")
	}
}

func TestRun_SecondRunAlreadyPatched(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ctrl.v", simpleFSM)
	r := newRunner()

	if _, err := r.Run(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}
	afterFirst, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	rep, err := r.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if got := rep.Count(report.OutcomeAlreadyPatched); got != 1 {
		t.Fatalf("Count(already-patched) = %d, want 1", got)
	}
	if _, patched := rep.Summary(); patched != 0 {
		t.Fatalf("patched = %d, want 0", patched)
	}

	afterSecond, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(afterFirst) != string(afterSecond) {
		t.Fatal("second run modified an already patched file")
	}
}

func TestRun_MixedOutcomes(t *testing.T) {
	dir := t.TempDir()
	fsm := writeFile(t, dir, "ctrl.v", simpleFSM)
	plain := writeFile(t, dir, "plain.v", notAnFSM)
	unclosed := writeFile(t, dir, "bad.v", unclosedFSM)

	rep, err := newRunner().Run(context.Background(), []string{fsm, plain, unclosed})
	if err != nil {
		t.Fatal(err)
	}
	scanned, patched := rep.Summary()
	if scanned != 3 || patched != 1 {
		t.Fatalf("Summary = (%d, %d), want (3, 1)", scanned, patched)
	}
	if got := rep.Count(report.OutcomeNotAnFSM); got != 1 {
		t.Fatalf("Count(not-an-fsm) = %d, want 1", got)
	}
	if got := rep.Count(report.OutcomeLocateFailed); got != 1 {
		t.Fatalf("Count(locate-failed) = %d, want 1", got)
	}

	// The unpatchable files are untouched.
	for _, p := range []string{plain, unclosed} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "DEADBEEF_DETECT") {
			t.Fatalf("%s was modified", p)
		}
	}
}

func TestRun_IOErrorIsolated(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ctrl.v", simpleFSM)
	missing := filepath.Join(dir, "missing.v")

	rep, err := newRunner().Run(context.Background(), []string{missing, good})
	if err != nil {
		t.Fatal(err)
	}
	scanned, patched := rep.Summary()
	if scanned != 2 || patched != 1 {
		t.Fatalf("Summary = (%d, %d), want (2, 1)", scanned, patched)
	}
	if got := rep.Count(report.OutcomeIOError); got != 1 {
		t.Fatalf("Count(io-error) = %d, want 1", got)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ctrl.v", simpleFSM)

	r := newRunner()
	r.DryRun = true
	rep, err := r.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if _, patched := rep.Summary(); patched != 1 {
		t.Fatalf("patched = %d, want 1", patched)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != simpleFSM {
		t.Fatal("dry run modified the file")
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatal("dry run created a backup")
	}
}

func TestRun_BackupSkipIfExists(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ctrl.v", simpleFSM)
	writeFile(t, dir, "ctrl.v.bak", "keep me")

	if _, err := newRunner().Run(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatal(err)
	}
	if string(bak) != "keep me" {
		t.Fatalf("existing backup overwritten: %q", string(bak))
	}
}

func TestRun_BackupAlwaysOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ctrl.v", simpleFSM)
	writeFile(t, dir, "ctrl.v.bak", "old backup")

	r := newRunner()
	r.Config.Backup.Policy = config.PolicyAlwaysOverwrite
	if _, err := r.Run(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatal(err)
	}
	if string(bak) != simpleFSM {
		t.Fatal("backup was not replaced with the pre-patch bytes")
	}
}

func TestRun_PreservesFileMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ctrl.v", simpleFSM)
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := newRunner().Run(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("mode = %o, want 0600", info.Mode().Perm())
	}
}

// cancelReporter cancels the run after the first file completes.
type cancelReporter struct {
	ux.Quiet
	cancel context.CancelFunc
}

func (c *cancelReporter) File(path string, outcome report.Outcome, err error) {
	c.cancel()
}

func TestRun_CancelStopsScheduling(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.v", "b.v", "c.v"} {
		files = append(files, writeFile(t, dir, name, simpleFSM))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRunner()
	r.Config.Workers = 1
	r.Reporter = &cancelReporter{cancel: cancel}

	rep, err := r.Run(ctx, files)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if scanned, _ := rep.Summary(); scanned != 1 {
		t.Fatalf("scanned = %d, want 1", scanned)
	}
}
