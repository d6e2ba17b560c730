package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with statetrap",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "Config file schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "detection",
		Title:   "FSM Detection",
		Summary: "How case dispatch blocks, labels, and widths are recognized",
		Content: topicDetection,
	},
	{
		Name:    "patching",
		Title:   "Patch Anatomy",
		Summary: "What gets inserted, where, and why it is safe to re-run",
		Content: topicPatching,
	},
	{
		Name:    "batch",
		Title:   "Batch Runs",
		Summary: "File walking, workers, outcomes, backups, and reports",
		Content: topicBatch,
	},
}

const topicQuickstart = `Quick Start
===========

1. Write a config (optional; built-in defaults work out of the box):

    cd your-rtl-tree
    statetrap init

   This creates statetrap.yaml next to your sources.

2. Preview what would change, without writing anything:

    statetrap patch --dry-run rtl/

3. Patch for real:

    statetrap patch rtl/

   Every modified file keeps a backup next to it (file.v.bak by
   default), and writes are atomic, so an interrupted run never leaves
   a half-patched file.

4. Re-running is safe: files that already carry the injected states are
   reported as already patched and left alone.

5. When a file you expected to change did not:

    statetrap doctor rtl/ctrl.v

   prints the detection walkthrough step by step.

CLI Flags
---------

  statetrap patch <path>...             Patch files and directory trees
  statetrap patch - < list.txt          Read file paths from stdin
  statetrap patch --dry-run <path>      Plan only, write nothing
  statetrap patch --workers N <path>    Concurrent file limit
  statetrap patch --report out.json     Save per-file outcomes as JSON
  statetrap scan <path>...              Detect-only listing, no writes
  statetrap doctor <file>               Explain detection for one file
  statetrap init                        Write an example statetrap.yaml
  statetrap docs                        List documentation topics
`

const topicConfig = `Configuration Reference
=======================

statetrap looks for statetrap.yaml in the current directory, then in
each parent directory. --config <path> overrides the search. With no
file found, built-in defaults apply. Every field is optional; zero
values take their default.

    extensions: [.v, .sv]     # files picked up when walking directories
    workers: 4                # concurrent file limit

    backup:
      suffix: .bak            # appended to the original path
      policy: skip-if-exists  # or always-overwrite

    payload:
      trap-state: DEADBEEF_DETECT
      quarantine-state: SPECIAL_IDLE
      input-signal: data_in
      input-width: 32
      sentinel: 32'hDEADBEEF
      reset-state: IDLE

Field notes
-----------

backup.policy
  skip-if-exists keeps the first backup ever taken, so the original
  pre-patch source survives repeated runs. always-overwrite replaces
  the backup with the latest pre-patch bytes on every run.

payload.trap-state / quarantine-state
  Must match [A-Z_]+. The detector finds state labels with that same
  shape, and recognizing its own payload on a second run is what makes
  patching idempotent.

payload.sentinel
  The literal compared against the input signal, written exactly as it
  should appear in the source (e.g. 32'hDEADBEEF).

payload.reset-state
  Where the trap state sends the machine when the sentinel stops
  matching. If the FSM has no label with this name, the first detected
  label is used instead.
`

const topicDetection = `FSM Detection
=============

Detection is structural, not syntactic: statetrap never parses
Verilog. It looks for the shape of a state machine and stays
conservative: a miss means the file is skipped, never rewritten.

Dispatch statement
------------------

The first case statement whose selector looks state-holding wins:

    case (state)            literal name
    case (current_state)    explicit current/next pair
    case (next_state)
    case (rx_state)         any *_state suffix
    case (cpu_ps)           *_ps / *_cs current-state suffixes

Selectors like opcode or mode do not match, and only the first
state-like dispatch in the file is patched.

Block bounds
------------

From the opening case, tokens are counted with a depth balance: case,
casez, and casex each open a block, endcase closes one. The dispatch
block ends where the balance returns to zero. A file whose balance
never closes is reported and skipped.

State labels
------------

Inside the block, every UPPER_CASE label of the form

    NAME: begin

is collected in source order. Duplicate names keep their first
position. If the collected names include the payload's own trap or
quarantine states, the file is already patched.

Encoding width
--------------

The first  parameter [N:0]  declaration gives N+1 bits; without one,
4 bits are assumed. When the injected state values would not fit, the
new parameters use the smallest width that holds them.
`

const topicPatching = `Patch Anatomy
=============

For an FSM with N distinct states, one patch run makes N+3 insertions.
All positions are computed against the original file bytes, then all
insertions are applied in a single pass. Nothing is ever located by
re-scanning text that was already modified.

1. Two parameters, inserted before the first existing parameter:

    parameter DEADBEEF_DETECT = 4'dN,
    parameter SPECIAL_IDLE    = 4'dN+1,

2. One input signal, inserted after the first existing port:

    input wire [31:0] data_in,

3. One guard at the top of every state body:

    if (data_in == 32'hDEADBEEF)
        state <= DEADBEEF_DETECT;
    else
        ... original body ...

4. The trap and quarantine bodies, inserted before endcase. The trap
   state waits while the sentinel holds and falls back to the reset
   state otherwise; the quarantine state self-loops forever.

Idempotency
-----------

A second run sees DEADBEEF_DETECT among the block's labels and reports
the file as already patched. The file is read but never written, so
running statetrap across an already-patched tree is a no-op.

Safety
------

The backup is written before the source file, and the source write is
atomic (temp file, fsync, rename). A crash mid-run leaves every file
either fully patched or untouched.
`

const topicBatch = `Batch Runs
==========

File collection
---------------

Arguments may mix files, directories, and "-":

    statetrap patch rtl/ extra/top.v
    find . -name '*.v' | statetrap patch -

Directories are walked recursively; .git, node_modules, and similar
tool directories are skipped; only files matching the configured
extensions are picked up. Explicitly named files bypass the extension
filter. Duplicates collapse to one entry.

Workers
-------

Up to workers files are in flight at once (default 4, --workers
overrides). Each file runs its whole pipeline on one worker, so there
is no cross-file ordering to reason about. Ctrl-C stops scheduling new
files; a file already being written finishes its write.

Outcomes
--------

Every scanned file ends in exactly one outcome:

    patched          the file was rewritten
    already-patched  payload states found, file left alone
    not-an-fsm       no state machine shape recognized
    locate-failed    dispatch block never closes
    io-error         read, backup, or write failed

A failing file never stops the batch. The run summary counts files
scanned and files patched; --report <path> additionally saves a JSON
report with the run id and one entry per file.
`
