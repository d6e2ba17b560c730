package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jorge-barreto/statetrap/internal/config"
	"github.com/jorge-barreto/statetrap/internal/doctor"
	"github.com/jorge-barreto/statetrap/internal/docs"
	"github.com/jorge-barreto/statetrap/internal/runner"
	"github.com/jorge-barreto/statetrap/internal/scaffold"
	"github.com/jorge-barreto/statetrap/internal/ux"
	cli "github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:        "statetrap",
		Usage:       "Inject sentinel trap states into Verilog FSMs",
		Description: "Run 'statetrap docs' for documentation on detection, patching, and configuration.",
		Commands: []*cli.Command{
			patchCmd(),
			scanCmd(),
			doctorCmd(),
			initCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func patchCmd() *cli.Command {
	return &cli.Command{
		Name:      "patch",
		Usage:     "Inject trap states into the given files and directories",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Config file path"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent file limit"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Plan every file but write nothing"},
			&cli.StringFlag{Name: "report", Usage: "Save per-file outcomes as JSON"},
			&cli.BoolFlag{Name: "verbose", Usage: "Also print files that were not recognized"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBatch(ctx, cmd, cmd.Bool("dry-run"), cmd.Bool("verbose"))
		},
	}
}

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Show what patch would do, without writing anything",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Config file path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBatch(ctx, cmd, true, true)
		},
	}
}

func runBatch(ctx context.Context, cmd *cli.Command, dryRun, verbose bool) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("at least one path argument is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if w := cmd.Int("workers"); w > 0 {
		cfg.Workers = int(w)
	}

	files, err := runner.CollectFiles(cmd.Args().Slice(), cfg.Extensions, os.Stdin)
	if err != nil {
		return err
	}

	r := &runner.Runner{
		Config:   cfg,
		Reporter: &ux.Console{Verbose: verbose},
		DryRun:   dryRun,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	rep, err := r.Run(ctx, files)
	if path := cmd.String("report"); path != "" {
		if saveErr := rep.Save(path); saveErr != nil && err == nil {
			err = fmt.Errorf("saving report: %w", saveErr)
		}
	}
	return err
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:      "doctor",
		Usage:     "Explain, step by step, what detection sees in one file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Config file path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("file argument is required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return doctor.Run(path, cfg)
		},
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write an example statetrap.yaml to the current directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-12s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'statetrap docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

// loadConfig honors --config, then searches upward from cwd for
// statetrap.yaml, then falls back to built-in defaults.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		return config.Load(path)
	}
	if path, ok := findConfig(); ok {
		return config.Load(path)
	}
	return config.Default(), nil
}

// findConfig walks up from cwd looking for statetrap.yaml.
func findConfig() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, "statetrap.yaml")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
