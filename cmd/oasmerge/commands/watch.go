package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erraggy/oasmerge/internal/cliutil"
	"github.com/erraggy/oasmerge/internal/config"
	"github.com/erraggy/oasmerge/internal/watch"
	"github.com/erraggy/oasmerge/merge"
)

// WatchFlags contains flags for the watch command
type WatchFlags struct {
	Config   string
	Output   string
	Format   string
	Debounce time.Duration
	Once     bool
}

// SetupWatchFlags creates and configures a FlagSet for the watch command.
func SetupWatchFlags() (*flag.FlagSet, *WatchFlags) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	flags := &WatchFlags{}

	fs.StringVar(&flags.Config, "config", "", "TOML configuration file")
	fs.StringVar(&flags.Output, "o", "", "output file rewritten after every change")
	fs.StringVar(&flags.Output, "output", "", "output file rewritten after every change")
	fs.StringVar(&flags.Format, "format", "", "output format: yaml or json (default: yaml)")
	fs.DurationVar(&flags.Debounce, "debounce", 0, "quiet period after the last file event before re-merging (default: 500ms)")
	fs.BoolVar(&flags.Once, "once", false, "sync the directory once, write the output and exit")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oasmerge watch [flags] [dir]\n\n")
		cliutil.Writef(fs.Output(), "Keep a master document in sync with a directory of OpenAPI 3.x documents.\n")
		cliutil.Writef(fs.Output(), "Each file is one contribution: new files are merged, edited files are\n")
		cliutil.Writef(fs.Output(), "removed and merged again, deleted files are removed.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oasmerge watch -o api.yaml ./specs\n")
		cliutil.Writef(fs.Output(), "  oasmerge watch -config oasmerge.toml\n")
		cliutil.Writef(fs.Output(), "  oasmerge watch -once -format json -o api.json ./specs\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - dir defaults to watch.dir from the configuration\n")
		cliutil.Writef(fs.Output(), "  - Files that fail to parse are treated as absent until they parse again\n")
	}

	return fs, flags
}

// HandleWatch executes the watch command. It blocks until interrupted.
func HandleWatch(args []string) error {
	fs, flags := SetupWatchFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return fmt.Errorf("watch command accepts at most one directory")
	}

	cfg, err := LoadConfig(flags.Config, flags.Output, flags.Format)
	if err != nil {
		return err
	}
	if fs.NArg() == 1 {
		cfg.Watch.Dir = fs.Arg(0)
	}
	if flags.Debounce > 0 {
		cfg.Watch.Debounce = config.Duration{Duration: flags.Debounce}
	}
	if cfg.Watch.Dir == "" {
		fs.Usage()
		return fmt.Errorf("watch command requires a directory")
	}
	if cfg.Output.Path == "" {
		return fmt.Errorf("watch command requires an output file (-o or output.path)")
	}

	logger := NewLogger(os.Stderr, cfg, false)
	reg, err := NewRegistry(cfg, logger)
	if err != nil {
		return err
	}

	format := cfg.OutputFormat()
	w, err := watch.New(reg, cfg.Watch.Dir,
		watch.WithPatterns(cfg.Watch.Patterns...),
		watch.WithDebounce(cfg.Watch.Debounce.Duration),
		watch.WithLogger(logger),
		watch.WithOnChange(func(_ context.Context, snap *merge.Snapshot, result watch.SyncResult) error {
			written, err := WriteSnapshot(snap, format, cfg.Output.Path)
			if err != nil {
				return err
			}
			logger.Info("master document written",
				"path", written,
				"generation", snap.Generation,
				"contributions", len(snap.Contributions),
				"warnings", result.Warnings)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.Once {
		if _, err := w.Sync(ctx); err != nil {
			return fmt.Errorf("syncing %s: %w", cfg.Watch.Dir, err)
		}
		// An empty directory changes nothing, so write the empty master here.
		_, err := WriteSnapshot(reg.Snapshot(), format, cfg.Output.Path)
		return err
	}

	logger.Info("watching", "dir", cfg.Watch.Dir, "output", cfg.Output.Path)
	return w.Run(ctx)
}
