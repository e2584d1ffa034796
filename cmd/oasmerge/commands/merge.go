package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erraggy/oasmerge/internal/cliutil"
	"github.com/erraggy/oasmerge/merge"
	"github.com/erraggy/oasmerge/oas"
)

// MergeFlags contains flags for the merge command
type MergeFlags struct {
	Config string
	Output string
	Format string
	Quiet  bool
}

// SetupMergeFlags creates and configures a FlagSet for the merge command.
// Returns the FlagSet and a MergeFlags struct with bound flag variables.
func SetupMergeFlags() (*flag.FlagSet, *MergeFlags) {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	flags := &MergeFlags{}

	fs.StringVar(&flags.Config, "config", "", "TOML configuration file")
	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Format, "format", "", "output format: yaml or json (default: yaml)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only print the master document")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only print the master document")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oasmerge merge [flags] <file1> [file2...]\n\n")
		cliutil.Writef(fs.Output(), "Merge OpenAPI 3.x documents into one master document, in the order given.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nConflicts:\n")
		cliutil.Writef(fs.Output(), "  Tags, components and operationIds that clash with different content are\n")
		cliutil.Writef(fs.Output(), "  renamed with numeric suffixes (Pet, Pet1, Pet2, ...) and the document's\n")
		cliutil.Writef(fs.Output(), "  references are rewritten. Identical items are shared. Conflicting paths\n")
		cliutil.Writef(fs.Output(), "  are skipped: the first document to define a path wins.\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oasmerge merge users.yaml billing.yaml\n")
		cliutil.Writef(fs.Output(), "  oasmerge merge -o api.json -format json services/*.yaml\n")
		cliutil.Writef(fs.Output(), "  oasmerge merge -config oasmerge.toml -q users.yaml billing.yaml > api.yaml\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - Each document is labelled by its file name\n")
		cliutil.Writef(fs.Output(), "  - When -o is specified, file is written with restrictive permissions (0600)\n")
	}

	return fs, flags
}

// HandleMerge executes the merge command
func HandleMerge(args []string) error {
	fs, flags := SetupMergeFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("merge command requires at least one input file")
	}
	filePaths := fs.Args()

	cfg, err := LoadConfig(flags.Config, flags.Output, flags.Format)
	if err != nil {
		return err
	}
	if cfg.Output.Path != "" {
		if err := cliutil.ValidateOutputPath(cfg.Output.Path, filePaths); err != nil {
			return err
		}
	}

	logger := NewLogger(os.Stderr, cfg, flags.Quiet)
	reg, err := NewRegistry(cfg, logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	labels := UniqueLabels(filePaths)
	results := make([]*merge.AddResult, 0, len(filePaths))
	for i, path := range filePaths {
		doc, err := oas.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		res, err := reg.Add(merge.NewContribution(labels[i], doc))
		if err != nil {
			return fmt.Errorf("merging %s: %w", path, err)
		}
		results = append(results, res)
	}
	totalTime := time.Since(startTime)

	snap := reg.Snapshot()
	written, err := WriteSnapshot(snap, cfg.OutputFormat(), cfg.Output.Path)
	if err != nil {
		return err
	}

	if !flags.Quiet {
		cliutil.Writef(os.Stderr, "\nOpenAPI Specification Merge\n")
		cliutil.Writef(os.Stderr, "===========================\n\n")
		OutputStats(os.Stderr, snap)
		cliutil.Writef(os.Stderr, "Total Time: %v\n\n", totalTime)
		for _, res := range results {
			OutputAddReport(os.Stderr, res)
		}
		cliutil.Writef(os.Stderr, "\nOutput written to: %s\n", written)
	}
	return nil
}
