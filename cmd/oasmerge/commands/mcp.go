package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasmerge/internal/cliutil"
	"github.com/erraggy/oasmerge/internal/mcpserver"
)

// MCPFlags contains flags for the mcp command
type MCPFlags struct {
	Config string
}

// SetupMCPFlags creates and configures a FlagSet for the mcp command.
func SetupMCPFlags() (*flag.FlagSet, *MCPFlags) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	flags := &MCPFlags{}

	fs.StringVar(&flags.Config, "config", "", "TOML configuration file")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oasmerge mcp [flags]\n\n")
		cliutil.Writef(fs.Output(), "Serve a merge registry as MCP tools over stdio.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nTools:\n")
		cliutil.Writef(fs.Output(), "  add_contribution, remove_contribution, get_merged,\n")
		cliutil.Writef(fs.Output(), "  list_contributions, inspect_contribution\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - Logs go to stderr; stdout carries the MCP protocol\n")
		cliutil.Writef(fs.Output(), "  - Limits are read from OASMERGE_MCP_* environment variables\n")
	}

	return fs, flags
}

// HandleMCP executes the mcp command. It blocks until the client disconnects.
func HandleMCP(args []string) error {
	fs, flags := SetupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	cfg, err := LoadConfig(flags.Config, "", "")
	if err != nil {
		return err
	}
	logger := NewLogger(os.Stderr, cfg, false)
	reg, err := NewRegistry(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcpserver.New(reg, mcpserver.WithLogger(logger)).Run(ctx)
}
