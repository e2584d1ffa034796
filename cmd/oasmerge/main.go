package main

import (
	"fmt"
	"os"

	"github.com/erraggy/oasmerge"
	"github.com/erraggy/oasmerge/cmd/oasmerge/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "-v", "--version":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "merge":
		err = commands.HandleMerge(args)
	case "watch":
		err = commands.HandleWatch(args)
	case "mcp":
		err = commands.HandleMCP(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("oasmerge v%s\n", oasmerge.Version())
	fmt.Printf("commit: %s\n", oasmerge.Commit())
	fmt.Printf("built: %s\n", oasmerge.BuildTime())
	fmt.Printf("go: %s\n", oasmerge.GoVersion())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `oasmerge - Aggregate OpenAPI 3.x documents into one master document

Usage:
  oasmerge <command> [flags] [args]

Commands:
  merge     Merge documents given on the command line
  watch     Keep a master document in sync with a directory
  mcp       Serve a merge registry as MCP tools over stdio
  version   Show version information
  help      Show this help message

Run 'oasmerge <command> -h' for command flags.

Configuration:
  -config <file.toml>, overridden by OASMERGE_* environment variables
  (OASMERGE_TITLE, OASMERGE_LOG_LEVEL, OASMERGE_WATCH_DIR, OASMERGE_OUTPUT, ...)
`)
}
