// Command lapwatch-log is a tool for viewing and analyzing lapwatch event logs.
//
// Event logs are created by running lapwatch with the -event-log flag.
//
// Usage:
//
//	lapwatch-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	lapwatch-log view session.tlog
//
//	# View only rejected countdown operations
//	lapwatch-log view -component countdown -category error session.tlog
//
//	# Export to CSV
//	lapwatch-log export -format csv -o session.csv session.tlog
//
//	# Keep one stopwatch's events
//	lapwatch-log filter -instance-id 0f4c2a9e-... -o stopwatch.tlog session.tlog
//
//	# Show statistics
//	lapwatch-log stats session.tlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lapwatch/lapwatch-go/cmd/lapwatch-log/commands"
)

const usage = `lapwatch-log - lapwatch Event Log Analyzer

Usage:
  lapwatch-log <command> [flags] <file.tlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "lapwatch-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseArgs parses fs and returns the log file path.
func parseArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func newFlagSet(name, header string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, header)
		fs.PrintDefaults()
	}
	return fs
}

func runView(args []string) {
	fs := newFlagSet("view", `lapwatch-log view - View log file in human-readable format

Usage:
  lapwatch-log view [flags] <file.tlog>

Flags:
`)
	component := fs.String("component", "", "Filter by component (stopwatch, countdown)")
	category := fs.String("category", "", "Filter by category (state, error)")
	operation := fs.String("op", "", "Filter by operation (start, suspend, resume, stop, reset, set, expire, cancel)")

	path := parseArgs(fs, args)

	var filter commands.ViewFilter

	if *component != "" {
		c, err := commands.ParseComponentFlag(*component)
		if err != nil {
			fail(err)
		}
		filter.Component = &c
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if *operation != "" {
		op, err := commands.ParseOperationFlag(*operation)
		if err != nil {
			fail(err)
		}
		filter.Operation = &op
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", `lapwatch-log export - Export log file to JSONL or CSV format

Usage:
  lapwatch-log export [flags] <file.tlog>

Flags:
`)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parseArgs(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", `lapwatch-log filter - Filter log file and write to new file

Usage:
  lapwatch-log filter [flags] <file.tlog>

Flags:
`)
	output := fs.String("o", "", "Output file (required)")
	instanceID := fs.String("instance-id", "", "Filter by instance ID")
	component := fs.String("component", "", "Filter by component (stopwatch, countdown)")
	category := fs.String("category", "", "Filter by category (state, error)")
	operation := fs.String("op", "", "Filter by operation")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	path := parseArgs(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:     *output,
		InstanceID: *instanceID,
		Component:  *component,
		Category:   *category,
		Operation:  *operation,
		TimeStart:  *timeStart,
		TimeEnd:    *timeEnd,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", `lapwatch-log stats - Show statistics about the log file

Usage:
  lapwatch-log stats <file.tlog>

`)
	path := parseArgs(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
