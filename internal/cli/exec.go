package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/stintio/stint"
	"github.com/stintio/stint/stats"
)

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- command [args...]",
	Short: "Time an external command over repeated runs",
	Long: `Execute a command a configurable number of times and report timing
statistics. The command's own output goes to stderr so it never mixes
with the report.

Sequential, 10 runs:
  stint exec -n 10 -- sleep 0.1

Concurrent runs with the full report:
  stint exec -n 20 --concurrent --verbose -- curl -s https://example.com

Machine-readable output:
  stint exec -n 10 --json -- ./bench
  stint exec -n 10 --select mean -- ./bench`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExec(cmd, args)
	},
}

func init() {
	execCmd.Flags().IntP("runs", "n", 1, "number of measured executions")
	execCmd.Flags().BoolP("concurrent", "c", false, "dispatch runs in parallel")
	execCmd.Flags().String("mode", "auto", "concurrency backend: auto, multithreading, none")
	execCmd.Flags().BoolP("verbose", "v", false, "print the full statistics report")
	execCmd.Flags().Bool("json", false, "print the statistics record as JSON instead of text")
	execCmd.Flags().String("select", "", "print a single field of the JSON record (e.g. mean, p99)")

	stint.RegisterTask("stint.shell", runShell)
}

// runShell executes one measured run of the command under test. It is
// registered as a task so the worker-subprocess backend can dispatch it;
// command output is routed to stderr because a worker's stdout carries the
// reply stream.
func runShell(argv []string) error {
	c := exec.Command(argv[0], argv[1:]...)
	c.Stdout = os.Stderr
	c.Stderr = os.Stderr
	return c.Run()
}

func runExec(cmd *cobra.Command, args []string) error {
	runs, _ := cmd.Flags().GetInt("runs")
	concurrent, _ := cmd.Flags().GetBool("concurrent")
	mode, _ := cmd.Flags().GetString("mode")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOut, _ := cmd.Flags().GetBool("json")
	selectPath, _ := cmd.Flags().GetString("select")

	var captured stats.Record
	opts := []stint.Option{
		stint.Runs(runs),
		stint.ConcurrencyMode(stint.Mode(mode)),
		stint.OnRecord(func(r stats.Record) { captured = r }),
		stint.Output(cmd.OutOrStdout()),
	}
	if concurrent {
		opts = append(opts, stint.Concurrent())
	}
	if verbose {
		opts = append(opts, stint.Verbose())
	}
	if jsonOut || selectPath != "" {
		// Structured output replaces the text report.
		opts = append(opts, stint.Output(io.Discard))
	}

	timed, err := stint.Wrap(runShell, opts...)
	if err != nil {
		return err
	}
	if runErr := timed(args); runErr != nil {
		return fmt.Errorf("command failed: %w", runErr)
	}

	if jsonOut || selectPath != "" {
		raw, err := json.Marshal(captured)
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
		out := cmd.OutOrStdout()
		if selectPath != "" {
			field := gjson.GetBytes(raw, selectPath)
			if !field.Exists() {
				return fmt.Errorf("no such field %q in record", selectPath)
			}
			fmt.Fprintln(out, field.String())
			return nil
		}
		fmt.Fprintln(out, string(raw))
	}
	return nil
}
