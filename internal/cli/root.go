package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "stint",
	Short:   "Measure how long commands and functions take",
	Version: version,
	Long: `Stint times callables over repeated runs and reports wall-clock
statistics: mean, median, min, max, standard deviation and high
percentiles. Runs can be dispatched sequentially, across a goroutine
pool, or across worker subprocesses.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(execCmd)
}
