package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/interp"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive read-eval-print loop",
	Long: `Start the nanopy REPL: read one command at a time, evaluate it
against a persistent environment, and print its result.

Type exit() to quit.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	return REPL(os.Stdin, os.Stdout)
}

// REPL drives one interactive session: it reads a logical line,
// evaluates it, prints the result or a reported error, and repeats
// until the input reaches EOF or the user types the exit() sentinel.
func REPL(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	reporter := errors.NewReporter(out)
	cfg := limits.Default()
	env := interp.NewEnvironment(cfg)

	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "exit()" {
			return nil
		}
		if line == "" {
			continue
		}

		value, err := EvalIn(line, cfg, env)
		if err != nil {
			if perr, ok := err.(*errors.Error); ok {
				reporter.Report(perr)
			} else {
				reporter.Fatal(err.Error())
			}
			continue
		}
		if text := value.String(); text != "" {
			fmt.Fprintln(out, text)
		}
	}
}
