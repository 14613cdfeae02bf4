package cmd

import (
	"fmt"
	"os"

	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/ast"
	"github.com/isaacjoffe/nanopy/internal/interp"
	"github.com/isaacjoffe/nanopy/internal/lexer"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/parser"
	"github.com/isaacjoffe/nanopy/internal/values"
	"github.com/spf13/cobra"
)

var runEvalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a command and print its result",
	Long: `Execute nanopy source from a file or inline expression and print
the value of its final top-level statement.

Examples:
  nanopy run -e "1 + 2 * 3"
  nanopy run script.npy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runRun(cmd *cobra.Command, args []string) error {
	input, _, err := readSource(runEvalExpr, args)
	if err != nil {
		return err
	}

	// File input is not bound by the REPL's one-line budget; grow every
	// per-command capacity in proportion to the source size.
	value, evalErr := Eval(input, limits.Default().ScaledTo(len(input)))
	if evalErr != nil {
		reporter := errors.NewReporter(os.Stderr)
		if perr, ok := evalErr.(*errors.Error); ok {
			reporter.Report(perr)
		} else {
			reporter.Fatal(evalErr.Error())
		}
		return fmt.Errorf("execution failed")
	}
	if text := value.String(); text != "" {
		fmt.Println(text)
	}
	return nil
}

// Eval lexes, parses, and evaluates src against a fresh environment,
// the one-shot form used by `run`, where no later command will observe
// the environment again.
func Eval(src string, cfg limits.Config) (values.Value, error) {
	return EvalIn(src, cfg, interp.NewEnvironment(cfg))
}

// EvalIn lexes, parses, and evaluates src against env, which the
// caller owns and may reuse across cycles, which is what the REPL needs:
// the environment outlives each command while the token record and
// node arena are strictly per-cycle.
func EvalIn(src string, cfg limits.Config, env *interp.Environment) (values.Value, error) {
	info, err := lexer.New(src, lexer.WithLimits(cfg)).Scan()
	if err != nil {
		return values.None, err
	}
	arena := ast.NewArena(cfg.ArenaCapacity)
	root, err := parser.New(info, arena, cfg).Parse()
	if err != nil {
		return values.None, err
	}
	return interp.New(arena, env).Eval(root)
}
