package cmd

import (
	"fmt"
	"os"

	"github.com/isaacjoffe/nanopy/internal/ast"
	"github.com/isaacjoffe/nanopy/internal/lexer"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseEvalExpr string
	parseTrace    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a command and print its AST",
	Long: `Parse nanopy source and display the Abstract Syntax Tree.

Examples:
  nanopy parse -e "x = 5; x += 3; x"
  nanopy parse script.npy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseTrace, "trace", false, "write one line per production entered to stderr")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, _, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	cfg := limits.Default().ScaledTo(len(input))
	info, err := lexer.New(input, lexer.WithLimits(cfg)).Scan()
	if err != nil {
		return err
	}
	arena := ast.NewArena(cfg.ArenaCapacity)
	var opts []parser.Option
	if parseTrace {
		opts = append(opts, parser.WithTracing(os.Stderr))
	}
	root, err := parser.New(info, arena, cfg, opts...).Parse()
	if err != nil {
		return err
	}
	fmt.Print(ast.Print(arena, root))
	return nil
}
