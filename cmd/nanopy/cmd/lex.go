package cmd

import (
	"fmt"
	"os"

	"github.com/isaacjoffe/nanopy/internal/lexer"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEvalExpr string
	lexTrace    bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a command and print the resulting tokens",
	Long: `Tokenize a nanopy command and print the token stream.

Examples:
  nanopy lex -e "1 + 2 * 3"
  nanopy lex script.npy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexTrace, "trace", false, "write one line per scanned token to stderr")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, _, err := readSource(lexEvalExpr, args)
	if err != nil {
		return err
	}

	opts := []lexer.Option{lexer.WithLimits(limits.Default().ScaledTo(len(input)))}
	if lexTrace {
		opts = append(opts, lexer.WithTracing(os.Stderr))
	}
	info, err := lexer.New(input, opts...).Scan()
	if err != nil {
		return err
	}
	for i, tok := range info.Tokens {
		fmt.Printf("%3d: %-10s", i, tok.Kind)
		switch tok.Kind {
		case token.STRING:
			fmt.Printf(" %q", info.String(tok.Lit))
		case token.NUMBER:
			fmt.Printf(" %d", info.Number(tok.Lit))
		case token.IDENT:
			fmt.Printf(" %s", info.Identifier(tok.Lit))
		}
		fmt.Println()
	}
	return nil
}
