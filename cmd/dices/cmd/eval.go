package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zannabianca1997/dices/internal/diagnostics"
	"github.com/zannabianca1997/dices/internal/serialize"
	"github.com/zannabianca1997/dices/internal/value"
)

var evalExpr string

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate a dices expression",
	Long: `Evaluate a dices expression from a file or from an inline string.

Examples:
  dices eval -e "3 d 6 + 2"
  dices eval script.dices
  dices eval --seed 42 -e "3 d 6"
  dices eval --json -e "<| total: 3 d 6 |>"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate this inline expression instead of reading from a file")
}

func runEval(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	e := newEngine()
	v, err := e.EvalString(source)
	if err != nil {
		printEvalError(err, source, filename)
		return fmt.Errorf("evaluation failed")
	}
	return printResult(v)
}

// readSource resolves the eval and parse commands' shared input
// convention: an inline expression via -e, or a single file argument.
// Stdin is not read; with neither, it returns an error.
func readSource(inline string, args []string) (source, filename string, err error) {
	if inline != "" {
		return inline, "<eval>", nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for an inline expression")
}

// printEvalError prints a parse error with source context if the engine's
// error unwraps to one or more *diagnostics.SourceError, otherwise the
// plain error message (an evaluation-time SolveError has no source
// position to show).
func printEvalError(err error, source, filename string) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			if se, ok := inner.(*diagnostics.SourceError); ok {
				fmt.Fprintln(os.Stderr, se.Format(true))
				continue
			}
			fmt.Fprintln(os.Stderr, inner)
		}
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func printResult(v value.Value) error {
	if jsonOut {
		data, err := serialize.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode result as JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(v.String())
	return nil
}
