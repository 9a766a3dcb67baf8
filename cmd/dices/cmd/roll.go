package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rollCmd = &cobra.Command{
	Use:   "roll <expression>",
	Short: "Evaluate a dice expression and print the result",
	Long: `roll is eval's inline-only shorthand: the expression is a single
positional argument instead of needing -e, for quick use at a shell prompt.

Examples:
  dices roll "3 d 6"
  dices roll --seed 42 "4 d 6 kh 3"`,
	Args: cobra.ExactArgs(1),
	RunE: runRoll,
}

func init() {
	rootCmd.AddCommand(rollCmd)
}

func runRoll(cmd *cobra.Command, args []string) error {
	e := newEngine()
	v, err := e.EvalString(args[0])
	if err != nil {
		printEvalError(err, args[0], "<roll>")
		return fmt.Errorf("roll failed")
	}
	return printResult(v)
}
