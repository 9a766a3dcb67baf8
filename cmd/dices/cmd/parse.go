package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zannabianca1997/dices/internal/diagnostics"
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parser"
)

var parseExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a dices expression and dump its AST",
	Long:  `Parse dices source into an expression tree and print its Go representation, without evaluating it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseExpr, "eval", "e", "", "parse this inline expression instead of reading from a file")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(parseExpr, args)
	if err != nil {
		return err
	}

	ex, errs := parser.ParseExpressionErrors(lexer.New(source))
	if len(errs) > 0 {
		out := make([]*diagnostics.SourceError, len(errs))
		for i, e := range errs {
			out[i] = diagnostics.FromParseError(e, source, filename)
		}
		fmt.Println(diagnostics.FormatErrors(out, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Printf("%#v\n", ex)
	return nil
}
