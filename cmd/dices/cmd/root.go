// Package cmd implements the dices CLI, grounded on the teacher's
// cmd/dwscript/cmd package: a cobra root command with persistent flags
// plus one file per subcommand.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/pkg/engine"
)

var (
	// Version information (set by build flags, per the teacher's
	// cmd/dwscript/cmd/root.go convention).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	seed    int64
	seedSet bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "dices",
	Short: "dices expression evaluator",
	Long: `dices is a small dice-algebra expression language and interpreter.

It evaluates expressions combining arithmetic, dice rolls (NdM, keep/reroll
filters), lists, maps, and closures over a deterministic PRNG.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "seed the PRNG for reproducible rolls (default: system entropy)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print the result using the JSON bridge (to_json) instead of its textual form")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		seedSet = cmd.Flags().Changed("seed")
	}
}

// newEngine builds a fresh Engine honoring --seed.
func newEngine() *engine.Engine[struct{}] {
	var opts []engine.Option[struct{}]
	if seedSet {
		opts = append(opts, engine.WithRNG[struct{}](scope.NewRNG(seed)))
	}
	return engine.New[struct{}](struct{}{}, opts...)
}
