package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zannabianca1997/dices/pkg/version"
)

// runtimeVersion is the {major, minor, patch, features} this binary
// advertises (§4.8), kept separate from the cobra-facing Version string
// above (which build flags overwrite with a release tag).
var runtimeVersion = version.New(1, 0, 0, "matchlang", "injected-intrinsics", "json-bridge")

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the CLI build version and the runtime's advertised {major, minor, patch, features}.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dices version %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Runtime:    %s\n", runtimeVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
