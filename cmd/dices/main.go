// Command dices is the CLI front-end for the dices expression language.
package main

import (
	"fmt"
	"os"

	"github.com/zannabianca1997/dices/cmd/dices/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
