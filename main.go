package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/cowsbulls/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cowsbulls",
		Short: "Two-player Cows & Bulls",
		Long: `Cows & Bulls: each player picks a secret of 4 unique digits and the two
take turns guessing each other's code. Bulls are right digits in the right
place, cows are right digits in the wrong place.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.PlayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
