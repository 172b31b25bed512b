package main

import (
	"os"
	"path/filepath"

	"github.com/beatoz/beatoz-curve/cmd/commands"
	"github.com/tendermint/tendermint/libs/cli"
)

func main() {
	commands.RootCmd.AddCommand(
		commands.NewPriceCmd(),
		commands.NewQuoteCmd(),
		commands.NewTableCmd(),
		commands.NewCalibrateCmd(),
		commands.NewPoolCmd(),
		commands.VersionCmd,
	)

	executor := cli.PrepareBaseCmd(commands.RootCmd, "CURVE", filepath.Join(os.ExpandEnv("$HOME"), ".curve"))
	if err := executor.Execute(); err != nil {
		panic(err)
	}
}
