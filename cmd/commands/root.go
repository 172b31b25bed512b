package commands

import (
	"fmt"
	"os"

	cfg "github.com/beatoz/beatoz-curve/cmd/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/cli"
	tmflags "github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	rootConfig = cfg.DefaultConfig()
	logger     = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

func registerFlagsRootCmd(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log_level", rootConfig.LogLevel, "log level")
	cmd.PersistentFlags().String(
		"db_backend",
		rootConfig.DBBackend,
		"database backend: goleveldb | memdb")
	cmd.PersistentFlags().String(
		"db_dir",
		rootConfig.DBPath,
		"database directory")
	cmd.PersistentFlags().String(
		"tables",
		rootConfig.TablesPath,
		"discrete pricing tables file.\n"+
			"if it is empty, the tables embedded in the binary are used.")
	cmd.PersistentFlags().Int(
		"workers",
		rootConfig.Workers,
		"the number of goroutines used to generate or verify pricing tables")
	cmd.PersistentFlags().Bool("json", rootConfig.JSONOutput, "print results as JSON")
	cmd.PersistentFlags().Bool("fixed", rootConfig.FixedInput, "parse amounts as 7-digit fixed-point numbers")
}

// ParseConfig retrieves the default environment configuration,
// sets up the curvectl root and ensures that the root exists
func ParseConfig() (*cfg.Config, error) {
	conf := cfg.DefaultConfig()
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}
	conf.SetRoot(conf.RootDir)
	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %v", err)
	}
	return conf, nil
}

// RootCmd is the root command for curvectl.
var RootCmd = &cobra.Command{
	Use:   "curvectl",
	Short: "Bonding curve pricing and settlement",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if cmd.Name() == VersionCmd.Name() {
			return nil
		}

		rootConfig, err = ParseConfig()
		if err != nil {
			return err
		}

		logger, err = tmflags.ParseLogLevel(rootConfig.LogLevel, logger, cfg.DefaultLogLevel)
		if err != nil {
			return err
		}
		if viper.GetBool(cli.TraceFlag) {
			logger = log.NewTracingLogger(logger)
		}
		logger = logger.With("module", "main")
		return nil
	},
}
