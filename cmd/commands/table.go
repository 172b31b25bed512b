package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/beatoz/beatoz-curve/curve"
	"github.com/spf13/cobra"
)

var (
	tableOut   = "discrete_tables.bin.gz"
	tableCount = curve.DiscretePricingTableLen
	tableStep  = curve.DiscretePricingStepSize
	tableFile  = ""
)

func NewTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Generate or verify the discrete pricing tables",
	}

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate pricing tables from the default curve",
		RunE:  tableGen,
	}
	genCmd.Flags().StringVar(&tableOut, "out", tableOut, "output file")
	genCmd.Flags().IntVar(&tableCount, "count", tableCount, "the number of steps")
	genCmd.Flags().Uint64Var(&tableStep, "step", tableStep, "whole tokens per step")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every table entry against the default curve",
		RunE:  tableVerify,
	}
	verifyCmd.Flags().StringVar(&tableFile, "file", tableFile, "tables file to verify (default: --tables or the embedded tables)")

	cmd.AddCommand(genCmd, verifyCmd)
	return cmd
}

func tableGen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(logger)
	defer cancel()

	start := time.Now()
	tables, xerr := curve.GenerateTables(ctx, curve.DefaultContinuousCurve(), tableStep, tableCount, rootConfig.Workers)
	if xerr != nil {
		return xerr
	}
	logger.Info("tables generated", "steps", tables.Len(), "elapsed", time.Since(start))

	f, err := os.Create(tableOut)
	if err != nil {
		return err
	}
	if xerr := curve.WriteTables(f, tables); xerr != nil {
		_ = f.Close()
		return xerr
	}
	if err := f.Close(); err != nil {
		return err
	}

	ret := &struct {
		File     string `json:"file"`
		Steps    int    `json:"steps"`
		StepSize uint64 `json:"step_size"`
	}{tableOut, tables.Len(), tables.StepSize()}
	return printResult(cmd, ret, func(w io.Writer) {
		fmt.Fprintf(w, "%d steps of %d tokens written to %s\n", ret.Steps, ret.StepSize, ret.File)
	})
}

func tableVerify(cmd *cobra.Command, args []string) error {
	var tables *curve.Tables
	if tableFile != "" {
		_tables, xerr := curve.LoadTablesFile(tableFile)
		if xerr != nil {
			return xerr
		}
		tables = _tables
	} else {
		_tables, err := loadTables()
		if err != nil {
			return err
		}
		tables = _tables
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	start := time.Now()
	if xerr := curve.VerifyTables(ctx, tables, curve.DefaultContinuousCurve(), rootConfig.Workers); xerr != nil {
		return xerr
	}
	logger.Info("tables verified", "steps", tables.Len(), "elapsed", time.Since(start))

	ret := &struct {
		Steps    int    `json:"steps"`
		StepSize uint64 `json:"step_size"`
		Max      uint64 `json:"max_supply"`
	}{tables.Len(), tables.StepSize(), tables.MaxSupply()}
	return printResult(cmd, ret, func(w io.Writer) {
		fmt.Fprintf(w, "OK: %d steps of %d tokens up to supply %d\n", ret.Steps, ret.StepSize, ret.Max)
	})
}
