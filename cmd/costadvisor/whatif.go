package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
)

func newWhatIfCommand() *cobra.Command {
	var (
		in      prediction.WhatIfInput
		terrain string
	)

	cmd := &cobra.Command{
		Use:   "whatif",
		Short: "Run the local what-if estimator and print the estimate as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Terrain = project.Terrain(terrain)
			est, err := prediction.EstimateWhatIf(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(est)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&in.MaterialCost, "material", 0, "material cost")
	flags.Float64Var(&in.LaborCost, "labor", 0, "labor cost")
	flags.Float64Var(&in.VendorReliability, "reliability", prediction.DefaultVendorReliability, "vendor reliability from 0 to 10")
	flags.Float64Var(&in.HistoricalDelays, "delays", 0, "historical delay count")
	flags.StringVar(&terrain, "terrain", string(project.TerrainFlat), "flat, hilly, mountainous or urban")
	return cmd
}
