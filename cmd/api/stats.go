package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"renewalboard/manager"
	"renewalboard/performance"
)

var statsPeriod string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print team statistics for a period as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := performance.ParsePeriod(statsPeriod)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.managers.List(cmd.Context(), manager.ListFilter{})
		if err != nil {
			return err
		}
		stats, err := performance.ComputeTeamStats(recs, period, a.goals, a.strategy)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a.server().toTeamStatsResponse(stats))
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsPeriod, "period", "quarter", "month1|month2|month3|quarter (or feb|mar|abr|tri)")
	rootCmd.AddCommand(statsCmd)
}
