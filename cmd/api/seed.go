package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the store and load the seed dataset if it is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *cfg
		c.Seed.Enabled = false

		a, err := newApp(cmd.Context(), &c)
		if err != nil {
			return err
		}
		defer a.Close()

		path := seedPath
		if path == "" {
			path = cfg.Seed.Path
		}
		n, err := a.seed(cmd.Context(), path)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d managers\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPath, "file", "", "seed YAML file (default embedded Q1 dataset)")
	rootCmd.AddCommand(seedCmd)
}
