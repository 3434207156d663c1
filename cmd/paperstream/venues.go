package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List the venues the configured sources can enumerate",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := newRegistry(cfg)
		for _, adapter := range registry.All() {
			desc := adapter.Descriptor()
			if len(desc.Venues) == 0 {
				continue
			}
			for _, venue := range desc.Venues {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", venue, desc.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(venuesCmd)
}
