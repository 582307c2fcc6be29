package main

import (
	"fmt"

	"github.com/cuemby/rtsim/pkg/registry"
	"github.com/spf13/cobra"
)

var schedulersCmd = &cobra.Command{
	Use:   "schedulers",
	Short: "List the available schedulers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Default()
		w := cmd.OutOrStdout()

		fmt.Fprintf(w, "%-10s %-10s %s\n", "KEY", "STATUS", "DESCRIPTION")
		for _, key := range reg.Keys() {
			desc, available := reg.Describe(key)
			status := "available"
			if !available {
				status = "planned"
			}
			fmt.Fprintf(w, "%-10s %-10s %s\n", key, status, desc)
		}
		return nil
	},
}
