package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var inventoryRebuildCmd = &cobra.Command{
	Use:   "inventory:rebuild",
	Short: "Rebuild the unit-load inventory snapshot of a company from picking events",
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := OpenDeps()
		if err != nil {
			fmt.Println(err)
			return
		}
		c, err := Company(deps)
		if err != nil {
			fmt.Println(err)
			return
		}
		start := time.Now()
		n, err := deps.Inventory.Rebuild(context.Background(), c)
		if err != nil {
			fmt.Printf("Rebuild failed: %v\n", err)
			return
		}
		fmt.Printf("Inventory snapshot for %s: %d rows in %s\n", c, n, time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	inventoryRebuildCmd.Flags().StringVarP(&companyFlag, "company", "c", "", "Company key")
	rootCmd.AddCommand(inventoryRebuildCmd)
}
