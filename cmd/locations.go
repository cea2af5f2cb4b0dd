package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"problemsolving.GO/service/ingest"
)

var locationsFile string

var locationsImportCmd = &cobra.Command{
	Use:   "locations:import",
	Short: "Import a warehouse monitor CSV (DataOra;Pallet;Mag;Scaf;Col;Pia;Sc;Comp) into the location directory",
	Run: func(cmd *cobra.Command, args []string) {
		start := time.Now()
		f, err := os.Open(locationsFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			return
		}
		defer f.Close()

		rows, warnings, err := ingest.ParseLocationCSV(f)
		if err != nil {
			fmt.Printf("Failed to parse CSV: %v\n", err)
			return
		}

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
		res, err := deps.Ingest.ImportLocations(context.Background(), c, rows)
		if err != nil {
			fmt.Printf("Import failed: %v\n", err)
			return
		}

		for _, w := range append(warnings, res.Warnings...) {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Location Import ===
Company:    %s
CSV rows:   %d
Inserted:   %d
Updated:    %d
Stale:      %d
Skipped:    %d
Total time: %s
=======================
`, c, len(rows)+len(warnings), res.Inserted, res.Updated, res.Stale, res.Skipped+len(warnings),
			time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	locationsImportCmd.Flags().StringVarP(&locationsFile, "file", "f", "", "CSV file path (required)")
	locationsImportCmd.MarkFlagRequired("file")
	locationsImportCmd.Flags().StringVarP(&companyFlag, "company", "c", "", "Company key")
	rootCmd.AddCommand(locationsImportCmd)
}
