package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"problemsolving.GO/service/shortfall"
)

var (
	basketFlag    string
	basketsFlag   string
	createdByFlag string
)

var missionsPreviewCmd = &cobra.Command{
	Use:   "missions:preview",
	Short: "Show what is missing from a basket without creating a mission",
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
		p, err := deps.Missions.Preview(context.Background(), c, strings.TrimSpace(basketFlag))
		if err != nil {
			fmt.Printf("Preview failed: %v\n", err)
			return
		}
		fmt.Printf("Basket %s: %d shipped rows, %d missing lines, %s units missing\n",
			p.BasketCode, p.ShippedRows, len(p.Lines), p.TotalMissing.String())
		printLines(p.Lines)
	},
}

var missionsCreateCmd = &cobra.Command{
	Use:   "missions:create",
	Short: "Create a search mission for the missing items of a basket",
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
		res, err := deps.Missions.Create(context.Background(), c, strings.TrimSpace(basketFlag), createdByFlag)
		if err != nil {
			fmt.Printf("Create failed: %v\n", err)
			return
		}
		fmt.Println(res.Message)
		if res.MissionCreated {
			fmt.Printf("Items: %d  Positions: %d\n", res.ItemsCreated, res.PositionsCreated)
		}
		for _, n := range res.Notes {
			fmt.Printf("  [note] %s\n", n)
		}
	},
}

var missionsBatchCmd = &cobra.Command{
	Use:   "missions:batch",
	Short: "Create one mission covering the missing items of several baskets",
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
		res, err := deps.Missions.CreateBatch(context.Background(), c, strings.Split(basketsFlag, ","), createdByFlag)
		if res != nil {
			for _, b := range res.Baskets {
				line := fmt.Sprintf("  %-20s %-16s %d", b.BasketCode, b.Status, b.MissingItems)
				if b.Message != "" {
					line += "  " + b.Message
				}
				fmt.Println(line)
			}
			fmt.Printf("Processed: %d  Shortfall: %d  Nothing missing: %d  Errors: %d\n",
				res.Processed, res.WithShortfall, res.NothingMissing, res.Errored)
			fmt.Println(res.Message)
		}
		if err != nil {
			fmt.Printf("Batch failed: %v\n", err)
		}
	},
}

func printLines(lines []shortfall.Line) {
	for _, l := range lines {
		fmt.Printf("  %-12s %-10d %-20s ordered=%s shipped=%s missing=%s\n",
			l.OrderNumber, l.PickListID, l.SKU, l.QtyOrdered.String(), l.QtyShipped.String(), l.QtyMissing.String())
	}
}

func init() {
	for _, c := range []*cobra.Command{missionsPreviewCmd, missionsCreateCmd} {
		c.Flags().StringVarP(&companyFlag, "company", "c", "", "Company key")
		c.Flags().StringVarP(&basketFlag, "basket", "b", "", "Basket code (required)")
		c.MarkFlagRequired("basket")
	}
	missionsCreateCmd.Flags().StringVar(&createdByFlag, "created-by", "cli", "Operator recorded on the mission")

	missionsBatchCmd.Flags().StringVarP(&companyFlag, "company", "c", "", "Company key")
	missionsBatchCmd.Flags().StringVar(&basketsFlag, "baskets", "", "Comma separated basket codes (required)")
	missionsBatchCmd.Flags().StringVar(&createdByFlag, "created-by", "cli", "Operator recorded on the mission")
	missionsBatchCmd.MarkFlagRequired("baskets")

	rootCmd.AddCommand(missionsPreviewCmd, missionsCreateCmd, missionsBatchCmd)
}
