// Package custom holds deployment-specific extensions registered through the cmd, cron and api registries.
package custom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"problemsolving.GO/cmd"
	"problemsolving.GO/config"
)

var (
	fetchCompany string
	fetchBasket  string
	fetchFresh   bool
)

func init() {
	// shipments:fetch prints what the vendor API reports as shipped for a basket.
	fetchCmd := &cobra.Command{
		Use:   "shipments:fetch",
		Short: "Print the vendor shipment lines of a basket",
		Run: func(c *cobra.Command, args []string) {
			deps, err := cmd.OpenDeps()
			if err != nil {
				fmt.Println(err)
				return
			}
			company := config.NormalizeCompany(fetchCompany)
			if company == "" {
				company = deps.DefaultCompany
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if fetchFresh && deps.ShipmentCache != nil {
				if n, err := deps.ShipmentCache.Invalidate(ctx, company); err == nil && n > 0 {
					fmt.Printf("Dropped %d cached answers for %s\n", n, company)
				}
			}
			recs, err := deps.Shipments.Shipped(ctx, company, strings.TrimSpace(fetchBasket))
			if err != nil {
				fmt.Printf("Fetch failed: %v\n", err)
				return
			}
			for _, r := range recs {
				fmt.Printf("  %-12s %-10d %-20s %s\n", r.OrderNumber, r.PickListID, r.SKU, r.QtyShipped.String())
			}
			fmt.Printf("%d lines\n", len(recs))
		},
	}
	fetchCmd.Flags().StringVarP(&fetchCompany, "company", "c", "", "Company key")
	fetchCmd.Flags().StringVarP(&fetchBasket, "basket", "b", "", "Basket code (required)")
	fetchCmd.Flags().BoolVar(&fetchFresh, "fresh", false, "Drop cached answers of the company first")
	fetchCmd.MarkFlagRequired("basket")
	cmd.Register(fetchCmd)
}
