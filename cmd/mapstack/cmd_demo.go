package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/config"
	"github.com/shashiranjanraj/mapstack/internal/demoserver"
)

var demoAddr string

func init() {
	demoCmd.Flags().StringVar(&demoAddr, "addr", ":3001", "listen address")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an in-process demo backend with sample data",
	Long: `Runs a local MapStack backend double with a small sample catalog.
Point the client at it with --api-url or API_URL, then log in as
` + demoserver.DemoEmail + ` / ` + demoserver.DemoPassword + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		srv := demoserver.New(sampleCatalog()...)
		fmt.Printf("Demo backend on %s (login: %s / %s)\n", demoAddr, demoserver.DemoEmail, demoserver.DemoPassword)
		return srv.ListenAndServe(demoAddr)
	},
}

func sampleCatalog() []models.Product {
	return []models.Product{
		{Title: "Shirt - Red Large", Category: "Apparel", Price: 19.99, Cost: 7.50, Barcode: "4006381333931", TrackQuantity: true, Quantity: 24, LowStock: 5},
		{Title: "Shirt - Blue Small", Category: "Apparel", Price: 19.99, Cost: 7.50, Barcode: "4006381333948", TrackQuantity: true, Quantity: 3, LowStock: 5},
		{Title: "Ceramic Mug", Category: "Kitchen", Price: 8.50, Cost: 2.10, TrackQuantity: true, Quantity: 0, LowStock: 10},
		{Title: "Gift Card", Category: "Misc", Price: 25.00, TrackQuantity: false},
	}
}
