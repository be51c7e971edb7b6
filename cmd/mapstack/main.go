// Command mapstack is a terminal client for a MapStack POS backend: it
// manages the product catalog and sales tickets from the command line.
//
//	mapstack login admin@mapstack.local
//	mapstack products list --filter low --search "red shirt"
//	mapstack ticket new
//	mapstack ticket add <productId> --qty 2
//	mapstack ticket deduct
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mapstack/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var apiURLFlag string

var rootCmd = &cobra.Command{
	Use:   "mapstack",
	Short: "MapStack terminal POS and inventory client",
	Long:  "MapStack is a terminal client for a MapStack point-of-sale backend: product catalog management, sales tickets, and deduction against inventory.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if apiURLFlag != "" {
			config.Set("API_URL", apiURLFlag)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "backend base URL (overrides API_URL)")

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	// Catalog
	rootCmd.AddCommand(productsCmd)

	// Tickets
	rootCmd.AddCommand(ticketCmd)

	// Utilities
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
}
