package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mapstack/app/backend"
	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/state"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product catalog",
}

var (
	listFilter string
	listSearch string
	listPage   int

	formFlags  backend.ProductForm
	imagePaths []string
	keepImages []string
)

func init() {
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsEditCmd)
	productsCmd.AddCommand(productsRmCmd)
	productsCmd.AddCommand(productsRmImageCmd)

	productsListCmd.Flags().StringVar(&listFilter, "filter", "all", "stock filter: all | low | out")
	productsListCmd.Flags().StringVar(&listSearch, "search", "", "search query (title tokens and barcode)")
	productsListCmd.Flags().IntVar(&listPage, "page", 1, "page number (50 per page)")

	for _, cmd := range []*cobra.Command{productsAddCmd, productsEditCmd} {
		cmd.Flags().StringVar(&formFlags.Title, "title", "", "product title")
		cmd.Flags().StringVar(&formFlags.Description, "description", "", "description")
		cmd.Flags().StringVar(&formFlags.Category, "category", "", "category")
		cmd.Flags().Float64Var(&formFlags.Price, "price", 0, "sale price")
		cmd.Flags().Float64Var(&formFlags.Cost, "cost", 0, "unit cost")
		cmd.Flags().StringVar(&formFlags.SKU, "sku", "", "SKU (omitted when empty)")
		cmd.Flags().StringVar(&formFlags.Barcode, "barcode", "", "barcode (omitted when empty)")
		cmd.Flags().BoolVar(&formFlags.TrackQuantity, "track", false, "track stock quantity")
		cmd.Flags().IntVar(&formFlags.Quantity, "quantity", 0, "stock on hand")
		cmd.Flags().IntVar(&formFlags.LowStock, "low-stock", 0, "low stock threshold")
		cmd.Flags().StringVar(&formFlags.Supplier, "supplier", "", "supplier")
		cmd.Flags().StringVar(&formFlags.InventoryLocation, "location", "", "inventory location")
		cmd.Flags().StringSliceVar(&imagePaths, "image", nil, "image file to upload (repeatable, max 5)")
	}
	productsEditCmd.Flags().StringSliceVar(&keepImages, "keep-image", nil, "stored image name to retain (repeatable)")
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products with filter, search, and pagination",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		app.store.SetFilter(state.Filter(listFilter))
		app.store.SetSearchQuery(listSearch)
		app.store.SetPage(listPage)

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPRICE\tQTY\tSTATUS")
		for _, p := range app.store.VisibleProducts() {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\n",
				p.ID, p.Title, p.Price, p.Quantity, models.StockStatusOf(p))
		}
		w.Flush()

		fmt.Printf("Page %d of %d\n", app.store.Page(), app.store.TotalPages())
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product to the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		images, err := loadImages(imagePaths)
		if err != nil {
			return err
		}
		return app.catalog.Create(formFlags, images)
	},
}

var productsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		images, err := loadImages(imagePaths)
		if err != nil {
			return err
		}
		return app.catalog.Update(args[0], formFlags, images, keepImages)
	},
}

var productsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete one or more products (asks for confirmation)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		return app.catalog.DeleteMany(args)
	},
}

var productsRmImageCmd = &cobra.Command{
	Use:   "rm-image <id> <imageName>",
	Short: "Remove one image from a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		return app.catalog.DeleteImage(args[0], args[1])
	},
}

func loadImages(paths []string) ([]backend.Upload, error) {
	var uploads []backend.Upload
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", path, err)
		}
		uploads = append(uploads, backend.Upload{
			Filename: filepath.Base(path),
			Content:  content,
		})
	}
	return uploads, nil
}
