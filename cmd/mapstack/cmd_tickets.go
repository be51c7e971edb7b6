package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mapstack/app/models"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Manage sales tickets",
}

var (
	ticketIDFlag string
	qtyFlag      int
)

func init() {
	ticketCmd.AddCommand(ticketNewCmd)
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketAddCmd)
	ticketCmd.AddCommand(ticketQtyCmd)
	ticketCmd.AddCommand(ticketRmCmd)
	ticketCmd.AddCommand(ticketScanCmd)
	ticketCmd.AddCommand(ticketDeductCmd)
	ticketCmd.AddCommand(ticketCloseCmd)
	ticketCmd.AddCommand(ticketClearCmd)
	ticketCmd.AddCommand(ticketHistoryCmd)

	ticketCmd.PersistentFlags().StringVar(&ticketIDFlag, "ticket", "", "ticket id (defaults to the active ticket)")
	ticketAddCmd.Flags().IntVar(&qtyFlag, "qty", 1, "quantity to add")
}

// resolveTicket picks the --ticket flag or falls back to the active ticket.
func resolveTicket(app *application) (models.Ticket, error) {
	if ticketIDFlag != "" {
		if t, ok := app.store.Ticket(ticketIDFlag); ok {
			return t, nil
		}
		return models.Ticket{}, fmt.Errorf("ticket %s not found", ticketIDFlag)
	}
	if t, ok := app.store.ActiveTicket(); ok {
		return t, nil
	}
	// Without persisted view state, the newest active ticket is the most
	// useful default for a CLI session.
	tickets := app.store.Tickets()
	for i := len(tickets) - 1; i >= 0; i-- {
		if tickets[i].Active() {
			return tickets[i], nil
		}
	}
	return models.Ticket{}, fmt.Errorf("no active ticket, run `mapstack ticket new`")
}

var ticketNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new empty ticket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		_, err = app.tickets.Create()
		return err
	},
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tickets with their items and totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		for _, t := range app.store.Tickets() {
			printTicket(app, t)
		}
		return nil
	},
}

var ticketAddCmd = &cobra.Command{
	Use:   "add <productId>",
	Short: "Add a product to the ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		ticket, err := resolveTicket(app)
		if err != nil {
			return err
		}
		return app.tickets.AddItem(ticket.ID, args[0], qtyFlag)
	},
}

var ticketQtyCmd = &cobra.Command{
	Use:   "qty <productId> <delta>",
	Short: "Adjust an item's quantity by a signed delta (0 or below removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		ticket, err := resolveTicket(app)
		if err != nil {
			return err
		}

		var delta int
		if _, err := fmt.Sscanf(args[1], "%d", &delta); err != nil {
			return fmt.Errorf("delta must be an integer: %q", args[1])
		}
		return app.tickets.UpdateItemQuantity(ticket.ID, args[0], delta)
	},
}

var ticketRmCmd = &cobra.Command{
	Use:   "rm <productId>...",
	Short: "Remove items from the ticket",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		ticket, err := resolveTicket(app)
		if err != nil {
			return err
		}
		return app.tickets.RemoveSelectedItems(ticket.ID, args)
	},
}

var ticketScanCmd = &cobra.Command{
	Use:   "scan <barcode>",
	Short: "Add one unit by barcode to the active ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		if ticket, err := resolveTicket(app); err == nil {
			app.store.SetActiveTicket(ticket.ID)
		}
		return app.tickets.ScanBarcode(args[0])
	},
}

var ticketDeductCmd = &cobra.Command{
	Use:   "deduct",
	Short: "Commit the ticket's items against inventory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		ticket, err := resolveTicket(app)
		if err != nil {
			return err
		}
		return app.tickets.Deduct(ticket.ID)
	},
}

var ticketCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Discard the ticket without deducting stock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		ticket, err := resolveTicket(app)
		if err != nil {
			return err
		}
		return app.tickets.Close(ticket.ID)
	},
}

var ticketClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all deducted tickets (asks for confirmation)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		return app.tickets.ClearDeducted()
	},
}

var ticketHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show deducted tickets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSession()
		if err != nil {
			return err
		}
		defer app.shutdown()

		history := app.tickets.History()
		if len(history) == 0 {
			fmt.Println("No deducted tickets")
			return nil
		}
		for _, t := range history {
			printTicket(app, t)
		}
		return nil
	},
}

func printTicket(app *application, t models.Ticket) {
	fmt.Printf("Ticket #%d [%s] %s\n", t.TicketNumber, t.Status, t.ID)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, it := range t.Items {
		stock := ""
		if t.Active() {
			stock = app.tickets.StockLine(it.ProductID, it.Quantity)
		}
		fmt.Fprintf(w, "  %s\tx %d\t%.2f\t%s\n", it.Title, it.Quantity, it.Price, stock)
	}
	w.Flush()

	fmt.Printf("  Total: %.2f\n", app.tickets.Total(t.ID))
}
