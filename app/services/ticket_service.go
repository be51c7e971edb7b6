package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/mapstack/app/backend"
	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/state"
	"github.com/shashiranjanraj/mapstack/pkg/collection"
	"github.com/shashiranjanraj/mapstack/pkg/database"
	"github.com/shashiranjanraj/mapstack/pkg/event"
	"github.com/shashiranjanraj/mapstack/pkg/logger"
	"github.com/shashiranjanraj/mapstack/pkg/metrics"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
	"github.com/shashiranjanraj/mapstack/pkg/storage"
	"github.com/shashiranjanraj/mapstack/pkg/workerpool"
)

// Ticket lifecycle errors. Callers branch with errors.Is; users see the
// notification text instead.
var (
	ErrTicketNotFound    = errors.New("services: ticket not found")
	ErrTicketFrozen      = errors.New("services: ticket already deducted")
	ErrNotTracked        = errors.New("services: product does not track quantity")
	ErrInsufficientStock = errors.New("services: insufficient available stock")
)

// TicketService manages in-progress sales carts: item mutations with
// reservation checks, deduction against inventory, and the deducted-ticket
// history. Every item mutation is synchronously mirrored to the backend;
// receipt archiving runs on the background pool.
type TicketService struct {
	store    *state.Store
	api      *backend.Client
	sessions *SessionService
	pool     *workerpool.Pool

	// RefreshCatalog is called after a deduct so displayed stock catches
	// up with the backend's decrements.
	RefreshCatalog func()

	// Confirm gates clearing the deducted-ticket history, same as product
	// deletion.
	Confirm func(prompt string) bool
}

// NewTicketService wires the ticket behaviour to the store and backend.
func NewTicketService(store *state.Store, api *backend.Client, sessions *SessionService, pool *workerpool.Pool) *TicketService {
	return &TicketService{
		store:          store,
		api:            api,
		sessions:       sessions,
		pool:           pool,
		RefreshCatalog: func() {},
		Confirm:        func(string) bool { return true },
	}
}

// Fetch loads all tickets from the backend.
func (s *TicketService) Fetch() error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}

	tickets, err := s.api.ListTickets()
	if err != nil {
		if !errors.Is(err, backend.ErrSessionExpired) {
			notify.Showf("Error fetching tickets: %s", err)
		}
		return err
	}

	s.store.SetTickets(tickets)
	return nil
}

// Create asks the backend for a new empty ticket and makes it active.
func (s *TicketService) Create() (models.Ticket, error) {
	if err := requireAuth(s.sessions); err != nil {
		return models.Ticket{}, err
	}

	ticket, err := s.api.CreateTicket()
	if err != nil {
		notify.Showf("Error creating ticket: %s", err)
		return models.Ticket{}, err
	}

	s.store.AppendTicket(ticket)
	notify.Showf("Ticket #%d created", ticket.TicketNumber)
	return ticket, nil
}

// AddItem puts quantity units of a product on the ticket, merging into an
// existing line. Rejected when the product does not track quantity or when
// the change would oversell against stock reserved by other active tickets.
func (s *TicketService) AddItem(ticketID, productID string, quantity int) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}
	if quantity < 1 {
		return nil
	}

	ticket, product, err := s.editable(ticketID, productID)
	if err != nil {
		return err
	}
	if !product.TrackQuantity {
		notify.Showf("%s does not track quantity and cannot be added.", product.Title)
		return ErrNotTracked
	}

	current := ticket.ItemQuantity(productID)
	if err := s.checkAvailable(ticket, product, current+quantity); err != nil {
		return err
	}

	items := mergeItem(ticket.Items, product, current+quantity)
	return s.persistItems(ticket, items, fmt.Sprintf("Added %s to ticket #%d", product.Title, ticket.TicketNumber))
}

// UpdateItemQuantity adjusts a line by delta. A resulting quantity below 1
// removes the line; increases are clamped by the reservation check.
// Adjusting an absent item downward is a no-op.
func (s *TicketService) UpdateItemQuantity(ticketID, productID string, delta int) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}

	ticket, product, err := s.editable(ticketID, productID)
	if err != nil {
		return err
	}

	current := ticket.ItemQuantity(productID)
	if current == 0 && delta <= 0 {
		return nil
	}

	next := current + delta
	if next < 1 {
		items := removeItems(ticket.Items, []string{productID})
		return s.persistItems(ticket, items, fmt.Sprintf("Removed %s from ticket #%d", product.Title, ticket.TicketNumber))
	}

	if next > current {
		if err := s.checkAvailable(ticket, product, next); err != nil {
			return err
		}
	}

	items := mergeItem(ticket.Items, product, next)
	return s.persistItems(ticket, items, fmt.Sprintf("Updated %s quantity to %d", product.Title, next))
}

// RemoveSelectedItems bulk-removes lines. Removal never increases
// reservation, so no stock re-check is needed.
func (s *TicketService) RemoveSelectedItems(ticketID string, productIDs []string) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	ticket, ok := s.store.Ticket(ticketID)
	if !ok {
		return ErrTicketNotFound
	}
	if !ticket.Active() {
		notify.Show("This ticket has been deducted and can no longer be edited.")
		return ErrTicketFrozen
	}

	items := removeItems(ticket.Items, productIDs)
	if err := s.persistItems(ticket, items, fmt.Sprintf("Removed %d item(s)", len(productIDs))); err != nil {
		return err
	}
	s.store.ClearItemSelection()
	return nil
}

// Deduct commits the ticket's items against real inventory. On success the
// ticket freezes as deducted, the receipt is archived in the background,
// and the view returns to the catalog.
func (s *TicketService) Deduct(ticketID string) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}

	ticket, ok := s.store.Ticket(ticketID)
	if !ok {
		return ErrTicketNotFound
	}
	if !ticket.Active() {
		notify.Show("This ticket has already been deducted.")
		return ErrTicketFrozen
	}
	if len(ticket.Items) == 0 {
		notify.Show("Nothing to deduct: the ticket is empty.")
		return nil
	}

	result, err := s.api.DeductTicket(ticketID, ticket.Items)
	if err != nil {
		notify.Showf("Error deducting items: %s", err)
		return err
	}

	s.store.ReplaceTicket(result.Ticket)
	s.store.SetActiveTicket("")
	notify.Showf("Deducted: %s", formatDeductions(result.UpdatedProducts))
	event.Fire(event.TicketDeducted, result.Ticket.ID)

	total := s.Total(result.Ticket.ID)
	s.archiveReceipt(result.Ticket, total)

	s.RefreshCatalog()
	return nil
}

// Close discards an active ticket outright without touching stock.
func (s *TicketService) Close(ticketID string) error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}

	message, err := s.api.DeleteTicket(ticketID)
	if err != nil {
		notify.Showf("Error closing ticket: %s", err)
		return err
	}

	s.store.RemoveTicket(ticketID)
	if message == "" {
		message = "Ticket closed"
	}
	notify.Show(message)
	return nil
}

// ClearDeducted bulk-deletes the deducted-ticket history behind the same
// confirmation gate as product deletion.
func (s *TicketService) ClearDeducted() error {
	if err := requireAuth(s.sessions); err != nil {
		return err
	}

	deducted := s.History()
	if len(deducted) == 0 {
		notify.Show("No deducted tickets to clear.")
		return nil
	}
	if !s.Confirm(fmt.Sprintf("Clear %d deducted ticket(s)? This cannot be undone.", len(deducted))) {
		return nil
	}

	message, err := s.api.ClearDeductedTickets()
	if err != nil {
		notify.Showf("Error clearing deducted tickets: %s", err)
		return err
	}

	ids := collection.Map(deducted, func(t models.Ticket) string { return t.ID })
	s.store.RemoveTickets(ids)
	notify.Show(message)
	return nil
}

// ScanBarcode resolves a scanned barcode against the catalog and adds one
// unit to the active ticket.
func (s *TicketService) ScanBarcode(code string) error {
	ticket, ok := s.store.ActiveTicket()
	if !ok {
		notify.Show("No active ticket. Create one before scanning.")
		return ErrTicketNotFound
	}

	// Scanners emit the code verbatim; the match is exact, not fuzzy.
	code = strings.TrimSpace(code)
	product, found := collection.First(s.store.Products(), func(p models.Product) bool {
		return p.Barcode != "" && p.Barcode == code
	})
	if !found {
		notify.Show("Product not found")
		return fmt.Errorf("services: no product with barcode %q", code)
	}

	if err := s.AddItem(ticket.ID, product.ID, 1); err != nil {
		return err
	}

	// A successful scan ends the search that was narrowing the picker.
	s.store.SetTicketSearch(ticket.ID, "")
	return nil
}

// SetSearch updates the ticket's ephemeral product search query.
func (s *TicketService) SetSearch(ticketID, query string) {
	s.store.SetTicketSearch(ticketID, query)
}

// PickerProducts returns the catalog filtered by the ticket's search
// query. Ticket search matches titles only.
func (s *TicketService) PickerProducts(ticket models.Ticket) []models.Product {
	return collection.Filter(s.store.Products(), func(p models.Product) bool {
		return state.MatchesTitle(p, ticket.SearchQuery)
	})
}

// Total sums price times quantity over the ticket's items. Prices are
// looked up live against the current product list; the add-time snapshot
// is the fallback for products since deleted.
func (s *TicketService) Total(ticketID string) float64 {
	ticket, ok := s.store.Ticket(ticketID)
	if !ok {
		return 0
	}

	return collection.Reduce(ticket.Items, 0.0, func(sum float64, it models.TicketItem) float64 {
		price := it.Price
		if p, found := s.store.Product(it.ProductID); found {
			price = p.Price
		}
		return sum + price*float64(it.Quantity)
	})
}

// History returns the deducted tickets.
func (s *TicketService) History() []models.Ticket {
	return collection.Filter(s.store.Tickets(), func(t models.Ticket) bool {
		return t.Status == models.TicketDeducted
	})
}

// StockLine renders a line's stock transition as "current > after".
func (s *TicketService) StockLine(productID string, quantity int) string {
	p, ok := s.store.Product(productID)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d > %d", p.Quantity, p.Quantity-quantity)
}

// ─── Internals ────────────────────────────────────────────────────────────────

// editable resolves the ticket and product for a mutation and rejects
// frozen tickets.
func (s *TicketService) editable(ticketID, productID string) (models.Ticket, models.Product, error) {
	ticket, ok := s.store.Ticket(ticketID)
	if !ok {
		return models.Ticket{}, models.Product{}, ErrTicketNotFound
	}
	if !ticket.Active() {
		notify.Show("This ticket has been deducted and can no longer be edited.")
		return models.Ticket{}, models.Product{}, ErrTicketFrozen
	}

	product, ok := s.store.Product(productID)
	if !ok {
		notify.Show("Product not found")
		return models.Ticket{}, models.Product{}, fmt.Errorf("services: product %s not found", productID)
	}
	return ticket, product, nil
}

// checkAvailable rejects a prospective line quantity that would oversell:
// stock reserved by other active tickets is subtracted from raw quantity.
func (s *TicketService) checkAvailable(ticket models.Ticket, product models.Product, next int) error {
	reserved := s.store.Reserved(product.ID, ticket.ID)
	available := product.Quantity - reserved

	if next > available {
		metrics.StockRejections.Inc()
		notify.Showf("Not enough stock for %s (available: %d)", product.Title, available)
		return ErrInsufficientStock
	}
	return nil
}

// persistItems mirrors the full item list to the backend, then applies the
// backend's view of the ticket locally.
func (s *TicketService) persistItems(ticket models.Ticket, items []models.TicketItem, message string) error {
	updated, err := s.api.UpdateTicketItems(ticket.ID, items)
	if err != nil {
		notify.Showf("Error updating ticket items: %s", err)
		return err
	}

	s.store.ReplaceTicket(updated)
	notify.Show(message)
	return nil
}

// archiveReceipt freezes the deducted ticket into the state store and
// exports a JSON receipt, off the calling goroutine. Failures are logged;
// the sale already succeeded.
func (s *TicketService) archiveReceipt(ticket models.Ticket, total float64) {
	task := func() {
		itemsJSON, err := json.Marshal(ticket.Items)
		if err != nil {
			logger.Error("ticket: marshal receipt items", "error", err)
			return
		}

		if database.DB != nil {
			rec := models.ArchivedTicket{
				TicketID:     ticket.ID,
				TicketNumber: ticket.TicketNumber,
				ItemsJSON:    string(itemsJSON),
				Total:        total,
				DeductedAt:   time.Now(),
			}
			if err := database.DB.Create(&rec).Error; err != nil {
				logger.Error("ticket: archive receipt", "error", err)
			}
		}

		receipt, err := json.MarshalIndent(map[string]interface{}{
			"ticketNumber": ticket.TicketNumber,
			"items":        ticket.Items,
			"total":        total,
			"deductedAt":   time.Now().Format(time.RFC3339),
		}, "", "  ")
		if err != nil {
			logger.Error("ticket: marshal receipt", "error", err)
			return
		}

		if storage.Ready() {
			path := fmt.Sprintf("receipts/ticket-%d.json", ticket.TicketNumber)
			if err := storage.Put(path, receipt); err != nil {
				logger.Error("ticket: export receipt", "path", path, "error", err)
			}
		}
	}

	if s.pool == nil {
		task()
		return
	}
	if err := s.pool.Submit(task); err != nil {
		// Pool saturated or closed: archive inline rather than drop.
		task()
	}
}

// formatDeductions renders the backend's report as "A x 2, B x 1".
func formatDeductions(updated []backend.DeductedAmount) string {
	parts := collection.Map(updated, func(u backend.DeductedAmount) string {
		return fmt.Sprintf("%s x %d", u.Title, u.Deducted)
	})
	return strings.Join(parts, ", ")
}

func mergeItem(items []models.TicketItem, product models.Product, quantity int) []models.TicketItem {
	out := make([]models.TicketItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].ProductID == product.ID {
			out[i].Quantity = quantity
			return out
		}
	}
	return append(out, models.TicketItem{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Quantity:  quantity,
	})
}

func removeItems(items []models.TicketItem, productIDs []string) []models.TicketItem {
	drop := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}
	return collection.Reject(items, func(it models.TicketItem) bool { return drop[it.ProductID] })
}
