// Package state holds the application state shared by the catalog and
// ticket views: the product list, tickets, selections, and the current
// filter/search/page/view. All mutation goes through Store methods and is
// guarded by a mutex, because debounced re-fetches and background mirror
// writes touch the store from their own goroutines.
package state

import (
	"sync"

	"github.com/shashiranjanraj/mapstack/app/models"
)

// ItemsPerPage is the fixed catalog page size.
const ItemsPerPage = 50

// Filter selects which slice of the catalog is visible.
type Filter string

const (
	FilterAll Filter = "all"
	FilterLow Filter = "low" // tracked, 0 < quantity <= lowStock
	FilterOut Filter = "out" // tracked, quantity == 0
)

// View names the screen the terminal is showing.
type View string

const (
	ViewCatalog View = "catalog"
	ViewTicket  View = "ticket"
)

// Store is the root application state.
type Store struct {
	mu sync.RWMutex

	products []models.Product
	tickets  []models.Ticket

	activeTicketID   string
	selectedProducts map[string]bool
	selectedItems    map[string]bool // productIDs within the active ticket

	filter      Filter
	searchQuery string
	page        int
	view        View
}

// New returns an empty store showing page 1 of the unfiltered catalog.
func New() *Store {
	return &Store{
		selectedProducts: make(map[string]bool),
		selectedItems:    make(map[string]bool),
		filter:           FilterAll,
		page:             1,
		view:             ViewCatalog,
	}
}

// Reset drops everything. Called on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil
	s.tickets = nil
	s.activeTicketID = ""
	s.selectedProducts = make(map[string]bool)
	s.selectedItems = make(map[string]bool)
	s.filter = FilterAll
	s.searchQuery = ""
	s.page = 1
	s.view = ViewCatalog
}

// ─── Products ─────────────────────────────────────────────────────────────────

// SetProducts replaces the whole product list (authoritative re-fetch).
func (s *Store) SetProducts(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

// Products returns a copy of the product list.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Product looks up one product by id.
func (s *Store) Product(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// UpsertProduct applies an optimistic insert or replace. New products go
// to the front, keeping the list newest-first.
func (s *Store) UpsertProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append([]models.Product{p}, s.products...)
}

// RemoveProducts applies an optimistic bulk removal and drops the removed
// ids from the selection.
func (s *Store) RemoveProducts(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
		delete(s.selectedProducts, id)
	}

	kept := s.products[:0]
	for _, p := range s.products {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	s.products = kept
}

// ─── Tickets ──────────────────────────────────────────────────────────────────

// SetTickets replaces the ticket list (authoritative re-fetch).
func (s *Store) SetTickets(tickets []models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = tickets
}

// Tickets returns a copy of the ticket list.
func (s *Store) Tickets() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// Ticket looks up one ticket by id.
func (s *Store) Ticket(id string) (models.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return models.Ticket{}, false
}

// AppendTicket adds a freshly created ticket and makes it active.
func (s *Store) AppendTicket(t models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = append(s.tickets, t)
	s.activeTicketID = t.ID
	s.selectedItems = make(map[string]bool)
	s.view = ViewTicket
}

// ReplaceTicket swaps the stored ticket with the same id.
func (s *Store) ReplaceTicket(t models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == t.ID {
			t.SearchQuery = s.tickets[i].SearchQuery
			s.tickets[i] = t
			return
		}
	}
}

// RemoveTicket drops a ticket. If it was active, the view falls back to
// the catalog.
func (s *Store) RemoveTicket(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tickets[:0]
	for _, t := range s.tickets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tickets = kept

	if s.activeTicketID == id {
		s.activeTicketID = ""
		s.selectedItems = make(map[string]bool)
		s.view = ViewCatalog
	}
}

// RemoveTickets drops every ticket whose id is in ids.
func (s *Store) RemoveTickets(ids []string) {
	for _, id := range ids {
		s.RemoveTicket(id)
	}
}

// ActiveTicket returns the ticket currently being edited.
func (s *Store) ActiveTicket() (models.Ticket, bool) {
	s.mu.RLock()
	id := s.activeTicketID
	s.mu.RUnlock()
	if id == "" {
		return models.Ticket{}, false
	}
	return s.Ticket(id)
}

// SetActiveTicket switches the ticket view to the given ticket.
func (s *Store) SetActiveTicket(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTicketID = id
	s.selectedItems = make(map[string]bool)
	if id == "" {
		s.view = ViewCatalog
	} else {
		s.view = ViewTicket
	}
}

// SetTicketSearch sets the ephemeral per-ticket product search query.
func (s *Store) SetTicketSearch(ticketID, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			s.tickets[i].SearchQuery = query
			return
		}
	}
}

// Reserved sums the quantity held for productID across all active tickets,
// excluding excludeTicketID. Available stock for a prospective change is
// product.quantity minus this.
func (s *Store) Reserved(productID, excludeTicketID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, t := range s.tickets {
		if t.ID == excludeTicketID || !t.Active() {
			continue
		}
		total += t.ItemQuantity(productID)
	}
	return total
}

// ─── Selections ───────────────────────────────────────────────────────────────

// ToggleProductSelected flips a product's membership in the selection.
func (s *Store) ToggleProductSelected(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedProducts[id] {
		delete(s.selectedProducts, id)
	} else {
		s.selectedProducts[id] = true
	}
}

// SelectProducts marks all given ids as selected (select-all).
func (s *Store) SelectProducts(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.selectedProducts[id] = true
	}
}

// ClearProductSelection empties the product selection.
func (s *Store) ClearProductSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedProducts = make(map[string]bool)
}

// SelectedProducts returns the selected product ids.
func (s *Store) SelectedProducts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selectedProducts))
	for id := range s.selectedProducts {
		out = append(out, id)
	}
	return out
}

// ToggleItemSelected flips a ticket line's membership in the selection.
func (s *Store) ToggleItemSelected(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedItems[productID] {
		delete(s.selectedItems, productID)
	} else {
		s.selectedItems[productID] = true
	}
}

// ClearItemSelection empties the ticket-line selection.
func (s *Store) ClearItemSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedItems = make(map[string]bool)
}

// SelectedItems returns the selected line-item product ids.
func (s *Store) SelectedItems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selectedItems))
	for id := range s.selectedItems {
		out = append(out, id)
	}
	return out
}

// ─── Filter, search, pagination, view ─────────────────────────────────────────

// SetFilter switches the catalog filter and resets to page 1.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.page = 1
}

// Filter returns the current catalog filter.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetSearchQuery updates the catalog search and resets to page 1.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
	s.page = 1
}

// SearchQuery returns the current catalog search query.
func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetPage moves to the given page, clamped to [1, TotalPages].
func (s *Store) SetPage(page int) {
	total := s.TotalPages()

	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	s.page = page
}

// Page returns the current page number (1-based).
func (s *Store) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// SetView switches between catalog and ticket screens.
func (s *Store) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// View returns the current screen.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// FilteredProducts applies the current filter and search query to the
// product list, in list order.
func (s *Store) FilteredProducts() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Product
	for _, p := range s.products {
		if !matchesFilter(p, s.filter) {
			continue
		}
		if !MatchesSearch(p, s.searchQuery) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// VisibleProducts returns the current page of the filtered product list.
func (s *Store) VisibleProducts() []models.Product {
	filtered := s.FilteredProducts()

	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	start := (page - 1) * ItemsPerPage
	if start >= len(filtered) {
		return nil
	}
	end := start + ItemsPerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// TotalPages derives the page count from the filtered set, minimum 1.
func (s *Store) TotalPages() int {
	n := len(s.FilteredProducts())
	if n == 0 {
		return 1
	}
	return (n + ItemsPerPage - 1) / ItemsPerPage
}

// matchesFilter implements the list filters. The low filter has no lower
// bound: an out-of-stock tracked product is also at-or-below its
// threshold, so it appears under both low and out. Only the stock status
// badge gives "Out of Stock" precedence.
func matchesFilter(p models.Product, f Filter) bool {
	switch f {
	case FilterLow:
		return p.TrackQuantity && p.Quantity <= p.LowStock
	case FilterOut:
		return p.TrackQuantity && p.Quantity == 0
	default:
		return true
	}
}
