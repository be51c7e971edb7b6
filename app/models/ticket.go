package models

// Ticket statuses. A ticket never leaves "deducted".
const (
	TicketActive   = "active"
	TicketDeducted = "deducted"
)

// TicketItem is one line of a ticket. Title and Price are snapshots taken
// when the item was added; the live product list remains the price
// authority for active-ticket totals.
type TicketItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Ticket is an in-progress or deducted sales cart.
type Ticket struct {
	ID           string       `json:"_id"`
	TicketNumber int          `json:"ticketNumber"`
	Status       string       `json:"status"`
	Items        []TicketItem `json:"items"`

	// SearchQuery filters the product picker for this ticket only.
	// Client-side state, never sent to the backend.
	SearchQuery string `json:"-"`
}

// Active reports whether the ticket can still be edited.
func (t Ticket) Active() bool { return t.Status == TicketActive }

// ItemQuantity returns the quantity this ticket holds for productID,
// or 0 when the product is not on the ticket.
func (t Ticket) ItemQuantity(productID string) int {
	for _, it := range t.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}
