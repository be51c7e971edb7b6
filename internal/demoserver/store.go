// Package demoserver is an in-process MapStack backend double. It
// implements the full REST contract the client consumes (JWT login,
// multipart product CRUD, and the ticket lifecycle) against in-memory
// data. `mapstack demo` runs it for offline use and the integration tests
// drive the real client against it over httptest.
package demoserver

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/shashiranjanraj/mapstack/app/models"
)

// memStore holds the demo backend's data. A single mutex is plenty at
// demo scale.
type memStore struct {
	mu sync.Mutex

	products     []models.Product
	tickets      []models.Ticket
	nextTicketNo int
}

func newMemStore() *memStore {
	return &memStore{nextTicketNo: 1}
}

// newID returns a 24-hex-char identifier, the shape the client validates.
func newID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return hex.EncodeToString(b)
}

func (m *memStore) listProducts() []models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, len(m.products))
	copy(out, m.products)
	return out
}

func (m *memStore) addProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = newID()
	m.products = append(m.products, p)
	return p
}

func (m *memStore) updateProduct(id string, apply func(*models.Product)) (models.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			apply(&m.products[i])
			return m.products[i], true
		}
	}
	return models.Product{}, false
}

func (m *memStore) deleteProducts(ids []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	deleted := 0
	kept := m.products[:0]
	for _, p := range m.products {
		if drop[p.ID] {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.products = kept
	return deleted
}

func (m *memStore) listTickets() []models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Ticket, len(m.tickets))
	copy(out, m.tickets)
	return out
}

func (m *memStore) createTicket() models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := models.Ticket{
		ID:           newID(),
		TicketNumber: m.nextTicketNo,
		Status:       models.TicketActive,
		Items:        []models.TicketItem{},
	}
	m.nextTicketNo++
	m.tickets = append(m.tickets, t)
	return t
}

func (m *memStore) updateTicket(id string, apply func(*models.Ticket)) (models.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tickets {
		if m.tickets[i].ID == id {
			apply(&m.tickets[i])
			return m.tickets[i], true
		}
	}
	return models.Ticket{}, false
}

func (m *memStore) deleteTicket(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tickets[:0]
	found := false
	for _, t := range m.tickets {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	m.tickets = kept
	return found
}

func (m *memStore) clearDeducted() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleared := 0
	kept := m.tickets[:0]
	for _, t := range m.tickets {
		if t.Status == models.TicketDeducted {
			cleared++
			continue
		}
		kept = append(kept, t)
	}
	m.tickets = kept
	return cleared
}

// deduct decrements real stock for each item and freezes the ticket.
// Returns the per-product decrements for the client's report.
func (m *memStore) deduct(ticketID string, items []models.TicketItem) (models.Ticket, []deductedAmount, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ticket *models.Ticket
	for i := range m.tickets {
		if m.tickets[i].ID == ticketID {
			ticket = &m.tickets[i]
			break
		}
	}
	if ticket == nil || ticket.Status != models.TicketActive {
		return models.Ticket{}, nil, false
	}

	var updated []deductedAmount
	for _, it := range items {
		for i := range m.products {
			if m.products[i].ID != it.ProductID {
				continue
			}
			m.products[i].Quantity -= it.Quantity
			if m.products[i].Quantity < 0 {
				m.products[i].Quantity = 0
			}
			updated = append(updated, deductedAmount{Title: m.products[i].Title, Deducted: it.Quantity})
		}
	}

	ticket.Items = items
	ticket.Status = models.TicketDeducted
	return *ticket, updated, true
}

type deductedAmount struct {
	Title    string `json:"title"`
	Deducted int    `json:"deducted"`
}
