package state_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/state"
)

func trackedProducts(n int) []models.Product {
	out := make([]models.Product, n)
	for i := range out {
		out[i] = models.Product{
			ID:            fmt.Sprintf("%024d", i+1),
			Title:         fmt.Sprintf("Product %d", i+1),
			TrackQuantity: true,
			Quantity:      10,
			LowStock:      2,
		}
	}
	return out
}

func TestPagination(t *testing.T) {
	s := state.New()
	s.SetProducts(trackedProducts(120))

	require.Equal(t, 3, s.TotalPages())

	s.SetPage(1)
	page := s.VisibleProducts()
	require.Len(t, page, 50)
	assert.Equal(t, "Product 1", page[0].Title)
	assert.Equal(t, "Product 50", page[49].Title)

	s.SetPage(3)
	page = s.VisibleProducts()
	require.Len(t, page, 20)
	assert.Equal(t, "Product 101", page[0].Title)
	assert.Equal(t, "Product 120", page[19].Title)
}

func TestSetPageClamps(t *testing.T) {
	s := state.New()
	s.SetProducts(trackedProducts(10))

	s.SetPage(99)
	assert.Equal(t, 1, s.Page())

	s.SetPage(-1)
	assert.Equal(t, 1, s.Page())
}

func TestFilters(t *testing.T) {
	s := state.New()
	s.SetProducts([]models.Product{
		{ID: "1", Title: "in stock", TrackQuantity: true, Quantity: 10, LowStock: 2},
		{ID: "2", Title: "low stock", TrackQuantity: true, Quantity: 2, LowStock: 2},
		{ID: "3", Title: "out of stock", TrackQuantity: true, Quantity: 0, LowStock: 2},
		{ID: "4", Title: "untracked", TrackQuantity: false, Quantity: 0},
	})

	// Low has no lower bound: an out-of-stock tracked product is also at
	// or below its threshold, so it shows under both filters.
	s.SetFilter(state.FilterLow)
	filtered := s.FilteredProducts()
	require.Len(t, filtered, 2)
	assert.Equal(t, "low stock", filtered[0].Title)
	assert.Equal(t, "out of stock", filtered[1].Title)

	s.SetFilter(state.FilterOut)
	filtered = s.FilteredProducts()
	require.Len(t, filtered, 1)
	assert.Equal(t, "out of stock", filtered[0].Title)

	s.SetFilter(state.FilterAll)
	assert.Len(t, s.FilteredProducts(), 4)
}

func TestSearchResetsPage(t *testing.T) {
	s := state.New()
	s.SetProducts(trackedProducts(120))

	s.SetPage(3)
	require.Equal(t, 3, s.Page())

	s.SetSearchQuery("product")
	assert.Equal(t, 1, s.Page())

	s.SetPage(2)
	s.SetFilter(state.FilterAll)
	assert.Equal(t, 1, s.Page(), "filter change resets page too")
}

func TestReserved(t *testing.T) {
	s := state.New()
	s.SetTickets([]models.Ticket{
		{ID: "t1", Status: models.TicketActive, Items: []models.TicketItem{{ProductID: "p", Quantity: 4}}},
		{ID: "t2", Status: models.TicketActive, Items: []models.TicketItem{{ProductID: "p", Quantity: 3}}},
		{ID: "t3", Status: models.TicketDeducted, Items: []models.TicketItem{{ProductID: "p", Quantity: 99}}},
	})

	assert.Equal(t, 7, s.Reserved("p", ""), "deducted tickets do not reserve")
	assert.Equal(t, 3, s.Reserved("p", "t1"), "excluded ticket's holdings are ignored")
	assert.Equal(t, 0, s.Reserved("other", ""))
}

func TestUpsertProductKeepsNewestFirst(t *testing.T) {
	s := state.New()
	s.SetProducts([]models.Product{{ID: "old", Title: "Old"}})

	s.UpsertProduct(models.Product{ID: "new", Title: "New"})
	products := s.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "new", products[0].ID)

	s.UpsertProduct(models.Product{ID: "old", Title: "Old v2"})
	products = s.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Old v2", products[1].Title, "replace keeps position")
}

func TestRemoveTicketFallsBackToCatalog(t *testing.T) {
	s := state.New()
	ticket := models.Ticket{ID: "t1", Status: models.TicketActive}
	s.AppendTicket(ticket)
	require.Equal(t, state.ViewTicket, s.View())

	s.RemoveTicket("t1")
	assert.Equal(t, state.ViewCatalog, s.View())
	_, ok := s.ActiveTicket()
	assert.False(t, ok)
}

func TestReplaceTicketPreservesSearchQuery(t *testing.T) {
	s := state.New()
	s.AppendTicket(models.Ticket{ID: "t1", Status: models.TicketActive})
	s.SetTicketSearch("t1", "mug")

	s.ReplaceTicket(models.Ticket{ID: "t1", Status: models.TicketActive, Items: []models.TicketItem{{ProductID: "p", Quantity: 1}}})

	got, ok := s.Ticket("t1")
	require.True(t, ok)
	assert.Equal(t, "mug", got.SearchQuery)
	assert.Len(t, got.Items, 1)
}

func TestSelections(t *testing.T) {
	s := state.New()

	s.SelectProducts("a", "b")
	s.ToggleProductSelected("c")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.SelectedProducts())

	s.ToggleProductSelected("b")
	assert.ElementsMatch(t, []string{"a", "c"}, s.SelectedProducts())

	s.ClearProductSelection()
	assert.Empty(t, s.SelectedProducts())
}

func TestResetClearsEverything(t *testing.T) {
	s := state.New()
	s.SetProducts(trackedProducts(3))
	s.AppendTicket(models.Ticket{ID: "t1", Status: models.TicketActive})
	s.SetSearchQuery("x")

	s.Reset()

	assert.Empty(t, s.Products())
	assert.Empty(t, s.Tickets())
	assert.Equal(t, "", s.SearchQuery())
	assert.Equal(t, state.ViewCatalog, s.View())
}
