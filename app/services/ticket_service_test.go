package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/app/services"
	"github.com/shashiranjanraj/mapstack/pkg/notify"
)

func TestAddItemMergesAndEnforcesStock(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)

	// 4 + 4 merges into one line of 8.
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 4))
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 4))

	got, ok := app.store.Ticket(ticket.ID)
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 8, got.Items[0].Quantity)

	// Third add of 3 would make 11 > 10 in stock. The message shows the
	// stock available to this ticket (quantity minus other reservations),
	// not the remaining headroom on the line.
	err = app.tickets.AddItem(ticket.ID, p.ID, 3)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.Equal(t, "Not enough stock for Widget (available: 10)", notify.Current())

	got, _ = app.store.Ticket(ticket.ID)
	assert.Equal(t, 8, got.Items[0].Quantity, "rejected add leaves the line unchanged")
}

func TestAddItemRejectsUntrackedProduct(t *testing.T) {
	app := newTestApp(t, models.Product{Title: "Gift Card", Price: 25})
	p := app.productByTitle(t, "Gift Card")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)

	err = app.tickets.AddItem(ticket.ID, p.ID, 1)
	assert.ErrorIs(t, err, services.ErrNotTracked)
}

func TestReservationAcrossTickets(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	t1, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(t1.ID, p.ID, 4))

	t2, err := app.tickets.Create()
	require.NoError(t, err)

	// 10 in stock, 4 reserved by t1: 7 would oversell.
	err = app.tickets.AddItem(t2.ID, p.ID, 7)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	// 6 fits exactly.
	require.NoError(t, app.tickets.AddItem(t2.ID, p.ID, 6))
}

func TestUpdateItemQuantity(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 2))

	// Decrement to 0 removes the line.
	require.NoError(t, app.tickets.UpdateItemQuantity(ticket.ID, p.ID, -2))
	got, _ := app.store.Ticket(ticket.ID)
	assert.Empty(t, got.Items)

	// Decrementing an absent item is a no-op.
	require.NoError(t, app.tickets.UpdateItemQuantity(ticket.ID, p.ID, -1))
	got, _ = app.store.Ticket(ticket.ID)
	assert.Empty(t, got.Items)

	// Increase beyond stock is rejected.
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 9))
	err = app.tickets.UpdateItemQuantity(ticket.ID, p.ID, 2)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
}

func TestRemoveSelectedItems(t *testing.T) {
	app := newTestApp(t, trackedProduct("A", 10), trackedProduct("B", 10))
	a := app.productByTitle(t, "A")
	b := app.productByTitle(t, "B")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, a.ID, 1))
	require.NoError(t, app.tickets.AddItem(ticket.ID, b.ID, 2))

	require.NoError(t, app.tickets.RemoveSelectedItems(ticket.ID, []string{a.ID}))

	got, _ := app.store.Ticket(ticket.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, b.ID, got.Items[0].ProductID)
}

func TestDeductFreezesTicketAndDecrementsStock(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 2))

	require.NoError(t, app.tickets.Deduct(ticket.ID))

	got, ok := app.store.Ticket(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, models.TicketDeducted, got.Status)
	require.Len(t, got.Items, 1, "items freeze as a historical record")
	assert.Equal(t, 2, got.Items[0].Quantity)

	assert.Contains(t, notify.Current(), "Deducted: Widget x 2")

	// Deduct returned to the catalog view.
	_, active := app.store.ActiveTicket()
	assert.False(t, active)

	// The synchronous refresh picked up the backend's decrement.
	refreshed := app.productByTitle(t, "Widget")
	assert.Equal(t, 8, refreshed.Quantity)

	// A frozen ticket rejects further edits and deducts.
	assert.ErrorIs(t, app.tickets.AddItem(ticket.ID, p.ID, 1), services.ErrTicketFrozen)
	assert.ErrorIs(t, app.tickets.Deduct(ticket.ID), services.ErrTicketFrozen)
}

func TestCloseDiscardsWithoutStockChange(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 3))

	require.NoError(t, app.tickets.Close(ticket.ID))

	_, ok := app.store.Ticket(ticket.ID)
	assert.False(t, ok)

	require.NoError(t, app.catalog.Refresh())
	assert.Equal(t, 10, app.productByTitle(t, "Widget").Quantity, "close never touches stock")
}

func TestClearDeducted(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 1))
	require.NoError(t, app.tickets.Deduct(ticket.ID))

	keep, err := app.tickets.Create()
	require.NoError(t, err)

	require.Len(t, app.tickets.History(), 1)

	require.NoError(t, app.tickets.ClearDeducted())

	assert.Empty(t, app.tickets.History())
	_, ok := app.store.Ticket(keep.ID)
	assert.True(t, ok, "active tickets survive the clear")
}

func TestClearDeductedDeclinedIsNoop(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 1))
	require.NoError(t, app.tickets.Deduct(ticket.ID))

	app.tickets.Confirm = func(string) bool { return false }
	require.NoError(t, app.tickets.ClearDeducted())
	assert.Len(t, app.tickets.History(), 1)
}

func TestScanBarcode(t *testing.T) {
	seeded := trackedProduct("Widget", 10)
	seeded.Barcode = "4006381333931"
	app := newTestApp(t, seeded)
	p := app.productByTitle(t, "Widget")

	// No active ticket yet.
	err := app.tickets.ScanBarcode("4006381333931")
	assert.ErrorIs(t, err, services.ErrTicketNotFound)

	ticket, err := app.tickets.Create()
	require.NoError(t, err)

	app.tickets.SetSearch(ticket.ID, "wid")
	require.NoError(t, app.tickets.ScanBarcode("4006381333931"))
	got, _ := app.store.Ticket(ticket.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, p.ID, got.Items[0].ProductID)
	assert.Equal(t, "", got.SearchQuery, "successful scan clears the picker search")

	// Unknown barcode.
	err = app.tickets.ScanBarcode("0000000000000")
	require.Error(t, err)
	assert.Equal(t, "Product not found", notify.Current())
}

func TestScanBarcodeMatchesExactly(t *testing.T) {
	seeded := trackedProduct("Widget", 10)
	seeded.Barcode = "abc-123"
	app := newTestApp(t, seeded)

	_, err := app.tickets.Create()
	require.NoError(t, err)

	// Scanners emit the code verbatim; a different casing is a different code.
	err = app.tickets.ScanBarcode("ABC-123")
	require.Error(t, err)
	assert.Equal(t, "Product not found", notify.Current())

	require.NoError(t, app.tickets.ScanBarcode("abc-123"))
}

func TestTotalUsesLivePriceWithSnapshotFallback(t *testing.T) {
	app := newTestApp(t, trackedProduct("Widget", 10))
	p := app.productByTitle(t, "Widget")

	ticket, err := app.tickets.Create()
	require.NoError(t, err)
	require.NoError(t, app.tickets.AddItem(ticket.ID, p.ID, 2))

	assert.InDelta(t, 20.0, app.tickets.Total(ticket.ID), 0.001)

	// A price change after adding shifts the live total.
	p.Price = 15
	app.store.UpsertProduct(p)
	assert.InDelta(t, 30.0, app.tickets.Total(ticket.ID), 0.001)

	// Product gone from the catalog: the add-time snapshot holds.
	app.store.RemoveProducts([]string{p.ID})
	assert.InDelta(t, 20.0, app.tickets.Total(ticket.ID), 0.001)
}

func TestPerTicketSearch(t *testing.T) {
	app := newTestApp(t, trackedProduct("Red Shirt", 5), trackedProduct("Blue Shirt", 5), trackedProduct("Mug", 5))

	ticket, err := app.tickets.Create()
	require.NoError(t, err)

	app.tickets.SetSearch(ticket.ID, "shirt")
	got, _ := app.store.Ticket(ticket.ID)
	picker := app.tickets.PickerProducts(got)
	assert.Len(t, picker, 2)

	app.tickets.SetSearch(ticket.ID, "red shirt")
	got, _ = app.store.Ticket(ticket.ID)
	picker = app.tickets.PickerProducts(got)
	require.Len(t, picker, 1)
	assert.Equal(t, "Red Shirt", picker[0].Title)
}
