package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/mapstack/app/models"
)

func TestStockStatusOf(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		want    models.StockStatus
	}{
		{"tracking disabled", models.Product{TrackQuantity: false, Quantity: 0}, models.StockNotTracked},
		{"tracking disabled ignores quantity", models.Product{TrackQuantity: false, Quantity: 50, LowStock: 100}, models.StockNotTracked},
		{"zero quantity", models.Product{TrackQuantity: true, Quantity: 0, LowStock: 5}, models.StockOut},
		{"at threshold", models.Product{TrackQuantity: true, Quantity: 5, LowStock: 5}, models.StockLow},
		{"below threshold", models.Product{TrackQuantity: true, Quantity: 1, LowStock: 5}, models.StockLow},
		{"above threshold", models.Product{TrackQuantity: true, Quantity: 6, LowStock: 5}, models.StockIn},
		{"no threshold", models.Product{TrackQuantity: true, Quantity: 1, LowStock: 0}, models.StockIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.StockStatusOf(tt.product))
		})
	}
}

func TestTicketItemQuantity(t *testing.T) {
	ticket := models.Ticket{
		Status: models.TicketActive,
		Items: []models.TicketItem{
			{ProductID: "a", Quantity: 3},
			{ProductID: "b", Quantity: 1},
		},
	}

	assert.Equal(t, 3, ticket.ItemQuantity("a"))
	assert.Equal(t, 0, ticket.ItemQuantity("missing"))
	assert.True(t, ticket.Active())

	ticket.Status = models.TicketDeducted
	assert.False(t, ticket.Active())
}
