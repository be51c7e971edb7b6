// Package models holds the DTOs exchanged with the MapStack backend and
// the records persisted in the local state store. JSON field names follow
// the backend's wire format (`_id`, `trackQuantity`, ...), so these types
// unmarshal API responses directly.
package models

// Product is a catalog entry as the backend returns it.
type Product struct {
	ID                string   `json:"_id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Price             float64  `json:"price"`
	Cost              float64  `json:"cost"`
	SKU               string   `json:"sku"`
	Barcode           string   `json:"barcode"`
	TrackQuantity     bool     `json:"trackQuantity"`
	Quantity          int      `json:"quantity"`
	LowStock          int      `json:"lowStock"`
	Supplier          string   `json:"supplier"`
	InventoryLocation string   `json:"inventoryLocation"`
	Images            []string `json:"images"`
}

// MaxProductImages caps the image list on create and update.
const MaxProductImages = 5

// StockStatus classifies a product's stock level for display.
type StockStatus string

const (
	StockNotTracked StockStatus = "Not Tracked"
	StockOut        StockStatus = "Out of Stock"
	StockLow        StockStatus = "Low Stock"
	StockIn         StockStatus = "In Stock"
)

// StockStatusOf returns the four-way classification. Quantity and low-stock
// threshold are meaningful only when tracking is enabled.
func StockStatusOf(p Product) StockStatus {
	switch {
	case !p.TrackQuantity:
		return StockNotTracked
	case p.Quantity == 0:
		return StockOut
	case p.Quantity <= p.LowStock:
		return StockLow
	default:
		return StockIn
	}
}
