package model

type InventoryStatus string

const (
	StatusInStock    InventoryStatus = "In Stock"
	StatusLowStock   InventoryStatus = "Low Stock"
	StatusOutOfStock InventoryStatus = "Out of Stock"
	StatusOnSale     InventoryStatus = "On Sale"
)

// Product is one inventory item shown on the panel.
type Product struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Brand          string          `json:"brand"`
	Stock          int             `json:"stock"`
	Price          float64         `json:"price"`
	Sales          int             `json:"sales"` // units sold this month
	Status         InventoryStatus `json:"status"`
	StockThreshold int             `json:"stock_threshold"`
	ImageKey       string          `json:"image_key"` // blob key, empty when no image
	Discount       int             `json:"discount,omitempty"`
	Managed        bool            `json:"managed"`
}

// ProductSnapshot is the reduced view handed to the AI assistant.
type ProductSnapshot struct {
	Name   string          `json:"name"`
	Stock  int             `json:"stock"`
	Sales  int             `json:"sales"`
	Price  float64         `json:"price"`
	Status InventoryStatus `json:"status"`
}

// Snapshot reduces products to the fields the assistant prompt carries.
func Snapshot(products []Product) []ProductSnapshot {
	out := make([]ProductSnapshot, 0, len(products))
	for _, p := range products {
		out = append(out, ProductSnapshot{
			Name:   p.Name,
			Stock:  p.Stock,
			Sales:  p.Sales,
			Price:  p.Price,
			Status: p.Status,
		})
	}
	return out
}
