package model

// InitialInventory is the factory product list used until the operator
// customizes the catalog. All items start managed.
func InitialInventory() []Product {
	return []Product{
		{ID: 1, Name: "Vestido Floral Midi", Category: "Vestidos", Brand: "Maia", Stock: 34, Price: 189.90, Sales: 412, Status: StatusInStock, StockThreshold: 10, Managed: true},
		{ID: 2, Name: "Calça Jeans Wide Leg", Category: "Calças", Brand: "Urbana", Stock: 8, Price: 159.90, Sales: 387, Status: StatusLowStock, StockThreshold: 10, Managed: true},
		{ID: 3, Name: "Blusa de Seda Off-White", Category: "Blusas", Brand: "Maia", Stock: 21, Price: 129.90, Sales: 298, Status: StatusInStock, StockThreshold: 8, Managed: true},
		{ID: 4, Name: "Jaqueta Corta-Vento", Category: "Casacos", Brand: "Trilha", Stock: 0, Price: 249.90, Sales: 156, Status: StatusOutOfStock, StockThreshold: 5, Managed: true},
		{ID: 5, Name: "Saia Plissada Rosé", Category: "Saias", Brand: "Urbana", Stock: 17, Price: 99.90, Sales: 231, Status: StatusOnSale, StockThreshold: 6, Discount: 20, Managed: true},
		{ID: 6, Name: "Camisa Linho Bege", Category: "Camisas", Brand: "Costa", Stock: 26, Price: 139.90, Sales: 189, Status: StatusInStock, StockThreshold: 8, Managed: true},
		{ID: 7, Name: "Tênis Casual Branco", Category: "Calçados", Brand: "Passo", Stock: 5, Price: 219.90, Sales: 344, Status: StatusLowStock, StockThreshold: 6, Managed: true},
		{ID: 8, Name: "Bolsa Tote Caramelo", Category: "Acessórios", Brand: "Costa", Stock: 12, Price: 179.90, Sales: 122, Status: StatusInStock, StockThreshold: 4, Managed: true},
	}
}

// InitialBrands extracts the distinct brand names from the factory
// inventory, preserving first appearance order.
func InitialBrands() []string {
	seen := make(map[string]struct{})
	var brands []string
	for _, p := range InitialInventory() {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	return brands
}
