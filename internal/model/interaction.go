package model

// InteractionType categorizes a recorded user interaction.
type InteractionType string

const (
	InteractionDiscounts InteractionType = "discounts"
	InteractionBrands    InteractionType = "brands"
	InteractionProducts  InteractionType = "products"
	InteractionSpots     InteractionType = "spots"
)

// ValidInteractionType reports whether t is a known interaction category.
func ValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionDiscounts, InteractionBrands, InteractionProducts, InteractionSpots:
		return true
	}
	return false
}

// InteractionEvent is one append-only journal entry. Events are never
// mutated or removed; total order is insertion order.
type InteractionEvent struct {
	Type      InteractionType `json:"type"`
	Key       string          `json:"key"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
}

// AppAnalytics is the persisted journal envelope.
type AppAnalytics struct {
	Interactions []InteractionEvent `json:"interactions"`
}
