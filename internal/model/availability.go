package model

// Reasons a basket line can be unavailable.
const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonNotFound          = "not_found"
	ReasonInactive          = "inactive"
)

// AvailabilityRequest represents the request payload for an availability check.
type AvailabilityRequest struct {
	Items []BasketLine `json:"items"`
}

// LineAvailability is the verdict for one basket line.
type LineAvailability struct {
	ItemID    string `json:"itemId"`
	Requested int    `json:"requested"`
	InStock   int    `json:"inStock"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// AvailabilityResponse holds per-line verdicts plus the aggregate outcome.
type AvailabilityResponse struct {
	Available bool               `json:"available"`
	Lines     []LineAvailability `json:"lines"`
}
