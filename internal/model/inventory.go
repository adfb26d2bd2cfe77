package model

// StockUpdate sets the on-hand quantity of an item.
type StockUpdate struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// BulkUpdateRequest represents the request payload for an administrative
// stock correction.
type BulkUpdateRequest struct {
	Updates []StockUpdate `json:"updates"`
}

// StockChange describes one applied correction.
type StockChange struct {
	ItemID   string `json:"itemId"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

// BulkUpdateResponse lists the corrections applied in one bulk update.
type BulkUpdateResponse struct {
	Changes []StockChange `json:"changes"`
}
