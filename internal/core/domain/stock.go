package domain

// Stock is the available quantity reported for a product at query time.
type Stock struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}
