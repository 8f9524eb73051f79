package movements

// CreateInput is the validated payload for recording one inventory movement.
type CreateInput struct {
	ItemID      int64
	LocationID  int64
	QtyChange   float64
	Reason      string
	ReferenceID string
}

type createRequest struct {
	ItemID      int64   `json:"item_id"`
	LocationID  int64   `json:"location_id"`
	QtyChange   float64 `json:"qty_change"`
	Reason      string  `json:"reason"`
	ReferenceID string  `json:"reference_id"`
}
