package masterdata

type createLocationRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"`
}

type createItemRequest struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	UOM       string  `json:"uom"`
	CostPrice float64 `json:"cost_price"`
	SellPrice float64 `json:"sell_price"`
}

type createTagRequest struct {
	TagUID     string `json:"tag_uid"`
	ItemID     int64  `json:"item_id"`
	LocationID *int64 `json:"location_id"`
	Status     string `json:"status"`
}

type setStockRequest struct {
	ItemID     int64   `json:"item_id"`
	LocationID int64   `json:"location_id"`
	SystemQty  float64 `json:"system_qty"`
}

// ImportSummary reports the outcome of one CSV item import.
type ImportSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}
