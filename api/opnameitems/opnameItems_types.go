package opnameitems

// Row is one per-item reconciliation line in the read API. Quantities are
// cast to whole-number display units.
type Row struct {
	ItemID        int64    `bun:"item_id" json:"item_id"`
	SKU           string   `bun:"sku" json:"sku"`
	Name          string   `bun:"name" json:"name"`
	SystemQty     int64    `bun:"system_qty" json:"system_qty"`
	MovementQty   int64    `bun:"movement_qty" json:"movement_qty"`
	EffectiveQty  int64    `bun:"effective_qty" json:"effective_qty"`
	CountedQty    int64    `bun:"counted_qty" json:"counted_qty"`
	VarianceQty   int64    `bun:"variance_qty" json:"variance_qty"`
	VarianceValue float64  `bun:"variance_value" json:"variance_value"`
	Status        string   `bun:"status" json:"status"`
	ItemCodes     []string `bun:"-" json:"item_codes,omitempty"`
}
