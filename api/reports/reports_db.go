package reports

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// SheetData is everything a count sheet or variance export needs for one
// session.
type SheetData struct {
	SessionID       int64
	Code            string
	LocationName    string
	LocationCode    string
	Status          string
	Type            string
	SnapshotAt      *time.Time
	TotalItems      int
	ItemsScanned    int
	ProgressPercent float64
	Lines           []SheetLine
}

type SheetLine struct {
	SKU           string  `bun:"sku"`
	Name          string  `bun:"name"`
	SystemQty     float64 `bun:"system_qty"`
	MovementQty   float64 `bun:"movement_qty"`
	EffectiveQty  float64 `bun:"effective_qty"`
	CountedQty    float64 `bun:"counted_qty"`
	VarianceQty   float64 `bun:"variance_qty"`
	VarianceValue float64 `bun:"variance_value"`
	Status        string  `bun:"status"`
}

// LoadSheetData loads the session header and its reconciliation lines
// ordered by item name.
func LoadSheetData(ctx context.Context, db *sqlite.DB, sessionID int64) (SheetData, error) {
	var data SheetData
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var session models.StockOpnameSession
		err := tx.NewSelect().Model(&session).Relation("Location").Where("sos.id = ?", sessionID).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return web.NotFoundf("session %d", sessionID)
			}
			return err
		}

		data = SheetData{
			SessionID:       session.ID,
			Code:            session.Code,
			Status:          session.Status,
			Type:            session.Type,
			SnapshotAt:      session.SnapshotAt,
			TotalItems:      session.TotalItems,
			ItemsScanned:    session.ItemsScanned,
			ProgressPercent: session.ProgressPercent,
		}
		if session.Location != nil {
			data.LocationName = session.Location.Name
			data.LocationCode = session.Location.Code
		}

		data.Lines = make([]SheetLine, 0)
		return tx.NewRaw(`
SELECT i.sku, i.name, soi.system_qty, soi.movement_qty, soi.effective_qty,
       soi.counted_qty, soi.variance_qty, soi.variance_value, soi.status
FROM stock_opname_items soi
JOIN items i ON i.id = soi.item_id
WHERE soi.session_id = ?
ORDER BY i.name ASC`, sessionID).Scan(ctx, &data.Lines)
	})
	return data, err
}
