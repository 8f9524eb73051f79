package movements

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// listLimit caps the movement listing at the most recent entries.
const listLimit = 200

// Create appends one signed quantity-change event to the movement ledger.
func Create(ctx context.Context, db *sqlite.DB, input CreateInput) (models.InventoryMovement, error) {
	movement := models.InventoryMovement{
		ItemID:      input.ItemID,
		LocationID:  input.LocationID,
		QtyChange:   input.QtyChange,
		Reason:      input.Reason,
		ReferenceID: input.ReferenceID,
		CreatedAt:   time.Now().UTC(),
	}

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		itemExists, err := tx.NewSelect().Model((*models.Item)(nil)).Where("id = ?", input.ItemID).Exists(ctx)
		if err != nil {
			return err
		}
		if !itemExists {
			return web.NotFoundf("item %d", input.ItemID)
		}
		locationExists, err := tx.NewSelect().Model((*models.Location)(nil)).Where("id = ?", input.LocationID).Exists(ctx)
		if err != nil {
			return err
		}
		if !locationExists {
			return web.NotFoundf("location %d", input.LocationID)
		}

		_, err = tx.NewInsert().Model(&movement).Exec(ctx)
		return err
	})
	if err != nil {
		return models.InventoryMovement{}, err
	}
	return movement, nil
}

// List returns the most recent movements, newest first, optionally filtered
// by item and/or location.
func List(ctx context.Context, db *sqlite.DB, itemID, locationID *int64) ([]models.InventoryMovement, error) {
	out := make([]models.InventoryMovement, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&out).Order("created_at DESC", "id DESC").Limit(listLimit)
		if itemID != nil {
			q = q.Where("item_id = ?", *itemID)
		}
		if locationID != nil {
			q = q.Where("location_id = ?", *locationID)
		}
		return q.Scan(ctx)
	})
	return out, err
}
