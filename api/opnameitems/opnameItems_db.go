package opnameitems

import (
	"context"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// List returns per-item reconciliation rows for a session, joined with item
// info and ordered by item name. An optional status filter narrows to
// OK/OVER/SHORT rows.
func List(ctx context.Context, db *sqlite.DB, sessionID int64, status string) ([]Row, error) {
	rows := make([]Row, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.StockOpnameSession)(nil)).Where("id = ?", sessionID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return web.NotFoundf("session %d", sessionID)
		}

		q := `
SELECT soi.item_id, i.sku, i.name,
       CAST(ROUND(soi.system_qty) AS INTEGER) AS system_qty,
       CAST(ROUND(soi.movement_qty) AS INTEGER) AS movement_qty,
       CAST(ROUND(soi.effective_qty) AS INTEGER) AS effective_qty,
       CAST(ROUND(soi.counted_qty) AS INTEGER) AS counted_qty,
       CAST(ROUND(soi.variance_qty) AS INTEGER) AS variance_qty,
       soi.variance_value, soi.status
FROM stock_opname_items soi
JOIN items i ON i.id = soi.item_id
WHERE soi.session_id = ?`
		args := []any{sessionID}
		if status != "" {
			q += " AND soi.status = ?"
			args = append(args, status)
		}
		q += " ORDER BY i.name ASC"

		return tx.NewRaw(q, args...).Scan(ctx, &rows)
	})
	return rows, err
}

// ListWithTags returns the same rows with the ACTIVE tag UIDs registered for
// each item attached.
func ListWithTags(ctx context.Context, db *sqlite.DB, sessionID int64, status string) ([]Row, error) {
	rows, err := List(ctx, db, sessionID, status)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	itemIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		itemIDs = append(itemIDs, row.ItemID)
	}

	var tagRows []struct {
		ItemID int64  `bun:"item_id"`
		TagUID string `bun:"tag_uid"`
	}
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model((*models.RFIDTag)(nil)).
			Column("item_id", "tag_uid").
			Where("item_id IN (?)", bun.In(itemIDs)).
			Where("status = ?", models.TagStatusActive).
			OrderExpr("item_id ASC, tag_uid ASC").
			Scan(ctx, &tagRows)
	})
	if err != nil {
		return nil, err
	}

	tagsByItem := make(map[int64][]string, len(rows))
	for _, tr := range tagRows {
		tagsByItem[tr.ItemID] = append(tagsByItem[tr.ItemID], tr.TagUID)
	}
	for i := range rows {
		rows[i].ItemCodes = tagsByItem[rows[i].ItemID]
		if rows[i].ItemCodes == nil {
			rows[i].ItemCodes = []string{}
		}
	}
	return rows, nil
}
