package scans

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// ProcessBatch applies one RFID scan batch to an IN_PROGRESS session.
//
// The whole batch is one write transaction: scan audit rows, ledger updates
// and the session progress recompute commit together or not at all. The
// single write connection serializes concurrent batches for the same
// session, so counted_qty accumulation never loses an update.
func ProcessBatch(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, identity auth.Identity, sessionID int64, input BatchInput) (models.StockOpnameSession, error) {
	var session models.StockOpnameSession

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&session).Relation("Location").Where("sos.id = ?", sessionID).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return web.NotFoundf("session %d", sessionID)
			}
			return err
		}
		if session.Status != models.SessionStatusInProgress {
			return web.InvalidStatef("session %s is %s, not IN_PROGRESS", session.Code, session.Status)
		}

		now := time.Now().UTC()
		scannedAt := now
		if input.ScannedAt != nil {
			scannedAt = input.ScannedAt.UTC()
		}

		newTags, err := filterNewTags(ctx, tx, sessionID, input.Tags)
		if err != nil {
			return err
		}

		// All-duplicate batch: touch the session and stop.
		if len(newTags) == 0 {
			session.UpdatedAt = &now
			_, err := tx.NewUpdate().Model(&session).Column("updated_at").WherePK().Exec(ctx)
			return err
		}

		tagItem, counts, err := resolveTags(ctx, tx, newTags)
		if err != nil {
			return err
		}

		batchRef := uuid.NewString()
		userID := identity.UserID
		scanRows := make([]models.StockOpnameScan, 0, len(newTags))
		for _, tag := range newTags {
			scanRows = append(scanRows, models.StockOpnameScan{
				SessionID: sessionID,
				TagUID:    tag,
				ItemID:    tagItem[tag],
				Zone:      input.Zone,
				BatchRef:  batchRef,
				ScannedAt: scannedAt,
				ScannedBy: &userID,
			})
		}
		if _, err := tx.NewInsert().Model(&scanRows).Exec(ctx); err != nil {
			return err
		}

		// Stable write order across runs.
		itemIDs := make([]int64, 0, len(counts))
		for itemID := range counts {
			itemIDs = append(itemIDs, itemID)
		}
		sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

		for _, itemID := range itemIDs {
			if err := reconcileItem(ctx, tx, &session, itemID, counts[itemID]); err != nil {
				return err
			}
		}

		var itemsScanned int
		if err := tx.NewRaw(`SELECT COUNT(*) FROM stock_opname_items WHERE session_id = ? AND counted_qty > 0`, sessionID).Scan(ctx, &itemsScanned); err != nil {
			return err
		}
		session.ItemsScanned = itemsScanned
		session.ProgressPercent = 0
		if session.TotalItems > 0 {
			session.ProgressPercent = float64(itemsScanned) * 100.0 / float64(session.TotalItems)
		}
		session.UpdatedAt = &now
		if _, err := tx.NewUpdate().Model(&session).
			Column("items_scanned", "progress_percent", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		summary := batchSummary{
			BatchRef:     batchRef,
			NewTags:      len(newTags),
			DuplicateTag: len(input.Tags) - len(newTags),
			ItemsTouched: len(counts),
		}
		return auditSvc.Write(ctx, tx, identity.UserID, "session.scan_batch", "stock_opname_sessions", audit.EntityID(sessionID), nil, summary)
	})
	if err != nil {
		return models.StockOpnameSession{}, err
	}
	return session, nil
}

// filterNewTags drops tags already persisted for this session, preserving
// first-seen order. Repeats within the incoming batch are kept: only
// persisted state deduplicates.
func filterNewTags(ctx context.Context, tx bun.Tx, sessionID int64, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var existing []string
	err := tx.NewSelect().
		Model((*models.StockOpnameScan)(nil)).
		Column("tag_uid").
		Where("session_id = ?", sessionID).
		Where("tag_uid IN (?)", bun.In(tags)).
		Scan(ctx, &existing)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, tag := range existing {
		seen[tag] = struct{}{}
	}

	newTags := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; !dup {
			newTags = append(newTags, tag)
		}
	}
	return newTags, nil
}

// resolveTags maps tag UIDs to item IDs through the RFID registry. Every
// registered tag keeps its item reference on the scan row, but only ACTIVE
// tags contribute to the per-item counts; LOST/DAMAGED reads are audit-only,
// like unregistered tags.
func resolveTags(ctx context.Context, tx bun.Tx, tags []string) (map[string]*int64, map[int64]float64, error) {
	var rows []models.RFIDTag
	err := tx.NewSelect().Model(&rows).Where("tag_uid IN (?)", bun.In(tags)).Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	registry := make(map[string]models.RFIDTag, len(rows))
	for _, row := range rows {
		registry[row.TagUID] = row
	}

	tagItem := make(map[string]*int64, len(tags))
	counts := make(map[int64]float64)
	for _, tag := range tags {
		row, ok := registry[tag]
		if !ok {
			tagItem[tag] = nil
			continue
		}
		itemID := row.ItemID
		tagItem[tag] = &itemID
		if row.Status == models.TagStatusActive {
			counts[itemID]++
		}
	}
	return tagItem, counts, nil
}

// reconcileItem folds newCount freshly-scanned tags into the session ledger
// row for itemID, creating the row lazily when the item was not part of the
// snapshot.
func reconcileItem(ctx context.Context, tx bun.Tx, session *models.StockOpnameSession, itemID int64, newCount float64) error {
	var row models.StockOpnameItem
	err := tx.NewSelect().Model(&row).
		Where("session_id = ?", session.ID).
		Where("item_id = ?", itemID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		// Item appeared at the location after the snapshot: start from zero.
		row = models.StockOpnameItem{
			SessionID: session.ID,
			ItemID:    itemID,
			Status:    models.OpnameItemStatusOK,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
	}

	row.CountedQty += newCount

	movementQty, err := movementQtySince(ctx, tx, itemID, session.LocationID, session.SnapshotAt)
	if err != nil {
		return err
	}
	row.MovementQty = movementQty
	row.EffectiveQty = row.SystemQty + row.MovementQty
	row.VarianceQty = row.CountedQty - row.EffectiveQty

	switch {
	case row.VarianceQty == 0:
		row.Status = models.OpnameItemStatusOK
	case row.VarianceQty > 0:
		row.Status = models.OpnameItemStatusOver
	default:
		row.Status = models.OpnameItemStatusShort
	}

	costPrice, err := itemCostPrice(ctx, tx, itemID)
	if err != nil {
		return err
	}
	row.VarianceValue = row.VarianceQty * costPrice

	_, err = tx.NewUpdate().Model(&row).
		Column("counted_qty", "movement_qty", "effective_qty", "variance_qty", "variance_value", "status").
		WherePK().
		Exec(ctx)
	return err
}

// movementQtySince sums signed quantity deltas for item+location strictly
// after the snapshot. No snapshot timestamp or no movements means zero: an
// absent sum must never surface as a missing effective quantity.
func movementQtySince(ctx context.Context, tx bun.Tx, itemID, locationID int64, snapshotAt *time.Time) (float64, error) {
	if snapshotAt == nil {
		return 0, nil
	}
	var total float64
	err := tx.NewRaw(`
SELECT COALESCE(SUM(qty_change), 0)
FROM inventory_movements
WHERE item_id = ? AND location_id = ? AND created_at > ?`,
		itemID, locationID, snapshotAt.UTC()).Scan(ctx, &total)
	return total, err
}

// itemCostPrice returns the item's cost price, or 0 when the item master
// record is missing.
func itemCostPrice(ctx context.Context, tx bun.Tx, itemID int64) (float64, error) {
	var cost float64
	err := tx.NewRaw(`SELECT cost_price FROM items WHERE id = ?`, itemID).Scan(ctx, &cost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return cost, nil
}
