package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// generateCode derives the human-readable session code:
// SO-<LOCATION>-<YYYYMMDD>-<nnn>, where nnn is 1 + the number of sessions
// already opened for that location today. Runs inside the caller's write tx,
// so the count cannot race with another creation.
func generateCode(ctx context.Context, tx bun.Tx, locationCode string, now time.Time) (string, error) {
	prefix := fmt.Sprintf("SO-%s-%s", locationCode, now.Format("20060102"))

	var count int
	err := tx.NewRaw(`SELECT COUNT(*) FROM stock_opname_sessions WHERE code LIKE ?`, prefix+"%").Scan(ctx, &count)
	if err != nil {
		return "", fmt.Errorf("count session codes: %w", err)
	}
	return fmt.Sprintf("%s-%03d", prefix, count+1), nil
}

// Create opens a new counting session for a location and snapshots the
// per-item system quantities into the session ledger. The session row, all
// ledger rows, and total_items come from one captured item_locations set and
// commit in one transaction.
func Create(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, identity auth.Identity, input CreateInput) (models.StockOpnameSession, error) {
	var session models.StockOpnameSession

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var location models.Location
		err := tx.NewSelect().Model(&location).Where("id = ?", input.LocationID).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return web.NotFoundf("location %d", input.LocationID)
			}
			return err
		}

		now := time.Now().UTC()
		code, err := generateCode(ctx, tx, location.Code, now)
		if err != nil {
			return err
		}

		var itemLocations []models.ItemLocation
		if err := tx.NewSelect().Model(&itemLocations).Where("location_id = ?", input.LocationID).Order("id ASC").Scan(ctx); err != nil {
			return err
		}

		userID := identity.UserID
		session = models.StockOpnameSession{
			Code:             code,
			LocationID:       input.LocationID,
			SnapshotAt:       &now,
			Type:             input.Type,
			Status:           models.SessionStatusPlanned,
			ScheduledStartAt: input.ScheduledStartAt,
			ScheduledEndAt:   input.ScheduledEndAt,
			Notes:            input.Notes,
			TotalItems:       len(itemLocations),
			ItemsScanned:     0,
			ProgressPercent:  0,
			CreatedBy:        &userID,
			CreatedAt:        now,
		}
		if _, err := tx.NewInsert().Model(&session).Exec(ctx); err != nil {
			return err
		}

		if len(itemLocations) > 0 {
			ledger := make([]models.StockOpnameItem, 0, len(itemLocations))
			for _, il := range itemLocations {
				ledger = append(ledger, models.StockOpnameItem{
					SessionID:    session.ID,
					ItemID:       il.ItemID,
					SystemQty:    il.SystemQty,
					EffectiveQty: il.SystemQty,
					Status:       models.OpnameItemStatusOK,
				})
			}
			if _, err := tx.NewInsert().Model(&ledger).Exec(ctx); err != nil {
				return err
			}
		}

		session.Location = &location
		return auditSvc.Write(ctx, tx, identity.UserID, "session.create", "stock_opname_sessions", audit.EntityID(session.ID), nil, session)
	})
	if err != nil {
		return models.StockOpnameSession{}, err
	}
	return session, nil
}

// List returns sessions newest-created first, optionally filtered by location.
func List(ctx context.Context, db *sqlite.DB, locationID *int64) ([]models.StockOpnameSession, error) {
	out := make([]models.StockOpnameSession, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&out).Relation("Location").Order("sos.created_at DESC", "sos.id DESC")
		if locationID != nil {
			q = q.Where("sos.location_id = ?", *locationID)
		}
		return q.Scan(ctx)
	})
	return out, err
}

// Get loads one session with its location.
func Get(ctx context.Context, db *sqlite.DB, id int64) (models.StockOpnameSession, error) {
	var session models.StockOpnameSession
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&session).Relation("Location").Where("sos.id = ?", id).Limit(1).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StockOpnameSession{}, web.NotFoundf("session %d", id)
		}
		return models.StockOpnameSession{}, err
	}
	return session, nil
}

// Start transitions a PLANNED session to IN_PROGRESS and stamps started_at.
// Any other current status is rejected: re-starting must not silently
// re-stamp the start time.
func Start(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, identity auth.Identity, id int64) (models.StockOpnameSession, error) {
	var session models.StockOpnameSession

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&session).Relation("Location").Where("sos.id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return web.NotFoundf("session %d", id)
			}
			return err
		}
		if session.Status != models.SessionStatusPlanned {
			return web.InvalidStatef("session %s is %s, not PLANNED", session.Code, session.Status)
		}

		before := session
		now := time.Now().UTC()
		session.Status = models.SessionStatusInProgress
		session.StartedAt = &now
		session.UpdatedAt = &now
		if _, err := tx.NewUpdate().Model(&session).
			Column("status", "started_at", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		return auditSvc.Write(ctx, tx, identity.UserID, "session.start", "stock_opname_sessions", audit.EntityID(session.ID), before, session)
	})
	if err != nil {
		return models.StockOpnameSession{}, err
	}
	return session, nil
}
