package movements

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "movements-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func seedItemAndLocation(t *testing.T, db *sqlite.DB) (itemID, locationID int64) {
	t.Helper()
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		loc := models.Location{Code: "GDG-01", Name: "Main Warehouse", Type: models.LocationTypeWarehouse, CreatedAt: now}
		if _, err := tx.NewInsert().Model(&loc).Exec(ctx); err != nil {
			return err
		}
		locationID = loc.ID

		item := models.Item{SKU: "SKU-001", Name: "Blue Widget", UOM: "PCS", IsActive: true, CreatedAt: now}
		if _, err := tx.NewInsert().Model(&item).Exec(ctx); err != nil {
			return err
		}
		itemID = item.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed item and location: %v", err)
	}
	return itemID, locationID
}

func TestCreate_RecordsMovement(t *testing.T) {
	db := openTestDB(t)
	itemID, locationID := seedItemAndLocation(t, db)

	movement, err := Create(context.Background(), db, CreateInput{
		ItemID:      itemID,
		LocationID:  locationID,
		QtyChange:   -3,
		Reason:      models.MovementReasonSale,
		ReferenceID: "INV-1001",
	})
	if err != nil {
		t.Fatalf("create movement: %v", err)
	}
	if movement.ID == 0 {
		t.Fatalf("movement ID not assigned")
	}
	if movement.QtyChange != -3 || movement.Reason != models.MovementReasonSale {
		t.Fatalf("movement = %+v", movement)
	}
}

func TestCreate_UnknownItem(t *testing.T) {
	db := openTestDB(t)
	_, locationID := seedItemAndLocation(t, db)

	_, err := Create(context.Background(), db, CreateInput{
		ItemID:     999,
		LocationID: locationID,
		QtyChange:  1,
		Reason:     models.MovementReasonRestock,
	})
	if !errors.Is(err, web.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreate_UnknownLocation(t *testing.T) {
	db := openTestDB(t)
	itemID, _ := seedItemAndLocation(t, db)

	_, err := Create(context.Background(), db, CreateInput{
		ItemID:     itemID,
		LocationID: 999,
		QtyChange:  1,
		Reason:     models.MovementReasonRestock,
	})
	if !errors.Is(err, web.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	db := openTestDB(t)
	itemID, locationID := seedItemAndLocation(t, db)

	for i := 1; i <= 3; i++ {
		_, err := Create(context.Background(), db, CreateInput{
			ItemID:      itemID,
			LocationID:  locationID,
			QtyChange:   float64(i),
			Reason:      models.MovementReasonRestock,
			ReferenceID: fmt.Sprintf("PO-%d", i),
		})
		if err != nil {
			t.Fatalf("create movement %d: %v", i, err)
		}
	}

	all, err := List(context.Background(), db, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("movements = %d, want 3", len(all))
	}
	if all[0].ReferenceID != "PO-3" {
		t.Fatalf("first movement = %+v, want newest", all[0])
	}

	other := int64(999)
	filtered, err := List(context.Background(), db, &other, nil)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("filtered = %d, want 0", len(filtered))
	}

	byItem, err := List(context.Background(), db, &itemID, &locationID)
	if err != nil {
		t.Fatalf("list by item: %v", err)
	}
	if len(byItem) != 3 {
		t.Fatalf("by item = %d, want 3", len(byItem))
	}
}
