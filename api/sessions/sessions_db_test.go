package sessions

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
	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/sqlite"
	"opname/models"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sessions-test.db")
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

	seedUser(t, db, 1, "operator")
	return db
}

func seedUser(t *testing.T, db *sqlite.DB, id int64, username string) {
	t.Helper()
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role) VALUES (?, ?, 'x', 'operator')`, id, username)
		return err
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedLocation(t *testing.T, db *sqlite.DB, code string) int64 {
	t.Helper()
	var id int64
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		loc := models.Location{Code: code, Name: "Location " + code, Type: models.LocationTypeWarehouse, CreatedAt: time.Now().UTC()}
		if _, err := tx.NewInsert().Model(&loc).Exec(ctx); err != nil {
			return err
		}
		id = loc.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed location: %v", err)
	}
	return id
}

func seedItemWithStock(t *testing.T, db *sqlite.DB, sku string, locationID int64, systemQty float64) int64 {
	t.Helper()
	var id int64
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		item := models.Item{SKU: sku, Name: "Item " + sku, UOM: "PCS", CostPrice: 5, IsActive: true, CreatedAt: time.Now().UTC()}
		if _, err := tx.NewInsert().Model(&item).Exec(ctx); err != nil {
			return err
		}
		id = item.ID
		stock := models.ItemLocation{ItemID: item.ID, LocationID: locationID, SystemQty: systemQty}
		_, err := tx.NewInsert().Model(&stock).Exec(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("seed item with stock: %v", err)
	}
	return id
}

func testIdentity() auth.Identity {
	return auth.Identity{UserID: 1, Username: "operator", Role: auth.RoleOperator}
}

func TestCreate_GeneratesSequentialCodes(t *testing.T) {
	db := openTestDB(t)
	locID := seedLocation(t, db, "GDG-01")
	auditSvc := audit.NewService()

	day := time.Now().UTC().Format("20060102")
	for i := 1; i <= 3; i++ {
		session, err := Create(context.Background(), db, auditSvc, testIdentity(), CreateInput{LocationID: locID, Type: models.SessionTypeFull})
		if err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
		want := fmt.Sprintf("SO-GDG-01-%s-%03d", day, i)
		if session.Code != want {
			t.Fatalf("session code = %q, want %q", session.Code, want)
		}
	}
}

func TestCreate_SnapshotsLedger(t *testing.T) {
	db := openTestDB(t)
	locID := seedLocation(t, db, "GDG-01")
	itemA := seedItemWithStock(t, db, "SKU-A", locID, 10)
	itemB := seedItemWithStock(t, db, "SKU-B", locID, 4)

	// Stock at another location must not leak into the snapshot.
	otherLoc := seedLocation(t, db, "STR-01")
	seedItemWithStock(t, db, "SKU-C", otherLoc, 99)

	session, err := Create(context.Background(), db, audit.NewService(), testIdentity(), CreateInput{LocationID: locID, Type: models.SessionTypeFull})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if session.Status != models.SessionStatusPlanned {
		t.Fatalf("status = %q, want PLANNED", session.Status)
	}
	if session.TotalItems != 2 {
		t.Fatalf("total_items = %d, want 2", session.TotalItems)
	}
	if session.SnapshotAt == nil {
		t.Fatalf("snapshot_at not stamped")
	}

	var rows []models.StockOpnameItem
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rows).Where("session_id = ?", session.ID).Order("item_id ASC").Scan(ctx)
	})
	if err != nil {
		t.Fatalf("load ledger rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(rows))
	}
	if rows[0].ItemID != itemA || rows[0].SystemQty != 10 || rows[0].EffectiveQty != 10 || rows[0].CountedQty != 0 {
		t.Fatalf("ledger row A = %+v", rows[0])
	}
	if rows[1].ItemID != itemB || rows[1].SystemQty != 4 {
		t.Fatalf("ledger row B = %+v", rows[1])
	}
}

func TestCreate_UnknownLocation(t *testing.T) {
	db := openTestDB(t)

	_, err := Create(context.Background(), db, audit.NewService(), testIdentity(), CreateInput{LocationID: 999, Type: models.SessionTypeFull})
	if !errors.Is(err, web.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStart_TransitionsPlannedSession(t *testing.T) {
	db := openTestDB(t)
	locID := seedLocation(t, db, "GDG-01")
	auditSvc := audit.NewService()

	created, err := Create(context.Background(), db, auditSvc, testIdentity(), CreateInput{LocationID: locID, Type: models.SessionTypeFull})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	started, err := Start(context.Background(), db, auditSvc, testIdentity(), created.ID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if started.Status != models.SessionStatusInProgress {
		t.Fatalf("status = %q, want IN_PROGRESS", started.Status)
	}
	if started.StartedAt == nil {
		t.Fatalf("started_at not stamped")
	}
}

func TestStart_RejectsNonPlanned(t *testing.T) {
	db := openTestDB(t)
	locID := seedLocation(t, db, "GDG-01")
	auditSvc := audit.NewService()

	created, err := Create(context.Background(), db, auditSvc, testIdentity(), CreateInput{LocationID: locID, Type: models.SessionTypeFull})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := Start(context.Background(), db, auditSvc, testIdentity(), created.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err = Start(context.Background(), db, auditSvc, testIdentity(), created.ID)
	if !errors.Is(err, web.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestGet_MissingSession(t *testing.T) {
	db := openTestDB(t)

	_, err := Get(context.Background(), db, 42)
	if !errors.Is(err, web.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestList_FiltersByLocation(t *testing.T) {
	db := openTestDB(t)
	locA := seedLocation(t, db, "GDG-01")
	locB := seedLocation(t, db, "STR-01")
	auditSvc := audit.NewService()

	for _, locID := range []int64{locA, locA, locB} {
		if _, err := Create(context.Background(), db, auditSvc, testIdentity(), CreateInput{LocationID: locID, Type: models.SessionTypeFull}); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	all, err := List(context.Background(), db, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all sessions = %d, want 3", len(all))
	}
	// Newest first.
	if all[0].ID < all[1].ID || all[1].ID < all[2].ID {
		t.Fatalf("sessions not newest-first: %d, %d, %d", all[0].ID, all[1].ID, all[2].ID)
	}

	filtered, err := List(context.Background(), db, &locB)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].LocationID != locB {
		t.Fatalf("filtered = %+v", filtered)
	}
}
