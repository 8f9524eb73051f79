package reports

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reports-test.db")
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

func sampleSheetData() SheetData {
	now := time.Now().UTC()
	return SheetData{
		SessionID:       1,
		Code:            "SO-GDG-01-20260830-001",
		LocationName:    "Main Warehouse",
		LocationCode:    "GDG-01",
		Status:          models.SessionStatusReview,
		Type:            models.SessionTypeFull,
		SnapshotAt:      &now,
		TotalItems:      2,
		ItemsScanned:    2,
		ProgressPercent: 100,
		Lines: []SheetLine{
			{SKU: "SKU-001", Name: "Blue Widget", SystemQty: 10, EffectiveQty: 10, CountedQty: 3, VarianceQty: -7, VarianceValue: -87.5, Status: models.OpnameItemStatusShort},
			{SKU: "SKU-002", Name: "Red Widget", SystemQty: 4, MovementQty: 1, EffectiveQty: 5, CountedQty: 5, Status: models.OpnameItemStatusOK},
		},
	}
}

func TestLoadSheetData(t *testing.T) {
	db := openTestDB(t)

	var sessionID int64
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		loc := models.Location{Code: "GDG-01", Name: "Main Warehouse", Type: models.LocationTypeWarehouse, CreatedAt: now}
		if _, err := tx.NewInsert().Model(&loc).Exec(ctx); err != nil {
			return err
		}
		session := models.StockOpnameSession{
			Code:       "SO-GDG-01-20260830-001",
			LocationID: loc.ID,
			SnapshotAt: &now,
			Type:       models.SessionTypeFull,
			Status:     models.SessionStatusInProgress,
			TotalItems: 1,
			CreatedAt:  now,
		}
		if _, err := tx.NewInsert().Model(&session).Exec(ctx); err != nil {
			return err
		}
		sessionID = session.ID

		item := models.Item{SKU: "SKU-001", Name: "Blue Widget", UOM: "PCS", CostPrice: 12.5, IsActive: true, CreatedAt: now}
		if _, err := tx.NewInsert().Model(&item).Exec(ctx); err != nil {
			return err
		}
		ledger := models.StockOpnameItem{
			SessionID: session.ID, ItemID: item.ID,
			SystemQty: 10, EffectiveQty: 10, CountedQty: 3, VarianceQty: -7, VarianceValue: -87.5,
			Status: models.OpnameItemStatusShort,
		}
		_, err := tx.NewInsert().Model(&ledger).Exec(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("seed data: %v", err)
	}

	data, err := LoadSheetData(context.Background(), db, sessionID)
	if err != nil {
		t.Fatalf("load sheet data: %v", err)
	}
	if data.Code != "SO-GDG-01-20260830-001" || data.LocationCode != "GDG-01" {
		t.Fatalf("header = %+v", data)
	}
	if len(data.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(data.Lines))
	}
	line := data.Lines[0]
	if line.SKU != "SKU-001" || line.VarianceQty != -7 || line.Status != models.OpnameItemStatusShort {
		t.Fatalf("line = %+v", line)
	}
}

func TestLoadSheetData_MissingSession(t *testing.T) {
	db := openTestDB(t)

	_, err := LoadSheetData(context.Background(), db, 42)
	if !errors.Is(err, web.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRenderCountSheetPDF(t *testing.T) {
	out, err := renderCountSheetPDF(sampleSheetData(), time.Now())
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Fatalf("pdf suspiciously small: %d bytes", len(out))
	}
}

func TestWriteVarianceCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeVarianceCSV(&buf, sampleSheetData()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "session_code,sku,item") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "SKU-001") || !strings.Contains(lines[1], "-7.000") || !strings.Contains(lines[1], "-87.50") {
		t.Fatalf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "SKU-002") || !strings.Contains(lines[2], "OK") {
		t.Fatalf("second row = %q", lines[2])
	}
}
