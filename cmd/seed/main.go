package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/uptrace/bun"

	"opname/api/login"
	"opname/infrastructure/auth"
	"opname/infrastructure/config"
	"opname/infrastructure/sqlite"
	"opname/models"
)

func main() {
	cfg := config.Load()

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	adminPassword := getenv("ADMIN_PASSWORD", "Admin123!Opname")
	if err := login.UpsertUser(ctx, db, "admin", "Administrator", auth.RoleAdmin, adminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	operatorPassword := getenv("OPERATOR_PASSWORD", "Operator123!Opname")
	if err := login.UpsertUser(ctx, db, "operator", "Count Operator", auth.RoleOperator, operatorPassword); err != nil {
		log.Fatalf("seed operator: %v", err)
	}
	fmt.Println("seeded users: admin, operator")

	if os.Getenv("SEED_DEMO") == "1" {
		if err := seedDemoData(ctx, db); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
		fmt.Println("seeded demo master data")
	}
}

// seedDemoData loads a small location/item/tag fixture for local runs.
// Safe to re-run; existing rows are left alone.
func seedDemoData(ctx context.Context, db *sqlite.DB) error {
	now := time.Now().UTC()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		loc := models.Location{Code: "GDG-01", Name: "Main Warehouse", Type: models.LocationTypeWarehouse, CreatedAt: now}
		if _, err := tx.NewInsert().Model(&loc).On("CONFLICT (code) DO UPDATE SET name = EXCLUDED.name").Returning("id").Exec(ctx); err != nil {
			return err
		}

		items := []models.Item{
			{SKU: "SKU-001", Name: "Blue Widget", Category: "WIDGETS", UOM: "PCS", CostPrice: 12.5, SellPrice: 19.9, IsActive: true, CreatedAt: now},
			{SKU: "SKU-002", Name: "Red Widget", Category: "WIDGETS", UOM: "PCS", CostPrice: 14.0, SellPrice: 22.5, IsActive: true, CreatedAt: now},
		}
		for i := range items {
			if _, err := tx.NewInsert().Model(&items[i]).On("CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name").Returning("id").Exec(ctx); err != nil {
				return err
			}

			stock := models.ItemLocation{ItemID: items[i].ID, LocationID: loc.ID, SystemQty: 10}
			if _, err := tx.NewInsert().Model(&stock).On("CONFLICT (item_id, location_id) DO NOTHING").Exec(ctx); err != nil {
				return err
			}

			for n := 1; n <= 3; n++ {
				tag := models.RFIDTag{
					TagUID:    fmt.Sprintf("E28011%02d-%04d", i+1, n),
					ItemID:    items[i].ID,
					Status:    models.TagStatusActive,
					CreatedAt: now,
				}
				if _, err := tx.NewInsert().Model(&tag).On("CONFLICT (tag_uid) DO NOTHING").Exec(ctx); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
