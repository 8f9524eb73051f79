package masterdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"opname/api/web"
	"opname/infrastructure/audit"
	"opname/infrastructure/sqlite"
	"opname/models"
)

func createLocation(ctx context.Context, db *sqlite.DB, location *models.Location) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Location)(nil)).Where("code = ?", location.Code).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return web.Validationf("location code %s already exists", location.Code)
		}
		_, err = tx.NewInsert().Model(location).Exec(ctx)
		return err
	})
}

func listLocations(ctx context.Context, db *sqlite.DB) ([]models.Location, error) {
	out := make([]models.Location, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&out).Order("code ASC").Scan(ctx)
	})
	return out, err
}

func createItem(ctx context.Context, db *sqlite.DB, item *models.Item) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Item)(nil)).Where("sku = ?", item.SKU).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return web.Validationf("sku %s already exists", item.SKU)
		}
		_, err = tx.NewInsert().Model(item).Exec(ctx)
		return err
	})
}

func listItems(ctx context.Context, db *sqlite.DB) ([]models.Item, error) {
	out := make([]models.Item, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&out).Order("sku ASC").Scan(ctx)
	})
	return out, err
}

func registerTag(ctx context.Context, db *sqlite.DB, tag *models.RFIDTag) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		itemExists, err := tx.NewSelect().Model((*models.Item)(nil)).Where("id = ?", tag.ItemID).Exists(ctx)
		if err != nil {
			return err
		}
		if !itemExists {
			return web.NotFoundf("item %d", tag.ItemID)
		}
		uidExists, err := tx.NewSelect().Model((*models.RFIDTag)(nil)).Where("tag_uid = ?", tag.TagUID).Exists(ctx)
		if err != nil {
			return err
		}
		if uidExists {
			return web.Validationf("tag uid %s already registered", tag.TagUID)
		}
		_, err = tx.NewInsert().Model(tag).Exec(ctx)
		return err
	})
}

// setStock upserts the authoritative system quantity of an item at a
// location.
func setStock(ctx context.Context, db *sqlite.DB, itemID, locationID int64, systemQty float64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		itemExists, err := tx.NewSelect().Model((*models.Item)(nil)).Where("id = ?", itemID).Exists(ctx)
		if err != nil {
			return err
		}
		if !itemExists {
			return web.NotFoundf("item %d", itemID)
		}
		locationExists, err := tx.NewSelect().Model((*models.Location)(nil)).Where("id = ?", locationID).Exists(ctx)
		if err != nil {
			return err
		}
		if !locationExists {
			return web.NotFoundf("location %d", locationID)
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO item_locations (item_id, location_id, system_qty)
VALUES (?, ?, ?)
ON CONFLICT(item_id, location_id) DO UPDATE SET system_qty = excluded.system_qty`,
			itemID, locationID, systemQty)
		return err
	})
}

// ImportItemsCSV upserts item master rows from a CSV stream with header
// sku,name,cost_price. Rows that fail to parse are counted and skipped; the
// import itself commits as one transaction.
func ImportItemsCSV(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return summary, web.Validationf("read csv header")
	}
	if len(header) < 3 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "sku") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "name") ||
		!strings.EqualFold(strings.TrimSpace(header[2]), "cost_price") {
		return summary, web.Validationf("invalid CSV header; expected sku,name,cost_price")
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				summary.Errors++
				continue
			}
			if len(record) < 3 {
				summary.Errors++
				continue
			}

			sku := strings.TrimSpace(record[0])
			name := strings.TrimSpace(record[1])
			costPrice, parseErr := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
			if sku == "" || name == "" || parseErr != nil {
				summary.Errors++
				continue
			}

			exists, err := tx.NewSelect().Model((*models.Item)(nil)).Where("sku = ?", sku).Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				now := time.Now().UTC()
				if _, err := tx.ExecContext(ctx, `UPDATE items SET name = ?, cost_price = ?, updated_at = ? WHERE sku = ?`, name, costPrice, now, sku); err != nil {
					return err
				}
				summary.Updated++
				continue
			}
			item := models.Item{SKU: sku, Name: name, UOM: "PCS", CostPrice: costPrice, IsActive: true, CreatedAt: time.Now().UTC()}
			if _, err := tx.NewInsert().Model(&item).Exec(ctx); err != nil {
				return err
			}
			summary.Inserted++
		}

		return auditSvc.Write(ctx, tx, userID, "items.import", "items", "csv",
			nil, fmt.Sprintf("inserted=%d updated=%d errors=%d", summary.Inserted, summary.Updated, summary.Errors))
	})
	return summary, err
}
