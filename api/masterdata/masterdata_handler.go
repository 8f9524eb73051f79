package masterdata

import (
	"net/http"
	"strings"
	"time"

	"opname/api/web"
	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// CreateLocationHandler registers a new physical site.
func CreateLocationHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLocationRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}

		locationType := strings.ToUpper(strings.TrimSpace(req.Type))
		if locationType != models.LocationTypeStore && locationType != models.LocationTypeWarehouse {
			web.DomainError(w, web.Validationf("type must be STORE or WAREHOUSE"))
			return
		}
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		name := strings.TrimSpace(req.Name)
		if code == "" || name == "" {
			web.DomainError(w, web.Validationf("name and code are required"))
			return
		}

		location := models.Location{Name: name, Code: code, Type: locationType, CreatedAt: time.Now().UTC()}
		if err := createLocation(r.Context(), db, &location); err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusCreated, location)
	}
}

// ListLocationsHandler lists all locations ordered by code.
func ListLocationsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := listLocations(r.Context(), db)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

// CreateItemHandler registers a new stock-keeping unit.
func CreateItemHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}

		sku := strings.TrimSpace(req.SKU)
		name := strings.TrimSpace(req.Name)
		if sku == "" || name == "" {
			web.DomainError(w, web.Validationf("sku and name are required"))
			return
		}
		uom := strings.TrimSpace(req.UOM)
		if uom == "" {
			uom = "PCS"
		}

		item := models.Item{
			SKU:       sku,
			Name:      name,
			Category:  strings.TrimSpace(req.Category),
			UOM:       uom,
			CostPrice: req.CostPrice,
			SellPrice: req.SellPrice,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := createItem(r.Context(), db, &item); err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusCreated, item)
	}
}

// ListItemsHandler lists the item master ordered by SKU.
func ListItemsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := listItems(r.Context(), db)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

// RegisterTagHandler binds an RFID tag UID to an item.
func RegisterTagHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTagRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}

		uid := strings.TrimSpace(req.TagUID)
		if uid == "" || req.ItemID <= 0 {
			web.DomainError(w, web.Validationf("tag_uid and item_id are required"))
			return
		}
		status := strings.ToUpper(strings.TrimSpace(req.Status))
		if status == "" {
			status = models.TagStatusActive
		}
		if status != models.TagStatusActive && status != models.TagStatusLost && status != models.TagStatusDamaged {
			web.DomainError(w, web.Validationf("status must be ACTIVE, LOST or DAMAGED"))
			return
		}

		tag := models.RFIDTag{
			TagUID:     uid,
			ItemID:     req.ItemID,
			LocationID: req.LocationID,
			Status:     status,
			CreatedAt:  time.Now().UTC(),
		}
		if err := registerTag(r.Context(), db, &tag); err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusCreated, tag)
	}
}

// SetStockHandler upserts the system quantity of an item at a location.
func SetStockHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setStockRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}
		if req.ItemID <= 0 || req.LocationID <= 0 {
			web.DomainError(w, web.Validationf("item_id and location_id are required"))
			return
		}

		if err := setStock(r.Context(), db, req.ItemID, req.LocationID, req.SystemQty); err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, models.ItemLocation{ItemID: req.ItemID, LocationID: req.LocationID, SystemQty: req.SystemQty})
	}
}

// ImportItemsHandler ingests an item master CSV (sku,name,cost_price).
func ImportItemsHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())
		summary, err := ImportItemsCSV(r.Context(), db, auditSvc, identity.UserID, r.Body)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, summary)
	}
}
