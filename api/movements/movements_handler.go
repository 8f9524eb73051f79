package movements

import (
	"net/http"
	"strings"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// CreateMovementHandler records an inventory movement event.
func CreateMovementHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}
		input, err := validateCreate(req)
		if err != nil {
			web.DomainError(w, err)
			return
		}

		movement, err := Create(r.Context(), db, input)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusCreated, movement)
	}
}

func validateCreate(req createRequest) (CreateInput, error) {
	if req.ItemID <= 0 {
		return CreateInput{}, web.Validationf("item_id is required")
	}
	if req.LocationID <= 0 {
		return CreateInput{}, web.Validationf("location_id is required")
	}
	if req.QtyChange == 0 {
		return CreateInput{}, web.Validationf("qty_change must not be zero")
	}
	reason := strings.ToUpper(strings.TrimSpace(req.Reason))
	if !models.ValidMovementReason(reason) {
		return CreateInput{}, web.Validationf("unknown movement reason %q", req.Reason)
	}
	return CreateInput{
		ItemID:      req.ItemID,
		LocationID:  req.LocationID,
		QtyChange:   req.QtyChange,
		Reason:      reason,
		ReferenceID: strings.TrimSpace(req.ReferenceID),
	}, nil
}

// ListMovementsHandler returns the most recent movements, newest first.
func ListMovementsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := web.QueryInt64(r, "item_id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		locationID, err := web.QueryInt64(r, "location_id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		out, err := List(r.Context(), db, itemID, locationID)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}
