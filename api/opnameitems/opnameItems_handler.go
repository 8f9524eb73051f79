package opnameitems

import (
	"context"
	"net/http"
	"strings"

	"opname/api/web"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// ListItemsHandler returns per-item reconciliation rows for a session.
func ListItemsHandler(db *sqlite.DB) http.HandlerFunc {
	return listHandler(db, List)
}

// ListItemsWithTagsHandler returns the rows with resolved ACTIVE tag lists.
func ListItemsWithTagsHandler(db *sqlite.DB) http.HandlerFunc {
	return listHandler(db, ListWithTags)
}

type loadFunc func(ctx context.Context, db *sqlite.DB, sessionID int64, status string) ([]Row, error)

func listHandler(db *sqlite.DB, load loadFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := web.IDParam(r, "id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		status, err := parseStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			web.DomainError(w, err)
			return
		}

		rows, err := load(r.Context(), db, sessionID, status)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, rows)
	}
}

func parseStatusFilter(raw string) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	switch status {
	case "", models.OpnameItemStatusOK, models.OpnameItemStatusOver, models.OpnameItemStatusShort:
		return status, nil
	}
	return "", web.Validationf("status must be OK, OVER or SHORT")
}
