package sessions

import (
	"net/http"
	"strings"

	"opname/api/web"
	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// CreateSessionHandler opens a counting session and snapshots system
// quantities for the location.
func CreateSessionHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
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

		identity, _ := auth.IdentityFromContext(r.Context())
		session, err := Create(r.Context(), db, auditSvc, identity, input)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusCreated, session)
	}
}

func validateCreate(req createRequest) (CreateInput, error) {
	if req.LocationID <= 0 {
		return CreateInput{}, web.Validationf("location_id is required")
	}
	sessionType := strings.ToUpper(strings.TrimSpace(req.Type))
	if sessionType != models.SessionTypeFull && sessionType != models.SessionTypePartial {
		return CreateInput{}, web.Validationf("type must be FULL or PARTIAL")
	}
	return CreateInput{
		LocationID:       req.LocationID,
		Type:             sessionType,
		ScheduledStartAt: req.ScheduledStartAt,
		ScheduledEndAt:   req.ScheduledEndAt,
		Notes:            strings.TrimSpace(req.Notes),
	}, nil
}

// ListSessionsHandler returns sessions newest first, optionally filtered by
// location_id.
func ListSessionsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := web.QueryInt64(r, "location_id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		out, err := List(r.Context(), db, locationID)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, out)
	}
}

// GetSessionHandler returns one session by id.
func GetSessionHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := web.IDParam(r, "id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		session, err := Get(r.Context(), db, id)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, session)
	}
}

// StartSessionHandler moves a PLANNED session to IN_PROGRESS.
func StartSessionHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := web.IDParam(r, "id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		identity, _ := auth.IdentityFromContext(r.Context())
		session, err := Start(r.Context(), db, auditSvc, identity, id)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, session)
	}
}
