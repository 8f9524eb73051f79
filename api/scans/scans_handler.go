package scans

import (
	"net/http"
	"strings"

	"opname/api/web"
	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/sqlite"
)

// SubmitBatchHandler applies a scan batch to a session and returns the
// updated session record.
func SubmitBatchHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := web.IDParam(r, "id")
		if err != nil {
			web.DomainError(w, err)
			return
		}

		var req batchRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}
		input, err := validateBatch(req)
		if err != nil {
			web.DomainError(w, err)
			return
		}

		identity, _ := auth.IdentityFromContext(r.Context())
		session, err := ProcessBatch(r.Context(), db, auditSvc, identity, sessionID, input)
		if err != nil {
			web.DomainError(w, err)
			return
		}
		web.JSON(w, http.StatusOK, session)
	}
}

func validateBatch(req batchRequest) (BatchInput, error) {
	if len(req.Tags) == 0 {
		return BatchInput{}, web.Validationf("tags must not be empty")
	}
	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return BatchInput{}, web.Validationf("tags must not contain blank entries")
		}
		tags = append(tags, tag)
	}
	return BatchInput{
		Zone:      strings.TrimSpace(req.Zone),
		ScannedAt: req.ScannedAt,
		Tags:      tags,
	}, nil
}
