package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"opname/api/web"
	"opname/infrastructure/sqlite"
)

// CountSheetPDFHandler renders the printable count sheet for a session.
func CountSheetPDFHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := web.IDParam(r, "id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		data, err := LoadSheetData(r.Context(), db, sessionID)
		if err != nil {
			web.DomainError(w, err)
			return
		}

		pdfBytes, err := renderCountSheetPDF(data, time.Now())
		if err != nil {
			web.DomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", data.Code+".pdf"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdfBytes)
	}
}

// VarianceCSVHandler streams the session's reconciliation lines as CSV.
func VarianceCSVHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := web.IDParam(r, "id")
		if err != nil {
			web.DomainError(w, err)
			return
		}
		data, err := LoadSheetData(r.Context(), db, sessionID)
		if err != nil {
			web.DomainError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := writeVarianceCSV(&buf, data); err != nil {
			web.DomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", data.Code+".csv"))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
