package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDomainError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: NotFoundf("session %d", 42), want: http.StatusNotFound},
		{name: "validation", err: Validationf("tags must not be empty"), want: http.StatusBadRequest},
		{name: "invalid state", err: InvalidStatef("session is CLOSED"), want: http.StatusConflict},
		{name: "unknown", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DomainError(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}

func TestDomainError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	DomainError(rec, errors.New("dsn=secret"))
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestWrappedErrorsKeepMessages(t *testing.T) {
	err := NotFoundf("location %d", 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is failed for %v", err)
	}
	if !strings.Contains(err.Error(), "location 7") {
		t.Fatalf("message lost: %q", err.Error())
	}
}

func TestQueryInt64(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?location_id=5", nil)
	v, err := QueryInt64(r, "location_id")
	if err != nil || v == nil || *v != 5 {
		t.Fatalf("v = %v, err = %v", v, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	v, err = QueryInt64(r, "location_id")
	if err != nil || v != nil {
		t.Fatalf("absent param: v = %v, err = %v", v, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/?location_id=abc", nil)
	if _, err = QueryInt64(r, "location_id"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
