package sessions

import (
	"errors"
	"testing"

	"opname/api/web"
	"opname/models"
)

func TestValidateCreate(t *testing.T) {
	in, err := validateCreate(createRequest{LocationID: 1, Type: "full", Notes: " count all zones "})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if in.Type != models.SessionTypeFull {
		t.Fatalf("type = %q", in.Type)
	}
	if in.Notes != "count all zones" {
		t.Fatalf("notes = %q", in.Notes)
	}
}

func TestValidateCreate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		req  createRequest
	}{
		{name: "missing location", req: createRequest{Type: "FULL"}},
		{name: "unknown type", req: createRequest{LocationID: 1, Type: "CYCLE"}},
		{name: "empty type", req: createRequest{LocationID: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := validateCreate(tc.req); !errors.Is(err, web.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}
