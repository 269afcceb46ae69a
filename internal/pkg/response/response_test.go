package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidationErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	ValidationError(rr, map[string]string{"check_in": "This field is required"})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	var out Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Success || out.Error == nil || out.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	if out.Error.Details["check_in"] == "" {
		t.Fatal("expected field details")
	}
}

func TestListCarriesTotal(t *testing.T) {
	rr := httptest.NewRecorder()
	List(rr, []string{"101", "102"}, 2)

	var out Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Success || out.Meta == nil || out.Meta.Total != 2 {
		t.Fatalf("unexpected envelope: %+v", out)
	}
}
