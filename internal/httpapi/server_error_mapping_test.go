package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"extractd/internal/extract"
)

// Generation failures are not HTTP errors: the degraded result is still a 200.
func TestExtract_DegradedResultIs200(t *testing.T) {
	svc := &mockService{result: extract.Result{
		FullName: strp("Петров Алексей"),
		Method:   extract.MethodRuleBased,
		Error:    strp("generation failed: context deadline exceeded"),
	}}
	w := postExtract(NewMux(svc), `{"text":"Петров Алексей"}`, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res extract.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.ErrorValue() == "" || res.FullNameValue() != "Петров Алексей" || res.TaxID != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
}
