package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"rotation-server/internal/apierr"
)

func TestWriteErrorUsesCarriedStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apierr.NotFound(errors.New("article not found")), http.StatusBadRequest)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got=%d", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "article not found" {
		t.Fatalf("error: got=%q", body.Error)
	}
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var dst map[string]interface{}
	err := DecodeJSON(req, &dst)
	if apierr.StatusOf(err, 0) != http.StatusBadRequest {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("groupId", ""); err == nil || err.Error() != "groupId is required" {
		t.Fatalf("missing: got %v", err)
	}
	if _, err := ParseID("groupId", "nope"); err == nil {
		t.Fatalf("expected invalid id error")
	}
	id := uuid.New()
	got, err := ParseID("groupId", " "+id.String()+" ")
	if err != nil || got != id {
		t.Fatalf("valid: got=%v err=%v", got, err)
	}
}
