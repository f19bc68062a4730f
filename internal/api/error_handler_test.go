package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tie-international/registration-api/internal/core/domain"
)

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error envelope: %v", err)
	}
	return rec, body
}

func TestErrorHandler_MissingFields(t *testing.T) {
	rec, body := serve(t, domain.ErrMissingFields)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["error"] != "all registration fields are required" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestErrorHandler_UnsupportedMedia(t *testing.T) {
	rec, body := serve(t, fmt.Errorf("%w: text/plain", domain.ErrUnsupportedMedia))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
	if body["error"] != "unsupported media type: text/plain" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestErrorHandler_ConflictSubjects(t *testing.T) {
	cases := []struct {
		subject domain.ConflictSubject
		message string
	}{
		{domain.SubjectEmail, "email already registered"},
		{domain.SubjectUsername, "username already taken"},
		{domain.SubjectBoth, "username and email already registered"},
	}
	for _, tc := range cases {
		rec, body := serve(t, &domain.ConflictError{Subject: tc.subject})
		if rec.Code != http.StatusConflict {
			t.Fatalf("%s: expected 409, got %d", tc.subject, rec.Code)
		}
		if body["error"] != tc.message {
			t.Fatalf("%s: unexpected message %q", tc.subject, body["error"])
		}
	}
}

func TestErrorHandler_PersistenceFailure(t *testing.T) {
	rec, body := serve(t, fmt.Errorf("%w: create account: connection reset", domain.ErrPersistence))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] == "" {
		t.Fatalf("persistence failures must echo their message")
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	rec, body := serve(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["error"] != "invalid payload" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestErrorHandler_UnclassifiedError(t *testing.T) {
	rec, _ := serve(t, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
