package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tie-international/registration-api/internal/core/domain"
	"github.com/tie-international/registration-api/internal/core/ports"
)

type stubRegistrationService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
	lastInput  *ports.RegisterInput
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	s.lastInput = &in
	return s.registerFn(ctx, in)
}

func validFields() map[string]string {
	return map[string]string{
		"name":        "Alice Smith",
		"address":     "1 Main Street",
		"city":        "Dublin",
		"phoneNumber": "+353 1 234 5678",
		"postcode":    "D01 F5P2",
		"country":     "Ireland",
		"username":    "alice",
		"email":       "alice@example.com",
		"password":    "s3cret-pass",
		"dateOfBirth": "1990-04-12",
	}
}

type filePart struct {
	filename    string
	contentType string
	content     []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *filePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, documentPartName, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(file.content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegistrationHandler_Created(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return &ports.RegisterResult{Account: &domain.Account{
				ID:           1,
				Username:     in.Username,
				Email:        in.Email,
				PasswordHash: "$2a$10$secret",
				PasswordSalt: "$2a$10$salt",
			}}, nil
		},
	}
	h := NewRegistrationHandler(stub)

	c, rec := newContext(multipartRequest(t, validFields(), nil))
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	in := stub.lastInput
	if in == nil {
		t.Fatalf("service was not called")
	}
	if in.Username != "alice" || in.Email != "alice@example.com" || in.Postcode != "D01 F5P2" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if !in.DateOfBirth.Equal(time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date of birth: %v", in.DateOfBirth)
	}
	if in.Document != nil {
		t.Fatalf("no document part was sent, got %+v", in.Document)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "OK" {
		t.Fatalf("expected OK status, got %v", resp["status"])
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("$2a$10$")) {
		t.Fatalf("credentials leaked into response: %s", rec.Body.String())
	}
}

func TestRegistrationHandler_Reconciled(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return &ports.RegisterResult{
				Account:    &domain.Account{ID: 7, Username: "earlybird", EmailConfirmed: true, IdentityConfirmed: true},
				Reconciled: true,
			}, nil
		},
	}
	h := NewRegistrationHandler(stub)

	c, rec := newContext(multipartRequest(t, validFields(), nil))
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for reconciliation, got %d", rec.Code)
	}
}

func TestRegistrationHandler_DocumentForwarded(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return &ports.RegisterResult{Account: &domain.Account{ID: 1}}, nil
		},
	}
	h := NewRegistrationHandler(stub)

	file := &filePart{filename: "passport.png", contentType: "image/png", content: []byte{0x89, 0x50, 0x4e, 0x47}}
	c, _ := newContext(multipartRequest(t, validFields(), file))
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	doc := stub.lastInput.Document
	if doc == nil {
		t.Fatalf("document part was dropped")
	}
	if doc.Filename != "passport.png" || doc.MediaType != "image/png" || !bytes.Equal(doc.Content, file.content) {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestRegistrationHandler_UnsupportedMedia(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("service must not be called for a rejected upload")
			return nil, nil
		},
	}
	h := NewRegistrationHandler(stub)

	file := &filePart{filename: "notes.txt", contentType: "text/plain", content: []byte("hello")}
	c, _ := newContext(multipartRequest(t, validFields(), file))

	err := h.Register(c)
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestRegistrationHandler_MissingField(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("service must not be called for an incomplete submission")
			return nil, nil
		},
	}
	h := NewRegistrationHandler(stub)

	fields := validFields()
	delete(fields, "postcode")
	c, _ := newContext(multipartRequest(t, fields, nil))

	if err := h.Register(c); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestRegistrationHandler_MalformedDateOfBirth(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			t.Fatalf("service must not be called for a malformed date")
			return nil, nil
		},
	}
	h := NewRegistrationHandler(stub)

	fields := validFields()
	fields["dateOfBirth"] = "12/04/1990"
	c, _ := newContext(multipartRequest(t, fields, nil))

	if err := h.Register(c); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestRegistrationHandler_ServiceErrorPropagates(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			return nil, &domain.ConflictError{Subject: domain.SubjectUsername}
		},
	}
	h := NewRegistrationHandler(stub)

	c, _ := newContext(multipartRequest(t, validFields(), nil))

	err := h.Register(c)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Subject != domain.SubjectUsername {
		t.Fatalf("expected username conflict to propagate, got %v", err)
	}
}
