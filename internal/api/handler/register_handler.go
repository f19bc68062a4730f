package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tie-international/registration-api/internal/api/metrics"
	"github.com/tie-international/registration-api/internal/core/domain"
	"github.com/tie-international/registration-api/internal/core/ports"
)

const documentPartName = "idConfirmation"

type RegistrationHandler struct {
	service ports.RegistrationService
}

func NewRegistrationHandler(service ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

type registerRequest struct {
	Name        string `form:"name"        validate:"required"`
	Address     string `form:"address"     validate:"required"`
	City        string `form:"city"        validate:"required"`
	PhoneNumber string `form:"phoneNumber" validate:"required"`
	Postcode    string `form:"postcode"    validate:"required"`
	Country     string `form:"country"     validate:"required"`
	Username    string `form:"username"    validate:"required"`
	Email       string `form:"email"       validate:"required"`
	Password    string `form:"password"    validate:"required"`
	DateOfBirth string `form:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

type registerResponse struct {
	Status  string          `json:"status"`
	Account *domain.Account `json:"account"`
}

// Register processes one self-registration submission.
//
// @Summary      Register a new account
// @Tags         registration
// @Accept       multipart/form-data
// @Produce      json
// @Param        name           formData  string  true   "Full name"
// @Param        address        formData  string  true   "Street address"
// @Param        city           formData  string  true   "City"
// @Param        phoneNumber    formData  string  true   "Phone number"
// @Param        postcode       formData  string  true   "Postal code"
// @Param        country        formData  string  true   "Country"
// @Param        username       formData  string  true   "Username"
// @Param        email          formData  string  true   "Email address"
// @Param        password       formData  string  true   "Password"
// @Param        dateOfBirth    formData  string  true   "Date of birth (YYYY-MM-DD)"
// @Param        idConfirmation formData  file    false  "Identity document (jpeg/png/pdf)"
// @Success      200   {object}  registerResponse
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      415   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.RegistrationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	// The document gate runs before any field is bound: a disallowed
	// upload short-circuits the whole request.
	doc, err := h.uploadedDocument(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		// Presence is a boolean gate: one aggregate error, fields not
		// itemized back to the client.
		metrics.ValidationFailuresTotal.Inc()
		return domain.ErrMissingFields
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		metrics.ValidationFailuresTotal.Inc()
		return domain.ErrMissingFields
	}

	result, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		PhoneNumber: req.PhoneNumber,
		Postcode:    req.Postcode,
		Country:     req.Country,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		Document:    doc,
	})
	if err != nil {
		h.countFailure(err)
		return err
	}

	outcome = "created"
	status := http.StatusCreated
	if result.Reconciled {
		outcome = "reconciled"
		status = http.StatusOK
		metrics.AccountsReconciledTotal.Inc()
	} else {
		metrics.AccountsCreatedTotal.Inc()
	}

	return c.JSON(status, registerResponse{Status: "OK", Account: result.Account})
}

// uploadedDocument extracts the optional idConfirmation part. The declared
// media type is checked against the whitelist before the content is read,
// so rejected uploads are never buffered.
func (h *RegistrationHandler) uploadedDocument(c echo.Context) (*domain.UploadedDocument, error) {
	fh, err := c.FormFile(documentPartName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	mediaType := fh.Header.Get(echo.HeaderContentType)
	if !domain.MediaTypeAllowed(mediaType) {
		metrics.UploadsRejectedTotal.WithLabelValues(mediaType).Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mediaType)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	return &domain.UploadedDocument{
		Filename:  fh.Filename,
		MediaType: mediaType,
		Content:   content,
	}, nil
}

func (h *RegistrationHandler) countFailure(err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		metrics.ConflictsTotal.WithLabelValues(string(conflict.Subject)).Inc()
	case errors.Is(err, domain.ErrMissingFields):
		metrics.ValidationFailuresTotal.Inc()
	}
}
