package ports

import (
	"context"
	"time"

	"github.com/tie-international/registration-api/internal/core/domain"
)

// RegisterInput carries one parsed registration submission. Document is nil
// when no file part was attached; the upload is optional.
type RegisterInput struct {
	Name        string
	Address     string
	City        string
	PhoneNumber string
	Postcode    string
	Country     string
	Username    string
	Email       string
	Password    string
	DateOfBirth time.Time
	Document    *domain.UploadedDocument
}

// RegisterResult is the successful outcome of a registration. Reconciled is
// true when an existing account's confirmation flags were updated instead
// of a new account being created.
type RegisterResult struct {
	Account    *domain.Account
	Reconciled bool
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}
