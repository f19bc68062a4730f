package domain

import (
	"errors"
	"time"
)

var ErrMissingFields = errors.New("all registration fields are required")
var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrPersistence = errors.New("persistence failure")

// ConflictSubject identifies which identity key(s) an existing account
// collided on.
type ConflictSubject string

const (
	SubjectEmail    ConflictSubject = "email"
	SubjectUsername ConflictSubject = "username"
	SubjectBoth     ConflictSubject = "both"
)

// ConflictError signals that the submitted identity is already registered.
// The subject states which key(s) collided so the client knows what to change.
type ConflictError struct {
	Subject ConflictSubject
}

func (e *ConflictError) Error() string {
	switch e.Subject {
	case SubjectUsername:
		return "username already taken"
	case SubjectBoth:
		return "username and email already registered"
	default:
		return "email already registered"
	}
}

// NewConflictError builds a ConflictError from the two collision flags.
func NewConflictError(emailCollided, usernameCollided bool) *ConflictError {
	switch {
	case emailCollided && usernameCollided:
		return &ConflictError{Subject: SubjectBoth}
	case usernameCollided:
		return &ConflictError{Subject: SubjectUsername}
	default:
		return &ConflictError{Subject: SubjectEmail}
	}
}

// Account models one registered identity.
type Account struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	PasswordSalt      string    `json:"-"`
	FullName          string    `json:"full_name"`
	Country           string    `json:"country"`
	Postcode          string    `json:"postcode"`
	City              string    `json:"city"`
	Address           string    `json:"address"`
	PhoneNumber       string    `json:"phone_number"`
	DateOfBirth       time.Time `json:"date_of_birth"`
	RegistrationTime  time.Time `json:"registration_time"`
	EmailConfirmed    bool      `json:"email_confirmed"`
	IdentityConfirmed bool      `json:"identity_confirmed"`
}

// FullyConfirmed reports whether both confirmation flags are already set.
// A fully confirmed account can never be reconciled again; a resubmission
// against it is a hard conflict.
func (a *Account) FullyConfirmed() bool {
	return a.EmailConfirmed && a.IdentityConfirmed
}
