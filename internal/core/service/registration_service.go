package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tie-international/registration-api/internal/core/domain"
	"github.com/tie-international/registration-api/internal/core/ports"
)

type registrationService struct {
	accounts  ports.AccountRepository
	documents ports.DocumentRepository
	log       zerolog.Logger
}

// NewRegistrationService returns a RegistrationService implementation backed
// by the given account and document stores.
func NewRegistrationService(
	accounts ports.AccountRepository,
	documents ports.DocumentRepository,
	log zerolog.Logger,
) ports.RegistrationService {
	return &registrationService{
		accounts:  accounts,
		documents: documents,
		log:       log,
	}
}

// duplicateMatch classifies the outcome of the duplicate lookup. A nil
// match means the identity has never been seen.
type duplicateMatch struct {
	account          *domain.Account
	emailCollided    bool
	usernameCollided bool
}

// Register runs one registration submission end to end: upload filter,
// required-field gate, duplicate resolution, then either confirmation
// reconciliation or credential hashing plus create.
func (s *registrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	// 1. Upload filter — decided on the declared media type alone, before
	// any field is inspected.
	if in.Document != nil && !domain.MediaTypeAllowed(in.Document.MediaType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, in.Document.MediaType)
	}

	// 2. Required-field gate. One aggregate error regardless of which
	// field is missing.
	if !hasRequiredFields(in) {
		return nil, domain.ErrMissingFields
	}

	// 3. Duplicate resolution by username OR email (email compared
	// case-insensitively).
	match, err := s.resolveDuplicate(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve duplicates: %v", domain.ErrPersistence, err)
	}

	if match != nil {
		return s.handleMatch(ctx, in, match)
	}

	// 4. New identity: hash credentials and create.
	salt, hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:         in.Username,
		Email:            in.Email,
		PasswordHash:     hash,
		PasswordSalt:     salt,
		FullName:         in.Name,
		Country:          in.Country,
		Postcode:         in.Postcode,
		City:             in.City,
		Address:          in.Address,
		PhoneNumber:      in.PhoneNumber,
		DateOfBirth:      in.DateOfBirth,
		RegistrationTime: time.Now().UTC(),
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		// The unique indexes are the real duplicate guard; a concurrent
		// request may have won the race after our check passed. Re-resolve
		// so the client gets the same conflict classification either way.
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, s.classifyRacedConflict(ctx, in.Username, in.Email, err)
		}
		return nil, fmt.Errorf("%w: create account: %v", domain.ErrPersistence, err)
	}

	s.saveDocument(ctx, created.ID, in.Document)

	s.log.Info().
		Int64("account_id", created.ID).
		Str("username", created.Username).
		Msg("account created")

	return &ports.RegisterResult{Account: created}, nil
}

// handleMatch decides between reconciliation and conflict for a previously
// seen identity. Only an email-only match against a not-fully-confirmed
// account reconciles; every other combination is a hard conflict.
func (s *registrationService) handleMatch(ctx context.Context, in ports.RegisterInput, match *duplicateMatch) (*ports.RegisterResult, error) {
	if match.usernameCollided || match.account.FullyConfirmed() {
		return nil, domain.NewConflictError(match.emailCollided, match.usernameCollided)
	}

	updated, err := s.accounts.ConfirmIdentity(ctx, match.account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: confirm identity: %v", domain.ErrPersistence, err)
	}

	s.saveDocument(ctx, updated.ID, in.Document)

	s.log.Info().
		Int64("account_id", updated.ID).
		Str("username", updated.Username).
		Msg("confirmation reconciled")

	return &ports.RegisterResult{Account: updated, Reconciled: true}, nil
}

// resolveDuplicate looks up the identity keys independently so the conflict
// can name which one collided. Both lookups hitting different accounts
// still classifies as a both-collision.
func (s *registrationService) resolveDuplicate(ctx context.Context, username, email string) (*duplicateMatch, error) {
	byUsername, err := s.accounts.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	byEmail, err := s.accounts.FindByEmail(ctx, strings.ToLower(email))
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	if byUsername == nil && byEmail == nil {
		return nil, nil
	}

	match := &duplicateMatch{
		usernameCollided: byUsername != nil,
		emailCollided:    byEmail != nil,
		account:          byEmail,
	}
	if match.account == nil {
		match.account = byUsername
	}
	return match, nil
}

// classifyRacedConflict maps a write-time uniqueness violation onto the
// regular conflict taxonomy. If the winning row vanished before the
// re-read, the original store error is surfaced instead.
func (s *registrationService) classifyRacedConflict(ctx context.Context, username, email string, cause error) error {
	match, err := s.resolveDuplicate(ctx, username, email)
	if err != nil || match == nil {
		return fmt.Errorf("%w: create account: %v", domain.ErrPersistence, cause)
	}
	return domain.NewConflictError(match.emailCollided, match.usernameCollided)
}

// saveDocument records the accepted identity document. The write is
// best-effort: the registration outcome is already decided, so a failure
// here is logged and swallowed.
func (s *registrationService) saveDocument(ctx context.Context, accountID int64, doc *domain.UploadedDocument) {
	if doc == nil {
		return
	}
	if err := s.documents.Save(ctx, accountID, doc); err != nil {
		s.log.Warn().Err(err).
			Int64("account_id", accountID).
			Str("filename", doc.Filename).
			Msg("failed to store identity document")
	}
}

// hasRequiredFields is the presence gate over the ten registration fields.
func hasRequiredFields(in ports.RegisterInput) bool {
	for _, v := range []string{
		in.Name,
		in.Address,
		in.City,
		in.PhoneNumber,
		in.Postcode,
		in.Country,
		in.Username,
		in.Email,
		in.Password,
	} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return !in.DateOfBirth.IsZero()
}
