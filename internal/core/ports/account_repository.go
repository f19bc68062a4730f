package ports

import (
	"context"

	"github.com/tie-international/registration-api/internal/core/domain"
)

// AccountRepository is the persistence gateway for accounts. The store must
// enforce uniqueness of username and lower-cased email at write time; a
// violated constraint surfaces as domain.ErrAccountExists.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// FindByEmail matches case-insensitively; callers pass the address in
	// any casing.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// ConfirmIdentity sets both confirmation flags on the account and
	// returns the updated record. No other field is touched.
	ConfirmIdentity(ctx context.Context, id int64) (*domain.Account, error)
}
