package ports

import (
	"context"

	"github.com/tie-international/registration-api/internal/core/domain"
)

// DocumentRepository records identity documents accepted alongside a
// registration. Writes are best-effort from the caller's perspective: a
// failed save never changes the registration outcome.
type DocumentRepository interface {
	Save(ctx context.Context, accountID int64, doc *domain.UploadedDocument) error
}
