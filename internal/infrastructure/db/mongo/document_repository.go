package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tie-international/registration-api/internal/core/domain"
)

const documentCollection = "documents"

type MongoDocumentRepository struct {
	coll *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{coll: db.Collection(documentCollection)}
}

type mongoDocument struct {
	AccountID  int64  `bson:"account_id"`
	Filename   string `bson:"filename"`
	MediaType  string `bson:"media_type"`
	Content    []byte `bson:"content"`
	UploadedAt int64  `bson:"uploaded_at"`
}

// Save records an accepted identity document against its account.
func (r *MongoDocumentRepository) Save(ctx context.Context, accountID int64, doc *domain.UploadedDocument) error {
	record := mongoDocument{
		AccountID:  accountID,
		Filename:   doc.Filename,
		MediaType:  doc.MediaType,
		Content:    doc.Content,
		UploadedAt: time.Now().UTC().Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}
