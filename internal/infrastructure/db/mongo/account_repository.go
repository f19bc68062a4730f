package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tie-international/registration-api/internal/core/domain"
)

const (
	accountCollection = "accounts"
	counterCollection = "counters"
)

type MongoAccountRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{
		coll:     db.Collection(accountCollection),
		counters: db.Collection(counterCollection),
	}
}

type mongoAccount struct {
	ID                int64  `bson:"_id"`
	Username          string `bson:"username"`
	Email             string `bson:"email"`
	EmailLower        string `bson:"email_lower"`
	PasswordHash      string `bson:"password_hash"`
	PasswordSalt      string `bson:"password_salt"`
	FullName          string `bson:"full_name"`
	Country           string `bson:"country"`
	Postcode          string `bson:"postcode"`
	City              string `bson:"city"`
	Address           string `bson:"address"`
	PhoneNumber       string `bson:"phone_number"`
	DateOfBirth       int64  `bson:"date_of_birth"`
	RegistrationTime  int64  `bson:"registration_time"`
	EmailConfirmed    bool   `bson:"email_confirmed"`
	IdentityConfirmed bool   `bson:"identity_confirmed"`
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate account id: %w", err)
	}

	doc := mongoAccount{
		ID:                id,
		Username:          account.Username,
		Email:             account.Email,
		EmailLower:        strings.ToLower(account.Email),
		PasswordHash:      account.PasswordHash,
		PasswordSalt:      account.PasswordSalt,
		FullName:          account.FullName,
		Country:           account.Country,
		Postcode:          account.Postcode,
		City:              account.City,
		Address:           account.Address,
		PhoneNumber:       account.PhoneNumber,
		DateOfBirth:       account.DateOfBirth.Unix(),
		RegistrationTime:  account.RegistrationTime.Unix(),
		EmailConfirmed:    account.EmailConfirmed,
		IdentityConfirmed: account.IdentityConfirmed,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := toDomain(doc)
	return &created, nil
}

func (r *MongoAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email_lower": strings.ToLower(email)})
}

// ConfirmIdentity flips both confirmation flags and returns the updated
// account. Password, salt and the identity fields are deliberately left
// untouched.
func (r *MongoAccountRepository) ConfirmIdentity(ctx context.Context, id int64) (*domain.Account, error) {
	var doc mongoAccount
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"email_confirmed": true, "identity_confirmed": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("confirm identity: %w", err)
	}

	account := toDomain(doc)
	return &account, nil
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	account := toDomain(doc)
	return &account, nil
}

// nextID reproduces an auto-incrementing primary key on top of MongoDB: a
// single counter document is atomically incremented per insert.
func (r *MongoAccountRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": accountCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func toDomain(doc mongoAccount) domain.Account {
	return domain.Account{
		ID:                doc.ID,
		Username:          doc.Username,
		Email:             doc.Email,
		PasswordHash:      doc.PasswordHash,
		PasswordSalt:      doc.PasswordSalt,
		FullName:          doc.FullName,
		Country:           doc.Country,
		Postcode:          doc.Postcode,
		City:              doc.City,
		Address:           doc.Address,
		PhoneNumber:       doc.PhoneNumber,
		DateOfBirth:       unixToTime(doc.DateOfBirth),
		RegistrationTime:  unixToTime(doc.RegistrationTime),
		EmailConfirmed:    doc.EmailConfirmed,
		IdentityConfirmed: doc.IdentityConfirmed,
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
