// Package mongo stores records in MongoDB using the collection and field
// names of the existing document schema (transactions, users), so old data stays readable.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

const (
	transactionsCollection = "transactions"
	usersCollection        = "users"
)

type Store struct {
	client *mongo.Client
	txs    *mongo.Collection
	users  *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

type transactionDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Type      string             `bson:"type"`
	Category  string             `bson:"category"`
	Amount    bson.RawValue      `bson:"amount"`
	Date      time.Time          `bson:"date"`
	UserEmail string             `bson:"userEmail"`
}

type userDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}

// New connects to uri and uses database dbName.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client: client,
		txs:    db.Collection(transactionsCollection),
		users:  db.Collection(usersCollection),
	}

	// Best effort: a read-only user may lack the privilege.
	_, err = s.txs.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userEmail", Value: 1}}})
	if err != nil {
		slog.WarnContext(ctx, "Failed to ensure transactions index", "component", "storage", "error", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to ensure unique users index", "component", "storage", "error", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	amount, err := encodeAmount(t.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	doc := bson.M{
		"type":      string(t.Kind),
		"category":  t.Category,
		"amount":    amount,
		"date":      t.OccurredAt.UTC(),
		"userEmail": t.OwnerEmail,
	}
	res, err := s.txs.InsertOne(ctx, doc)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerEmail string) ([]core.Transaction, error) {
	cur, err := s.txs.Find(ctx, bson.M{"userEmail": ownerEmail},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.toCore()
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.Transaction{}, storage.ErrNotFound
	}
	var d transactionDoc
	err = s.txs.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return d.toCore()
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not an ObjectID, so it cannot match a record.
		return nil
	}
	set, err := patchToSet(patch)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return nil
	}
	if _, err := s.txs.UpdateByID(ctx, oid, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.txs.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *Store) InsertUserIfAbsent(ctx context.Context, u core.User) (bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": u.Email},
		bson.M{"$setOnInsert": bson.M{"name": u.Name, "email": u.Email}},
		options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Lost a concurrent upsert race on the unique index.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &core.User{ID: d.ID.Hex(), Name: d.Name, Email: d.Email}, nil
}

func (s *Store) CountUsersByEmail(ctx context.Context, email string) (int, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

func (d transactionDoc) toCore() (core.Transaction, error) {
	amount, err := decodeAmount(d.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", d.ID.Hex(), err)
	}
	return core.Transaction{
		ID:         d.ID.Hex(),
		Kind:       core.Kind(d.Type),
		Category:   d.Category,
		Amount:     amount,
		OccurredAt: d.Date,
		OwnerEmail: d.UserEmail,
	}, nil
}

func patchToSet(p core.TransactionPatch) (bson.M, error) {
	set := bson.M{}
	if p.Kind != nil {
		set["type"] = string(*p.Kind)
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Amount != nil {
		amount, err := encodeAmount(*p.Amount)
		if err != nil {
			return nil, err
		}
		set["amount"] = amount
	}
	if p.OccurredAt != nil {
		set["date"] = p.OccurredAt.UTC()
	}
	if p.OwnerEmail != nil {
		set["userEmail"] = *p.OwnerEmail
	}
	return set, nil
}

func encodeAmount(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return v, nil
}

// decodeAmount accepts the numeric encodings found in the collection:
// Decimal128 written by this store and doubles or ints from older writers.
func decodeAmount(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bson.TypeDecimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bson.TypeDouble:
		return decimal.NewFromFloat(v.Double()), nil
	case bson.TypeInt32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bson.TypeInt64:
		return decimal.NewFromInt(v.Int64()), nil
	case bson.TypeString:
		return decimal.NewFromString(v.StringValue())
	case 0, bson.TypeNull, bson.TypeUndefined:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %s", v.Type)
	}
}
