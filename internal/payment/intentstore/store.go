// Package intentstore mirrors each payment's free-form intent document
// (receipt, items, shops, data) into MongoDB, where the Postgres store keeps
// a flattened intent_blob primarily for reconstruction. Grounded on the
// ancestor's pkg/store/mongodb.go connection pattern.
package intentstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"payment-gateway/internal/payment"
)

const connectTimeout = 10 * time.Second

// Store mirrors payment intents into a Mongo collection for document-shaped
// queries (e.g. "payments whose receipt contains item X") that would be
// awkward against the OLTP schema.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials uri and selects database/collection for intent documents.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type intentDoc struct {
	PaymentID string        `bson:"_id"`
	Intent    payment.Intent `bson:"intent"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// Upsert replaces the mirrored intent document for paymentID.
func (s *Store) Upsert(ctx context.Context, paymentID string, intent payment.Intent) error {
	doc := intentDoc{PaymentID: paymentID, Intent: intent, UpdatedAt: time.Now()}
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": paymentID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Get returns the mirrored intent for paymentID.
func (s *Store) Get(ctx context.Context, paymentID string) (payment.Intent, error) {
	var doc intentDoc
	if err := s.collection.FindOne(ctx, bson.M{"_id": paymentID}).Decode(&doc); err != nil {
		return payment.Intent{}, err
	}
	return doc.Intent, nil
}
