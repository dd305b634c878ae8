package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pet-health-tracker/internal/ports/kv"
)

const collectionName = "state"

// stateDoc es la representación Mongo de una clave del estado.
type stateDoc struct {
	Key       string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// StateStore guarda cada clave como un documento de la colección state.
type StateStore struct {
	col *mongo.Collection
	now func() time.Time
}

var _ kv.Store = (*StateStore)(nil)

func NewStateStore(db *mongo.Database) *StateStore {
	return &StateStore{
		col: db.Collection(collectionName),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Connect abre un cliente y hace ping. El caller debe llamar client.Disconnect(ctx).
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)

	var doc stateDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", key, err)
	}
	return doc.Payload, nil
}

func (s *StateStore) Save(ctx context.Context, key string, payload []byte) error {
	key = strings.TrimSpace(key)

	doc := stateDoc{Key: key, Payload: payload, UpdatedAt: s.now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
