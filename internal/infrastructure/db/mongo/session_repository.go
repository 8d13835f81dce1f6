package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollection = "console_sessions"

// SessionRepository stores the session keys of one namespace as fields of a
// single document. Updating one document is atomic in MongoDB, which gives
// SetMany its all-or-nothing behaviour.
type SessionRepository struct {
	coll      *mongo.Collection
	namespace string
}

func NewSessionRepository(db *mongo.Database, namespace string) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionCollection), namespace: namespace}
}

type sessionDocument struct {
	ID        string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (r *SessionRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))

	var doc sessionDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": r.namespace}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	for _, k := range keys {
		if v, ok := doc.Values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (r *SessionRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": r.namespace},
		setUpdate(values, time.Now().UTC()),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": r.namespace}, unsetUpdate(keys, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func setUpdate(values map[string]string, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	for k, v := range values {
		set["values."+k] = v
	}
	return bson.M{"$set": set}
}

func unsetUpdate(keys []string, now time.Time) bson.M {
	unset := bson.M{}
	for _, k := range keys {
		unset["values."+k] = ""
	}
	return bson.M{
		"$unset": unset,
		"$set":   bson.M{"updated_at": now},
	}
}
