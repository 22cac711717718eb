package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on MongoDB. Document keys are stored as string _id
// values and server timestamps are taken from the application clock.
type Mongo struct {
	db  *mongo.Database
	now func() time.Time
}

// NewMongo creates a new Mongo store
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db, now: time.Now}
}

type mongoDocument struct {
	id  string
	raw bson.Raw
}

func (d mongoDocument) ID() string         { return d.id }
func (d mongoDocument) DataTo(v any) error { return bson.Unmarshal(d.raw, v) }

// Get retrieves a document by key from MongoDB
func (s *Mongo) Get(ctx context.Context, collection, key string) (Document, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mongoDocument{id: key, raw: raw}, nil
}

// Add inserts a document under a fresh ObjectID hex key
func (s *Mongo) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	key := primitive.NewObjectID().Hex()
	if err := s.Create(ctx, collection, key, fields); err != nil {
		return "", err
	}
	return key, nil
}

// Create inserts a document under key
func (s *Mongo) Create(ctx context.Context, collection, key string, fields Fields) error {
	if key == "" {
		return ErrInvalidKey
	}
	doc := s.toBSON(fields)
	doc["_id"] = key
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	return insertError(err)
}

func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}

// Set replaces the document under key, inserting it if missing
func (s *Mongo) Set(ctx context.Context, collection, key string, fields Fields) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": key}, s.toBSON(fields), options.Replace().SetUpsert(true))
	return err
}

// Update sets the given fields on an existing document
func (s *Mongo) Update(ctx context.Context, collection, key string, fields Fields) error {
	return s.updateOne(ctx, collection, key, bson.M{"$set": s.toBSON(fields)})
}

// Delete removes a document by key
func (s *Mongo) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Query runs q against a collection
func (s *Mongo) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filter := bson.D{}
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual, OpArrayContains:
			// equality on an array field matches any element
			filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
		default:
			return nil, fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}
	findOptions := options.Find()
	if q.OrderBy != "" {
		order := 1
		if q.Direction == Desc {
			order = -1
		}
		findOptions.SetSort(bson.D{{Key: q.OrderBy, Value: order}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		id, _ := raw.Lookup("_id").StringValueOK()
		docs = append(docs, mongoDocument{id: id, raw: raw})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// ArrayUnion adds value to an array field with $addToSet
func (s *Mongo) ArrayUnion(ctx context.Context, collection, key, field string, value any) error {
	return s.updateOne(ctx, collection, key, bson.M{"$addToSet": bson.M{field: value}})
}

// ArrayRemove removes value from an array field with $pull
func (s *Mongo) ArrayRemove(ctx context.Context, collection, key, field string, value any) error {
	return s.updateOne(ctx, collection, key, bson.M{"$pull": bson.M{field: value}})
}

func (s *Mongo) updateOne(ctx context.Context, collection, key string, update bson.M) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": key}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) toBSON(fields Fields) bson.M {
	doc := make(bson.M, len(fields))
	for k, v := range fields {
		if v == ServerTimestamp {
			v = s.now().UTC().Truncate(time.Millisecond)
		}
		doc[k] = v
	}
	return doc
}
