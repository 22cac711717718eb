package docstore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Store on Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore store
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

type firestoreDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d firestoreDocument) ID() string         { return d.snap.Ref.ID }
func (d firestoreDocument) DataTo(v any) error { return d.snap.DataTo(v) }

func (s *Firestore) doc(collection, key string) (*firestore.DocumentRef, error) {
	// a slash would address a document in a subcollection
	if key == "" || strings.Contains(key, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return s.client.Collection(collection).Doc(key), nil
}

// Get retrieves a document by key from Firestore
func (s *Firestore) Get(ctx context.Context, collection, key string) (Document, error) {
	ref, err := s.doc(collection, key)
	if err != nil {
		return nil, ErrNotFound
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, firestoreError(err)
	}
	return firestoreDocument{snap: snap}, nil
}

// Add creates a document with an auto-generated key
func (s *Firestore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(fields))
	if err != nil {
		return "", firestoreError(err)
	}
	return ref.ID, nil
}

// Create creates a document under key, failing if it exists
func (s *Firestore) Create(ctx context.Context, collection, key string, fields Fields) error {
	ref, err := s.doc(collection, key)
	if err != nil {
		return err
	}
	_, err = ref.Create(ctx, toFirestore(fields))
	return firestoreError(err)
}

// Set overwrites the document under key
func (s *Firestore) Set(ctx context.Context, collection, key string, fields Fields) error {
	ref, err := s.doc(collection, key)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, toFirestore(fields))
	return firestoreError(err)
}

// Update overwrites the given fields of an existing document
func (s *Firestore) Update(ctx context.Context, collection, key string, fields Fields) error {
	ref, err := s.doc(collection, key)
	if err != nil {
		return ErrNotFound
	}
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range toFirestore(fields) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err = ref.Update(ctx, updates)
	return firestoreError(err)
}

// Delete removes a document by key. No document can live under an invalid
// key, so there is nothing to delete.
func (s *Firestore) Delete(ctx context.Context, collection, key string) error {
	ref, err := s.doc(collection, key)
	if err != nil {
		return nil
	}
	_, err = ref.Delete(ctx)
	return firestoreError(err)
}

// Query runs q against a collection and returns every matching document
func (s *Firestore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, string(f.Op), f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, firestoreError(err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, firestoreDocument{snap: snap})
	}
	return docs, nil
}

// ArrayUnion adds value to an array field
func (s *Firestore) ArrayUnion(ctx context.Context, collection, key, field string, value any) error {
	return s.Update(ctx, collection, key, Fields{field: firestore.ArrayUnion(value)})
}

// ArrayRemove removes value from an array field
func (s *Firestore) ArrayRemove(ctx context.Context, collection, key, field string, value any) error {
	return s.Update(ctx, collection, key, Fields{field: firestore.ArrayRemove(value)})
}

func toFirestore(fields Fields) map[string]any {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == ServerTimestamp {
			v = firestore.ServerTimestamp
		}
		data[k] = v
	}
	return data
}

func firestoreError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}
