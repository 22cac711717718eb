// Package docstore is the document store capability consumed by the access
// layer, with Firestore, MongoDB and in-memory drivers.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("docstore: document not found")
	ErrAlreadyExists = errors.New("docstore: document already exists")
	ErrInvalidKey    = errors.New("docstore: invalid document key")
)

// Fields is a partial or complete set of document fields.
type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp is a field value replaced by the store's write time.
var ServerTimestamp = serverTimestamp{}

// Document is a snapshot of a stored document.
type Document interface {
	ID() string
	DataTo(v any) error
}

// Op is a query predicate operator.
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is a single query predicate.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes a collection query: all filters are ANDed, results are
// sorted by OrderBy when set.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
}

// Where returns a copy of q with an extra predicate.
func (q Query) Where(field string, op Op, value any) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

// Order returns a copy of q sorted by field.
func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Store is the set of document operations the access layer relies on. Each
// call touches a single document or runs a single query; there are no
// multi-document transactions.
type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, key string) (Document, error)
	// Add stores a new document under a store-assigned key and returns it.
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	// Create stores a document under key and returns ErrAlreadyExists when one is present.
	Create(ctx context.Context, collection, key string, fields Fields) error
	// Set upserts: the document under key is fully replaced by fields.
	Set(ctx context.Context, collection, key string, fields Fields) error
	// Update overwrites the given fields and returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, key string, fields Fields) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, collection, key string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// ArrayUnion adds value to the array field unless already present.
	ArrayUnion(ctx context.Context, collection, key, field string, value any) error
	// ArrayRemove removes every occurrence of value from the array field.
	ArrayRemove(ctx context.Context, collection, key, field string, value any) error
}
