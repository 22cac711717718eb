package docstore

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Memory is an in-process Store used for local development and tests.
// Server timestamps are strictly increasing within one Memory instance.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Fields
	now         func() time.Time
	lastStamp   time.Time
	seq         int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Fields),
		now:         time.Now,
	}
}

type memoryDocument struct {
	id     string
	fields Fields
}

func (d memoryDocument) ID() string { return d.id }

func (d memoryDocument) DataTo(v any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  v,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(d.fields))
}

func (m *Memory) collection(name string) map[string]Fields {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]Fields)
		m.collections[name] = c
	}
	return c
}

// Get retrieves a copy of a stored document
func (m *Memory) Get(_ context.Context, collection, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return memoryDocument{id: key, fields: copyFields(fields)}, nil
}

// Add stores a document under a generated key
func (m *Memory) Add(_ context.Context, collection string, fields Fields) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	key := fmt.Sprintf("doc-%06d", m.seq)
	m.collection(collection)[key] = m.resolve(fields)
	return key, nil
}

// Create stores a document under key if absent
func (m *Memory) Create(_ context.Context, collection, key string, fields Fields) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, ok := c[key]; ok {
		return ErrAlreadyExists
	}
	c[key] = m.resolve(fields)
	return nil
}

// Set replaces the document under key
func (m *Memory) Set(_ context.Context, collection, key string, fields Fields) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collection(collection)[key] = m.resolve(fields)
	return nil
}

// Update overwrites fields of an existing document
func (m *Memory) Update(_ context.Context, collection, key string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range m.resolve(fields) {
		doc[k] = v
	}
	return nil
}

// Delete removes a document
func (m *Memory) Delete(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], key)
	return nil
}

// Query filters and sorts a collection. Without an order the result is
// sorted by key.
func (m *Memory) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []memoryDocument
	for key, fields := range m.collections[collection] {
		match, err := matches(fields, q.Filters)
		if err != nil {
			return nil, err
		}
		if match {
			docs = append(docs, memoryDocument{id: key, fields: copyFields(fields)})
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy == "" {
			return docs[i].id < docs[j].id
		}
		c := compare(docs[i].fields[q.OrderBy], docs[j].fields[q.OrderBy])
		if c == 0 {
			return docs[i].id < docs[j].id
		}
		if q.Direction == Desc {
			return c > 0
		}
		return c < 0
	})

	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out, nil
}

// ArrayUnion appends value to an array field unless present
func (m *Memory) ArrayUnion(_ context.Context, collection, key, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][key]
	if !ok {
		return ErrNotFound
	}
	arr := toSlice(doc[field])
	for _, v := range arr {
		if reflect.DeepEqual(v, value) {
			return nil
		}
	}
	doc[field] = append(arr, value)
	return nil
}

// ArrayRemove removes every occurrence of value from an array field
func (m *Memory) ArrayRemove(_ context.Context, collection, key, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][key]
	if !ok {
		return ErrNotFound
	}
	arr := toSlice(doc[field])
	kept := make([]any, 0, len(arr))
	for _, v := range arr {
		if !reflect.DeepEqual(v, value) {
			kept = append(kept, v)
		}
	}
	doc[field] = kept
	return nil
}

// resolve copies fields, replacing ServerTimestamp. Callers hold m.mu.
func (m *Memory) resolve(fields Fields) Fields {
	out := copyFields(fields)
	for k, v := range out {
		if v == ServerTimestamp {
			stamp := m.now().UTC()
			if !stamp.After(m.lastStamp) {
				stamp = m.lastStamp.Add(time.Microsecond)
			}
			m.lastStamp = stamp
			out[k] = stamp
		}
	}
	return out
}

func copyFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
			v = toSlice(v)
		}
		out[k] = v
	}
	return out
}

// toSlice copies any slice value into a fresh []any.
func toSlice(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func matches(fields Fields, filters []Filter) (bool, error) {
	for _, f := range filters {
		value, ok := fields[f.Field]
		if !ok {
			return false, nil
		}
		switch f.Op {
		case OpEqual:
			if !reflect.DeepEqual(value, f.Value) {
				return false, nil
			}
		case OpArrayContains:
			found := false
			for _, v := range toSlice(value) {
				if reflect.DeepEqual(v, f.Value) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		default:
			return false, fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}
	return true, nil
}

func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	case string:
		bv, _ := b.(string)
		return cmp.Compare(av, bv)
	case int:
		bv, _ := b.(int)
		return cmp.Compare(av, bv)
	case int64:
		bv, _ := b.(int64)
		return cmp.Compare(av, bv)
	case float64:
		bv, _ := b.(float64)
		return cmp.Compare(av, bv)
	}
	return 0
}
