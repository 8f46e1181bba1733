package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ittweb/pkg/docstore"
)

// FakeStore is an in-memory document store for the unit tests.
// Mirrors the query semantics of the real store, including the index
// unavailable failure mode, which can be forced with MissingIndexes.
type FakeStore struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage

	// MissingIndexes makes every filtered or ordered query fail as if
	// the backing indexes were never created. Plain scans still work.
	MissingIndexes bool

	// Injectable failures.
	GetErr   error
	SetErr   error
	QueryErr error
	CountErr error
}

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		docs: make(map[string]map[string]json.RawMessage),
	}
}

// Seed writes a document without going through the error injection.
func (f *FakeStore) Seed(collection, id string, doc any) {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]json.RawMessage)
	}
	f.docs[collection][id] = data
}

// Len returns the amount of documents on a collection.
func (f *FakeStore) Len(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collection])
}

func (f *FakeStore) Get(ctx context.Context, collection, id string, dest any) error {
	if f.GetErr != nil {
		return f.GetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.docs[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}

	return json.Unmarshal(data, dest)
}

func (f *FakeStore) Set(ctx context.Context, collection, id string, doc any) error {
	if f.SetErr != nil {
		return f.SetErr
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]json.RawMessage)
	}
	f.docs[collection][id] = data

	return nil
}

func (f *FakeStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if f.SetErr != nil {
		return f.SetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.docs[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}

	merged := make(map[string]any)
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	for key, value := range fields {
		merged[key] = value
	}

	next, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	f.docs[collection][id] = next

	return nil
}

func (f *FakeStore) UpdateWithRetry(ctx context.Context, collection, id string, maxAttempts int, mutate docstore.MutateFunc) error {
	if f.SetErr != nil {
		return f.SetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var raw []byte
	if data, ok := f.docs[collection][id]; ok {
		raw = data
	}

	next, err := mutate(raw)
	if err != nil {
		return err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]json.RawMessage)
	}
	f.docs[collection][id] = data

	return nil
}

func (f *FakeStore) Query(ctx context.Context, collection string, query docstore.Query, dest any) error {
	if f.QueryErr != nil {
		return f.QueryErr
	}
	if f.MissingIndexes && (len(query.Filters) > 0 || query.OrderBy != "") {
		return fmt.Errorf("query %s: %w", collection, docstore.ErrIndexUnavailable)
	}

	matched, err := f.match(collection, query.Filters)
	if err != nil {
		return err
	}

	if query.OrderBy != "" {
		sortDocs(matched, query.OrderBy, query.Descending)
	}

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	raws := make([]string, 0, len(matched))
	for _, doc := range matched {
		raws = append(raws, doc.raw)
	}

	payload := "[" + strings.Join(raws, ",") + "]"
	return json.Unmarshal([]byte(payload), dest)
}

func (f *FakeStore) Count(ctx context.Context, collection string, filters []docstore.Filter) (int64, error) {
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	if f.MissingIndexes && len(filters) > 0 {
		return 0, fmt.Errorf("count %s: %w", collection, docstore.ErrIndexUnavailable)
	}

	matched, err := f.match(collection, filters)
	if err != nil {
		return 0, err
	}

	return int64(len(matched)), nil
}

// fakeDoc keeps the raw payload next to the decoded fields for sorting.
type fakeDoc struct {
	raw    string
	fields map[string]any
}

// match decodes the collection and applies the filters.
func (f *FakeStore) match(collection string, filters []docstore.Filter) ([]fakeDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Iterate in key order so runs are deterministic.
	ids := make([]string, 0, len(f.docs[collection]))
	for id := range f.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	matched := []fakeDoc{}
	for _, id := range ids {
		raw := f.docs[collection][id]

		fields := make(map[string]any)
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}

		ok := true
		for _, filter := range filters {
			if !matches(fields[filter.Field], filter) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, fakeDoc{raw: string(raw), fields: fields})
		}
	}

	return matched, nil
}

// matches applies a single filter against a decoded field value.
func matches(value any, filter docstore.Filter) bool {
	if text, ok := filter.Value.(string); ok {
		current, ok := value.(string)
		if !ok {
			return false
		}
		switch filter.Op {
		case docstore.OpGreaterOrEqual:
			return current >= text
		case docstore.OpLessOrEqual:
			return current <= text
		default:
			return current == text
		}
	}

	wanted, ok := asFloat(filter.Value)
	if !ok {
		return false
	}
	current, ok := asFloat(value)
	if !ok {
		return false
	}

	switch filter.Op {
	case docstore.OpGreaterOrEqual:
		return current >= wanted
	case docstore.OpLessOrEqual:
		return current <= wanted
	default:
		return current == wanted
	}
}

// sortDocs orders the matched documents by the given field.
func sortDocs(docs []fakeDoc, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, aOk := asFloat(docs[i].fields[field])
		b, bOk := asFloat(docs[j].fields[field])
		if !aOk || !bOk {
			aText, _ := docs[i].fields[field].(string)
			bText, _ := docs[j].fields[field].(string)
			if descending {
				return aText > bText
			}
			return aText < bText
		}
		if descending {
			return a > b
		}
		return a < b
	})
}

// asFloat converts the json decoded numbers and the Go numeric types.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	default:
		return 0, false
	}
}
