// Package docstore exposes the persistence collaborator of the pipeline as a
// generic key-document store: per document get/set/update plus best effort
// indexed range queries that can fail while an index is missing or building.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors of the store.
var (
	ErrNotFound         = errors.New("docstore: document not found")
	ErrIndexUnavailable = errors.New("docstore: index unavailable")
)

// Op is a filter operator.
type Op string

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
	OpLessOrEqual    Op = "<="
)

// Filter is a single field condition of a query.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes an indexed range query. A query without filters and order is
// a plain collection scan and never requires an index.
type Query struct {
	Filters    []Filter
	OrderBy    string // Field to order by. Numeric unless a text filter covers it.
	Descending bool
	Limit      int
}

// MutateFunc receives the raw document (nil when the document doesn't exist
// yet) and returns the full document to persist in its place.
type MutateFunc func(raw []byte) (any, error)

// Store is the key-document contract every component of the pipeline writes
// and reads through. Query and Count may fail with ErrIndexUnavailable, which
// callers are expected to detect with IsIndexUnavailable.
type Store interface {
	Get(ctx context.Context, collection, id string, dest any) error
	Set(ctx context.Context, collection, id string, doc any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	UpdateWithRetry(ctx context.Context, collection, id string, maxAttempts int, mutate MutateFunc) error
	Query(ctx context.Context, collection string, query Query, dest any) error
	Count(ctx context.Context, collection string, filters []Filter) (int64, error)
}

// IsIndexUnavailable reports whether the error is the expected transient
// missing/building index condition. Detection is deliberately narrow, by
// sentinel or message substring, so genuine store failures keep propagating.
func IsIndexUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrIndexUnavailable) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "index")
}
