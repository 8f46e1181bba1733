package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ittweb/pkg/database/models"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IndexField describes an expression index over a document field.
type IndexField struct {
	Name    string
	Numeric bool
}

// GormStore is the postgres backed implementation of the document store.
// Documents live on a single table and the indexed query path relies on
// partial expression indexes over the jsonb payload.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates the store on top of an existing connection pool.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the documents table if needed.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Document{})
}

// EnsureIndexes creates the expression indexes the indexed query path needs
// for the given collection. Until this ran, queries over those fields fail
// with ErrIndexUnavailable.
func (s *GormStore) EnsureIndexes(collection string, fields []IndexField) error {
	for _, field := range fields {
		expression := fmt.Sprintf("((data->>'%s'))", field.Name)
		if field.Numeric {
			expression = fmt.Sprintf("(((data->>'%s')::numeric))", field.Name)
		}

		statement := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON documents %s WHERE collection = '%s'",
			indexName(collection, field.Name),
			expression,
			collection,
		)

		if err := s.db.Exec(statement).Error; err != nil {
			return fmt.Errorf("couldn't create index for %s.%s: %w", collection, field.Name, err)
		}
	}

	return nil
}

// Get reads a single document into dest.
func (s *GormStore) Get(ctx context.Context, collection, id string, dest any) error {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return json.Unmarshal([]byte(doc.Data), dest)
}

// Set fully writes a document, creating or replacing it.
func (s *GormStore) Set(ctx context.Context, collection, id string, doc any) error {
	return s.set(s.db.WithContext(ctx), collection, id, doc)
}

// set runs the upsert on the given handle so it can also run inside a transaction.
func (s *GormStore) set(tx *gorm.DB, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("couldn't marshal the document %s/%s: %w", collection, id, err)
	}

	record := models.Document{
		Collection: collection,
		DocID:      id,
		Data:       string(data),
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error
}

// Update merges the given fields into an existing document.
// Fails with ErrNotFound when the document doesn't exist.
func (s *GormStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND doc_id = ?", collection, id).
			First(&doc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		merged := make(map[string]any)
		if err := json.Unmarshal([]byte(doc.Data), &merged); err != nil {
			return fmt.Errorf("couldn't unmarshal the document %s/%s: %w", collection, id, err)
		}

		for key, value := range fields {
			merged[key] = value
		}

		return s.set(tx, collection, id, merged)
	})
}

// UpdateWithRetry runs an optimistic read-modify-write on a single document.
// The mutate callback receives the current raw document (nil when absent) and
// returns the document to persist. The whole cycle runs inside a transaction
// holding a row lock, retried up to maxAttempts on failure.
func (s *GormStore) UpdateWithRetry(ctx context.Context, collection, id string, maxAttempts int, mutate MutateFunc) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var doc models.Document
			var raw []byte

			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("collection = ? AND doc_id = ?", collection, id).
				First(&doc).Error
			if err == nil {
				raw = []byte(doc.Data)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			next, err := mutate(raw)
			if err != nil {
				return err
			}

			return s.set(tx, collection, id, next)
		})

		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("couldn't update %s/%s after %d attempts: %w", collection, id, maxAttempts, lastErr)
}

// Query runs an indexed range query over a collection.
// The backing expression indexes must exist for every filtered and ordered
// field, otherwise the query fails with a wrapped ErrIndexUnavailable. A query
// without filters and order is a full collection scan and always works.
func (s *GormStore) Query(ctx context.Context, collection string, query Query, dest any) error {
	if err := s.checkIndexes(ctx, collection, query.Filters, query.OrderBy); err != nil {
		return err
	}

	conditions, args := buildConditions(collection, query.Filters)
	statement := "SELECT data FROM documents WHERE " + strings.Join(conditions, " AND ")

	if query.OrderBy != "" {
		direction := "ASC"
		if query.Descending {
			direction = "DESC"
		}
		statement += fmt.Sprintf(" ORDER BY %s %s", orderExpression(query), direction)
	}

	if query.Limit > 0 {
		statement += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	rows, err := s.db.WithContext(ctx).Raw(statement, args...).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Reassemble the documents as a json array so dest can be any slice type.
	payload := "[" + strings.Join(docs, ",") + "]"
	return json.Unmarshal([]byte(payload), dest)
}

// Count counts the documents matching the filters.
// Subject to the same index availability rules as Query.
func (s *GormStore) Count(ctx context.Context, collection string, filters []Filter) (int64, error) {
	if err := s.checkIndexes(ctx, collection, filters, ""); err != nil {
		return 0, err
	}

	conditions, args := buildConditions(collection, filters)
	statement := "SELECT COUNT(*) FROM documents WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := s.db.WithContext(ctx).Raw(statement, args...).Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// checkIndexes verifies the expression indexes backing the query exist.
func (s *GormStore) checkIndexes(ctx context.Context, collection string, filters []Filter, orderBy string) error {
	fields := make([]string, 0, len(filters)+1)
	for _, filter := range filters {
		fields = append(fields, filter.Field)
	}
	if orderBy != "" {
		fields = append(fields, orderBy)
	}

	for _, field := range fields {
		var count int64
		err := s.db.WithContext(ctx).
			Raw("SELECT COUNT(*) FROM pg_indexes WHERE tablename = 'documents' AND indexname = ?", indexName(collection, field)).
			Scan(&count).Error
		if err != nil {
			return err
		}

		if count == 0 {
			return fmt.Errorf("%w: %s.%s", ErrIndexUnavailable, collection, field)
		}
	}

	return nil
}

// buildConditions builds the WHERE conditions and their arguments.
func buildConditions(collection string, filters []Filter) ([]string, []any) {
	conditions := []string{"collection = ?"}
	args := []any{collection}

	for _, filter := range filters {
		expression := fmt.Sprintf("data->>'%s'", filter.Field)
		if isNumeric(filter.Value) {
			expression = fmt.Sprintf("(data->>'%s')::numeric", filter.Field)
		}

		var operator string
		switch filter.Op {
		case OpGreaterOrEqual:
			operator = ">="
		case OpLessOrEqual:
			operator = "<="
		default:
			operator = "="
		}

		conditions = append(conditions, fmt.Sprintf("%s %s ?", expression, operator))
		args = append(args, filter.Value)
	}

	return conditions, args
}

// orderExpression builds the ORDER BY expression. The ordering is numeric
// unless a text filter covers the same field.
func orderExpression(query Query) string {
	for _, filter := range query.Filters {
		if filter.Field == query.OrderBy && !isNumeric(filter.Value) {
			return fmt.Sprintf("data->>'%s'", query.OrderBy)
		}
	}
	return fmt.Sprintf("(data->>'%s')::numeric", query.OrderBy)
}

// isNumeric decides if the filter value needs the numeric cast.
func isNumeric(value any) bool {
	switch value.(type) {
	case int, int32, int64, uint, float32, float64:
		return true
	default:
		return false
	}
}

// indexName derives the deterministic expression index name.
func indexName(collection, field string) string {
	return "idx_documents_" + strings.ToLower(collection) + "_" + strings.ToLower(field)
}
