package repositories

import (
	"context"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"
)

// StandingsRepository is the write side access to the denormalized records.
type StandingsRepository interface {
	Upsert(ctx context.Context, record *player.StandingsRecord) error
}

// standingsRepository is the repository instance.
type standingsRepository struct {
	store docstore.Store
}

// NewStandingsRepository creates a new repository over the document store.
func NewStandingsRepository(store docstore.Store) StandingsRepository {
	return &standingsRepository{store: store}
}

// Upsert fully rewrites the record of a (player, category) pair.
func (sr *standingsRepository) Upsert(ctx context.Context, record *player.StandingsRecord) error {
	return sr.store.Set(ctx, player.StandingsCollection, record.DocID(), record)
}
