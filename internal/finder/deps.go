package finder

import (
	"context"

	"github.com/roach88/sqlfinder/internal/field"
	"github.com/roach88/sqlfinder/internal/ir"
)

// Resolver turns a selector into an ordered id list. The order is the row
// order of every statement built from it.
type Resolver interface {
	ResolveIDs(ctx context.Context, selector string) ([]int64, error)
}

// Registry classifies field names. Lookups are in-memory; hosts load the
// registry before building finders.
type Registry interface {
	Classify(name string) (field.Classification, error)
}

// EntityLoader loads a full entity. Only computed columns and Entities use it.
type EntityLoader interface {
	LoadEntity(ctx context.Context, id int64) (*ir.Entity, error)
}

// BatchEntityLoader is implemented by loaders that fetch several entities
// in one round trip. Computed columns prefetch through it when available;
// ids missing from the result are loaded one by one.
type BatchEntityLoader interface {
	LoadEntities(ctx context.Context, ids []int64) (map[int64]*ir.Entity, error)
}

// Executor runs a composed statement.
type Executor interface {
	Query(ctx context.Context, query string) ([]*ir.Row, error)
}

// LanguageSource reports the active and default content languages.
type LanguageSource interface {
	CurrentLanguage(ctx context.Context) (field.Language, error)
	DefaultLanguage(ctx context.Context) (field.Language, error)
}

// Deps bundles the host collaborators of a finder.
//
// Resolver is required to compose, Executor to materialize and Loader to
// evaluate computed columns. A nil Registry reads every field as text; a
// nil Languages always reads the default language.
type Deps struct {
	Resolver  Resolver
	Registry  Registry
	Loader    EntityLoader
	Executor  Executor
	Languages LanguageSource
}
