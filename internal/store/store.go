// Package store provides the configuration-store backends holding the
// questionnaire catalog and advice bands.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/clearsight-health/riskscore/internal/model"
)

// ErrUnsupported is returned by backends that do not implement an optional
// access path, letting the resilience chain fall through to the next one.
var ErrUnsupported = eris.New("store: operation not supported")

// Reader is the read interface consumed by the scoring engine. Failures are
// plain error values so the fallback chain can inspect and continue.
type Reader interface {
	// ListCatalog returns all active questions with their options attached
	// in a single server-side aggregation. Backends without a joined path
	// return ErrUnsupported.
	ListCatalog(ctx context.Context) ([]model.Question, error)

	// ListActiveQuestions returns active questions without options.
	ListActiveQuestions(ctx context.Context) ([]model.Question, error)

	// ListOptions returns the options for the given question IDs in one
	// batched lookup, ordered by display order.
	ListOptions(ctx context.Context, questionIDs []string) ([]model.Option, error)

	// ListAdviceBands returns all configured advice bands.
	ListAdviceBands(ctx context.Context) ([]model.AdviceBand, error)
}

// Store extends Reader with the administrator-facing write interface.
type Store interface {
	Reader

	UpsertQuestion(ctx context.Context, q model.Question) error
	UpsertOption(ctx context.Context, o model.Option) error
	// UpsertAdviceBand is idempotent on the band's tier label,
	// case-insensitively.
	UpsertAdviceBand(ctx context.Context, b model.AdviceBand) error

	Migrate(ctx context.Context) error
	Close() error
}
