package model

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

// ErrSuperseded is returned by SetQuery and Refresh when a later call was
// issued before this one finished. Its result was discarded.
var ErrSuperseded = errors.New("query superseded by a newer request")

// QueryBinding owns the active Query and the ResultSet it yields.
//
// Evaluation happens outside the lock so a slow store does not block readers.
// Each call takes a generation number when issued; a result is applied only
// if no newer call has been issued since, so the visible ResultSet always
// belongs to the most recently requested query.
type QueryBinding struct {
	store adapters.SchoolStore
	log   *zap.Logger

	mu      sync.Mutex
	query   Query
	shown   Query
	current adapters.ResultSet
	issued  uint64

	// generation of the SetQuery call that set query
	queryGen uint64
}

// NewQueryBinding returns a binding showing All with an empty ResultSet. Call
// Refresh to load the first result.
func NewQueryBinding(store adapters.SchoolStore, log *zap.Logger) *QueryBinding {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryBinding{store: store, log: log, query: All(), shown: All()}
}

// SetQuery replaces the active query, evaluates it and returns the new
// ResultSet. On failure the previously shown query and result stay in place
// and the error is a *adapters.QueryFailure. A failed Refresh keeps the active
// query and only the result as it was.
func (b *QueryBinding) SetQuery(ctx context.Context, q Query) (adapters.ResultSet, error) {
	b.mu.Lock()
	b.query = q
	b.issued++
	gen := b.issued
	b.queryGen = gen
	b.mu.Unlock()
	return b.evaluate(ctx, q, gen)
}

// Refresh re-evaluates the active query against the store.
func (b *QueryBinding) Refresh(ctx context.Context) (adapters.ResultSet, error) {
	b.mu.Lock()
	q := b.query
	b.issued++
	gen := b.issued
	b.mu.Unlock()
	return b.evaluate(ctx, q, gen)
}

// Current returns the ResultSet most recently applied.
func (b *QueryBinding) Current() adapters.ResultSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Query returns the active query.
func (b *QueryBinding) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

func (b *QueryBinding) evaluate(ctx context.Context, q Query, gen uint64) (adapters.ResultSet, error) {
	rs, err := b.run(ctx, q.Effective())

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.issued {
		b.log.Debug("discarding superseded result", zap.Stringer("query", q), zap.Uint64("generation", gen))
		return adapters.ResultSet{}, ErrSuperseded
	}
	if err != nil {
		err = adapters.Unreachable(err)
		if gen == b.queryGen {
			b.query = b.shown
		}
		b.log.Warn("query failed", zap.Stringer("query", q), zap.Error(err))
		return adapters.ResultSet{}, err
	}
	b.current = rs
	b.shown = q
	b.log.Debug("query applied",
		zap.Stringer("query", q),
		zap.Int("sections", len(rs.Sections)),
		zap.Int("schools", rs.Count()))
	return rs, nil
}

func (b *QueryBinding) run(ctx context.Context, q Query) (adapters.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return adapters.ResultSet{}, err
	}
	switch q.Kind {
	case AllSchools:
		return b.store.QueryAll(ctx)
	case SearchQuery:
		return b.store.QuerySearch(ctx, q.Text)
	case FilterQuery:
		if err := q.Criteria.Validate(); err != nil {
			return adapters.ResultSet{}, err
		}
		return b.store.QueryFiltered(ctx, q.Criteria)
	default:
		return adapters.ResultSet{}, &adapters.QueryFailure{
			Reason: adapters.MalformedCriteria,
			Err:    errors.New("unknown query kind " + q.Kind.String()),
		}
	}
}
