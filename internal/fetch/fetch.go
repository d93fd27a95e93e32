// Package fetch downloads the school directory and SAT results, stores them
// in the local cache and tells listeners that the data changed.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VoxDroid/nycschools/internal/config"
	"github.com/VoxDroid/nycschools/internal/store"
)

// ErrNoSources is returned when no school directory source is configured.
var ErrNoSources = errors.New("no school directory source configured")

// Notifier is told once per completed fetch cycle that the cached data
// changed. model.UpdateChannel implements it.
type Notifier interface {
	OnDataChanged()
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func()

// OnDataChanged calls f.
func (f NotifyFunc) OnDataChanged() { f() }

// Result summarizes one fetch cycle.
type Result struct {
	ID        string
	Status    store.FetchStatus
	Schools   int
	SATScores int
	Skipped   int
	// SATErr is set when the directory loaded but the SAT dataset did not.
	SATErr   error
	Duration time.Duration
}

// Fetcher runs fetch cycles against a store.Repository.
type Fetcher struct {
	repo     *store.Repository
	sources  config.Sources
	client   *http.Client
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithNotifier sets who is told about completed cycles.
func WithNotifier(n Notifier) Option {
	return func(f *Fetcher) { f.notifier = n }
}

// WithLogger sets the fetcher's logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// New returns a Fetcher that loads sources into repo.
func New(repo *store.Repository, sources config.Sources, opts ...Option) *Fetcher {
	f := &Fetcher{
		repo:    repo,
		sources: sources,
		client:  &http.Client{Timeout: config.Default.FetchTimeout},
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch runs one cycle: both datasets are loaded concurrently, written in one
// transaction and recorded in the fetch history. The notifier is called once
// when the directory was stored, even if the SAT dataset failed (status
// partial). When nothing could be stored a failed history row is written, the
// notifier is not called and the error is returned.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	res := Result{ID: uuid.NewString()}
	if strings.TrimSpace(f.sources.Schools) == "" {
		return res, ErrNoSources
	}
	log := f.log.With(zap.String("cycle", res.ID))
	started := f.now()
	log.Info("fetch started", zap.String("schools", f.sources.Schools), zap.String("sat", f.sources.SAT))

	var (
		schools []store.School
		scores  []store.SATScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schools, res.Skipped, err = f.loadSchools(gctx)
		return err
	})
	if f.sources.SAT != "" {
		g.Go(func() error {
			var err error
			scores, err = f.loadSAT(gctx)
			if err != nil {
				// the directory alone is still worth storing
				res.SATErr = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, f.fail(ctx, log, res, started, err)
	}

	n, m, err := f.repo.UpsertSchools(ctx, schools, scores)
	if err != nil {
		return res, f.fail(ctx, log, res, started, fmt.Errorf("store schools: %w", err))
	}
	res.Schools, res.SATScores = n, m
	res.Status = store.FetchOK
	if res.SATErr != nil {
		res.Status = store.FetchPartial
	}
	res.Duration = f.now().Sub(started)

	rec := store.FetchRecord{
		StartedAt:  started,
		FinishedAt: started.Add(res.Duration),
		Source:     f.sources.Schools,
		Schools:    res.Schools,
		SATScores:  res.SATScores,
		Status:     res.Status,
	}
	if res.SATErr != nil {
		rec.Error = res.SATErr.Error()
	}
	if _, err := f.repo.RecordFetch(ctx, rec); err != nil {
		log.Warn("record fetch history", zap.Error(err))
	}

	log.Info("fetch finished",
		zap.String("status", string(res.Status)),
		zap.Int("schools", res.Schools),
		zap.Int("sat_scores", res.SATScores),
		zap.Int("skipped", res.Skipped),
		zap.Duration("took", res.Duration),
		zap.NamedError("sat_error", res.SATErr))

	if f.notifier != nil {
		f.notifier.OnDataChanged()
	}
	return res, nil
}

func (f *Fetcher) fail(ctx context.Context, log *zap.Logger, res Result, started time.Time, cause error) error {
	finished := f.now()
	rec := store.FetchRecord{
		StartedAt:  started,
		FinishedAt: finished,
		Source:     f.sources.Schools,
		Status:     store.FetchFailed,
		Error:      cause.Error(),
	}
	// the caller's context may be the reason for the failure
	if _, err := f.repo.RecordFetch(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("record fetch history", zap.Error(err))
	}
	log.Error("fetch failed", zap.Error(cause), zap.Duration("took", finished.Sub(started)))
	return fmt.Errorf("fetch %s: %w", res.ID, cause)
}

func (f *Fetcher) loadSchools(ctx context.Context) ([]store.School, int, error) {
	rc, err := f.open(ctx, f.sources.Schools)
	if err != nil {
		return nil, 0, fmt.Errorf("school directory: %w", err)
	}
	defer func() { _ = rc.Close() }()
	return DecodeSchools(rc)
}

func (f *Fetcher) loadSAT(ctx context.Context) ([]store.SATScore, error) {
	rc, err := f.open(ctx, f.sources.SAT)
	if err != nil {
		return nil, fmt.Errorf("sat results: %w", err)
	}
	defer func() { _ = rc.Close() }()
	return DecodeSAT(rc)
}
