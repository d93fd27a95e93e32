package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

func greekSchools() *fakeStore {
	return newFakeStore(
		school("01M001", "Alpha High", "Manhattan"),
		school("02X002", "Beta Academy", "Bronx"),
		school("03K003", "Gamma Prep", "Brooklyn"),
	)
}

func TestBindingSearchThreshold(t *testing.T) {
	ctx := context.Background()
	b := NewQueryBinding(greekSchools(), nil)

	rs, err := b.SetQuery(ctx, QueryForText("Alp"))
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Count())

	rs, err = b.SetQuery(ctx, QueryForText("Alph"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha High"}, names(rs))
	assert.Equal(t, []string{"A"}, rs.IndexTitles)

	// a short search that still names a search query evaluates as All
	rs, err = b.SetQuery(ctx, Search("Alp"))
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Count())
}

func TestBindingRefreshIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := NewQueryBinding(greekSchools(), nil)

	first, err := b.Refresh(ctx)
	require.NoError(t, err)
	second, err := b.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, second, b.Current())
}

func TestBindingRefreshSeesNewData(t *testing.T) {
	ctx := context.Background()
	store := greekSchools()
	b := NewQueryBinding(store, nil)
	_, err := b.SetQuery(ctx, Search("gamma"))
	require.NoError(t, err)

	store.set(school("03K003", "Gamma Prep", "Brooklyn"), school("04Q004", "Gamma Tech", "Queens"))
	rs, err := b.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma Prep", "Gamma Tech"}, names(rs))
}

func TestBindingEmptyResultIsNotFailure(t *testing.T) {
	b := NewQueryBinding(greekSchools(), nil)
	rs, err := b.SetQuery(context.Background(), Search("zzzz"))
	require.NoError(t, err)
	assert.Zero(t, rs.Count())
	assert.Empty(t, rs.Sections)
	assert.Equal(t, Search("zzzz"), b.Query())
}

func TestBindingFailureKeepsPreviousResult(t *testing.T) {
	ctx := context.Background()
	store := greekSchools()
	b := NewQueryBinding(store, nil)
	before, err := b.Refresh(ctx)
	require.NoError(t, err)

	store.fail(errors.New("disk gone"))
	_, err = b.SetQuery(ctx, Search("beta"))
	var qf *adapters.QueryFailure
	require.ErrorAs(t, err, &qf)
	assert.Equal(t, adapters.StoreUnreachable, qf.Reason)

	assert.Equal(t, before, b.Current())
	assert.Equal(t, All(), b.Query(), "query reverts to the one still shown")
}

func TestBindingFailedRefreshKeepsPendingQuery(t *testing.T) {
	ctx := context.Background()
	store := greekSchools()
	b := NewQueryBinding(store, nil)
	before, err := b.Refresh(ctx)
	require.NoError(t, err)

	release := store.gate("beta academy")
	pending := make(chan error, 1)
	go func() {
		_, err := b.SetQuery(ctx, Search("beta academy"))
		pending <- err
	}()
	require.Eventually(t, func() bool { return b.Query().Text == "beta academy" }, time.Second, time.Millisecond)

	// a refresh that fails while the search is still running
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = b.Refresh(canceled)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, Search("beta academy"), b.Query(), "the requested search stays active")
	assert.Equal(t, before, b.Current())

	close(release)
	assert.ErrorIs(t, <-pending, ErrSuperseded)

	rs, err := b.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta Academy"}, names(rs))
}

func TestBindingRejectsMalformedCriteria(t *testing.T) {
	ctx := context.Background()
	b := NewQueryBinding(greekSchools(), nil)
	_, err := b.Refresh(ctx)
	require.NoError(t, err)

	_, err = b.SetQuery(ctx, Filter(adapters.FilterCriteria{Boroughs: []string{"Atlantis"}}))
	var qf *adapters.QueryFailure
	require.ErrorAs(t, err, &qf)
	assert.Equal(t, adapters.MalformedCriteria, qf.Reason)
	assert.Equal(t, 3, b.Current().Count())
}

func TestBindingFilter(t *testing.T) {
	b := NewQueryBinding(greekSchools(), nil)
	rs, err := b.SetQuery(context.Background(), Filter(adapters.FilterCriteria{Boroughs: []string{"bronx"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta Academy"}, names(rs))
}

func TestBindingLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := greekSchools()
	b := NewQueryBinding(store, nil)
	release := store.gate("alpha")

	slow := make(chan error, 1)
	go func() {
		_, err := b.SetQuery(ctx, Search("alpha"))
		slow <- err
	}()

	// wait until the slow query has been issued
	require.Eventually(t, func() bool { return b.Query().Text == "alpha" }, time.Second, time.Millisecond)

	rs, err := b.SetQuery(ctx, Search("gamma"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma Prep"}, names(rs))

	close(release)
	assert.ErrorIs(t, <-slow, ErrSuperseded)
	assert.Equal(t, []string{"Gamma Prep"}, names(b.Current()))
	assert.Equal(t, Search("gamma"), b.Query())
}

func TestBindingCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewQueryBinding(greekSchools(), nil)
	_, err := b.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, b.Current().Count())
}
