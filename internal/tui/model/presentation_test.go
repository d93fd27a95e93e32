package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

func loadedAdapter(t *testing.T, store *fakeStore, log *zap.Logger) *PresentationAdapter {
	t.Helper()
	b := NewQueryBinding(store, nil)
	_, err := b.Refresh(context.Background())
	require.NoError(t, err)
	return NewPresentationAdapter(b, log)
}

func TestPresentationCounts(t *testing.T) {
	store := newFakeStore(
		school("1", "Alpha High", "Bronx"),
		school("2", "Apex Prep", "Bronx"),
		school("3", "Beta Academy", "Queens"),
		school("4", "47 The American Sign Language", "Manhattan"),
	)
	a := loadedAdapter(t, store, nil)

	require.Equal(t, 3, a.SectionCount())
	assert.Equal(t, []string{"A", "B", "#"}, a.SectionIndexTitles())
	assert.Equal(t, "#", a.SectionTitle(2))

	n, err := a.RowCount(0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	s, err := a.Item(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Apex Prep", s.Name)

	sec, row, ok := a.Locate("3")
	require.True(t, ok)
	assert.Equal(t, [2]int{1, 0}, [2]int{sec, row})
}

func TestPresentationOutOfRange(t *testing.T) {
	a := loadedAdapter(t, newFakeStore(school("1", "Alpha High", "Bronx")), nil)

	_, err := a.RowCount(1)
	var ie *IndexOutOfRangeError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, -1, ie.Row)

	_, err = a.Item(0, 5)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 5, ie.Row)

	_, err = a.Item(-1, 0)
	require.ErrorAs(t, err, &ie)

	assert.Equal(t, "", a.SectionTitle(3))
}

func TestPresentationRowOutOfRangeProduction(t *testing.T) {
	a := loadedAdapter(t, newFakeStore(school("1", "Alpha High", "Bronx")), zap.NewNop())
	_, ok := a.Row(0, 1)
	assert.False(t, ok)
	s, ok := a.Row(0, 0)
	require.True(t, ok)
	assert.Equal(t, "Alpha High", s.Name)
}

func TestPresentationRowOutOfRangeDevelopment(t *testing.T) {
	a := loadedAdapter(t, newFakeStore(school("1", "Alpha High", "Bronx")), zap.NewExample(zap.Development()))
	assert.Panics(t, func() { a.Row(2, 0) })
}

func TestPresentationEmpty(t *testing.T) {
	a := loadedAdapter(t, newFakeStore(), nil)
	assert.Zero(t, a.SectionCount())
	assert.Empty(t, a.SectionIndexTitles())
	assert.Equal(t, -1, a.SectionForIndexTitle("A", 0))
}

func TestSectionForIndexTitle(t *testing.T) {
	store := newFakeStore(
		school("1", "Alpha High", "Bronx"),
		school("2", "Delta Prep", "Bronx"),
		school("3", "Gamma Academy", "Queens"),
	)
	a := loadedAdapter(t, store, nil)

	assert.Equal(t, 0, a.SectionForIndexTitle("A", 0))
	assert.Equal(t, 1, a.SectionForIndexTitle("D", 7), "bad proposal falls back to lookup")
	assert.Equal(t, 1, a.SectionForIndexTitle("B", 0), "missing title maps to the next section")
	assert.Equal(t, 2, a.SectionForIndexTitle("Z", 0), "past the end maps to the last section")
	assert.Equal(t, 2, a.SectionForIndexTitle("#", 0))
}

func TestPresentationSnapshotIsStableUntilSync(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(school("1", "Alpha High", "Bronx"))
	b := NewQueryBinding(store, nil)
	_, err := b.Refresh(ctx)
	require.NoError(t, err)
	a := NewPresentationAdapter(b, nil)

	store.set(school("1", "Alpha High", "Bronx"), school("2", "Beta Academy", "Queens"))
	_, err = b.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, a.SectionCount(), "adapter keeps its snapshot until synced")
	rs := a.Sync()
	assert.Equal(t, 2, rs.Count())
	assert.Equal(t, 2, a.SectionCount())
}

func TestDisplayMode(t *testing.T) {
	a := loadedAdapter(t, newFakeStore(school("1", "Alpha High", "Bronx")), nil)
	assert.Equal(t, Compact, a.DisplayMode())
	a.SetDisplayMode(a.DisplayMode().Next())
	assert.Equal(t, Detailed, a.DisplayMode())
	assert.Equal(t, 1, a.SectionCount())

	m, err := ParseDisplayMode("Detailed")
	require.NoError(t, err)
	assert.Equal(t, Detailed, m)
	_, err = ParseDisplayMode("grid")
	assert.Error(t, err)
	assert.Equal(t, "compact", Compact.String())
}

func TestSectionIndexTitlesIsACopy(t *testing.T) {
	a := loadedAdapter(t, newFakeStore(school("1", "Alpha High", "Bronx")), nil)
	titles := a.SectionIndexTitles()
	titles[0] = "Z"
	assert.Equal(t, []string{"A"}, a.SectionIndexTitles())
	assert.Equal(t, []adapters.Section{{Name: "A", Schools: []adapters.School{school("1", "Alpha High", "Bronx")}}}, a.Snapshot().Sections)
}
