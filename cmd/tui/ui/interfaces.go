package ui

import (
	"context"

	"github.com/VoxDroid/nycschools/internal/fetch"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
)

// Model defines the subset of the framework-agnostic internal UI model that
// the TUI depends on. Query methods may run in tea.Cmd goroutines; View()
// is only synced inside Update.
//
// Named `Model` (instead of `UIModel`) to avoid redundant package/type
// stuttering when referenced as `ui.Model`.
type Model interface {
	View() *modelpkg.PresentationAdapter
	Refresh(ctx context.Context) (adapters.ResultSet, error)
	Search(ctx context.Context, text string) (adapters.ResultSet, error)
	CancelSearch(ctx context.Context) (adapters.ResultSet, error)
	ApplyFilter(ctx context.Context, criteria adapters.FilterCriteria) (adapters.ResultSet, error)
	Detail(ctx context.Context, dbn string) (adapters.School, error)
	Boroughs(ctx context.Context) ([]string, error)
}

// Fetcher runs one download cycle. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (fetch.Result, error)
}
