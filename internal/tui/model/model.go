// Package model provides a framework-agnostic list model built on top of
// adapter interfaces so the TUI and CLI code can remain presentation-focused.
package model

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

// ErrNotFound is returned when a requested school cannot be found.
var ErrNotFound = errors.New("not found")

// UIModel ties a QueryBinding and its PresentationAdapter to the store
// lookups the screens need. It depends only on adapter interfaces.
//
// Query methods evaluate and apply a result in the binding; the caller syncs
// the adapter on its UI context once it has observed the result.
type UIModel struct {
	binding *QueryBinding
	view    *PresentationAdapter
	lookup  adapters.SchoolLookup
	log     *zap.Logger
}

// New constructs a UIModel backed by the provided adapters. lookup may be nil
// when detail views and borough lists are not needed.
func New(store adapters.SchoolStore, lookup adapters.SchoolLookup, log *zap.Logger) *UIModel {
	if log == nil {
		log = zap.NewNop()
	}
	b := NewQueryBinding(store, log.Named("binding"))
	return &UIModel{
		binding: b,
		view:    NewPresentationAdapter(b, log.Named("presentation")),
		lookup:  lookup,
		log:     log,
	}
}

// Binding returns the query binding.
func (m *UIModel) Binding() *QueryBinding { return m.binding }

// View returns the presentation adapter.
func (m *UIModel) View() *PresentationAdapter { return m.view }

// Load evaluates the active query and syncs the view. It is meant for
// synchronous callers that own the UI context, such as the CLI.
func (m *UIModel) Load(ctx context.Context) error {
	if _, err := m.binding.Refresh(ctx); err != nil {
		return err
	}
	m.view.Sync()
	return nil
}

// Refresh re-evaluates the active query without syncing the view.
func (m *UIModel) Refresh(ctx context.Context) (adapters.ResultSet, error) {
	return m.binding.Refresh(ctx)
}

// Search applies the query for search box text (see QueryForText).
func (m *UIModel) Search(ctx context.Context, text string) (adapters.ResultSet, error) {
	return m.binding.SetQuery(ctx, QueryForText(text))
}

// CancelSearch resets the list to every school, re-reading the store.
func (m *UIModel) CancelSearch(ctx context.Context) (adapters.ResultSet, error) {
	return m.binding.SetQuery(ctx, All())
}

// ApplyFilter shows the schools matching criteria.
func (m *UIModel) ApplyFilter(ctx context.Context, criteria adapters.FilterCriteria) (adapters.ResultSet, error) {
	return m.binding.SetQuery(ctx, Filter(criteria))
}

// Detail fetches the full record of a school.
func (m *UIModel) Detail(ctx context.Context, dbn string) (adapters.School, error) {
	if m.lookup == nil {
		sec, row, ok := m.view.Locate(dbn)
		if !ok {
			return adapters.School{}, ErrNotFound
		}
		return m.view.Item(sec, row)
	}
	s, err := m.lookup.GetSchool(ctx, dbn)
	if errors.Is(err, adapters.ErrNotFound) {
		return adapters.School{}, ErrNotFound
	}
	return s, err
}

// Boroughs lists the boroughs offered by the filter picker.
func (m *UIModel) Boroughs(ctx context.Context) ([]string, error) {
	if m.lookup == nil {
		return append([]string(nil), adapters.KnownBoroughs...), nil
	}
	return m.lookup.Boroughs(ctx)
}
