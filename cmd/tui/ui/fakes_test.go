package ui

import (
	"context"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/VoxDroid/nycschools/internal/fetch"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
)

// memStore is an in-memory SchoolStore.
type memStore struct {
	mu      sync.Mutex
	schools []adapters.School
}

func (s *memStore) all() []adapters.School {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]adapters.School(nil), s.schools...)
}

func (s *memStore) add(sch adapters.School) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schools = append(s.schools, sch)
}

func (s *memStore) QueryAll(_ context.Context) (adapters.ResultSet, error) {
	return adapters.BuildResultSet(s.all()), nil
}

func (s *memStore) QuerySearch(_ context.Context, text string) (adapters.ResultSet, error) {
	var out []adapters.School
	for _, sch := range s.all() {
		if strings.Contains(strings.ToLower(sch.Name), strings.ToLower(text)) {
			out = append(out, sch)
		}
	}
	return adapters.BuildResultSet(out), nil
}

func (s *memStore) QueryFiltered(_ context.Context, c adapters.FilterCriteria) (adapters.ResultSet, error) {
	var out []adapters.School
	for _, sch := range s.all() {
		for _, b := range c.Boroughs {
			if sch.Borough == b {
				out = append(out, sch)
			}
		}
	}
	return adapters.BuildResultSet(out), nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	res   fetch.Result
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context) (fetch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.res, f.err
}

func sampleStore() *memStore {
	return &memStore{schools: []adapters.School{
		{DBN: "02M260", Name: "Alpha High", Borough: "Manhattan", Neighborhood: "Chelsea", GraduationRate: "0.9"},
		{DBN: "10X111", Name: "Beta Academy", Borough: "Bronx", Neighborhood: "Fordham"},
		{DBN: "13K222", Name: "Bushwick Prep", Borough: "Brooklyn", Neighborhood: "Bushwick"},
		{DBN: "24Q333", Name: "21st Century School", Borough: "Queens"},
	}}
}

// newLoaded returns a TuiModel that has processed its initial load.
func newLoaded(store *memStore, opts Options) *TuiModel {
	m := NewModel(modelpkg.New(store, nil, nil), opts)
	send(m, m.Init()())
	return m
}

func send(m *TuiModel, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// press builds the key message for a named key or typed text.
func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
