package model

import (
	"context"
	"strings"
	"sync"

	"github.com/VoxDroid/nycschools/internal/format"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

// fakeStore is an in-memory SchoolStore. Setting err makes every query fail;
// gates lets a test hold a specific search text until it closes the channel.
type fakeStore struct {
	mu      sync.Mutex
	schools []adapters.School
	err     error
	gates   map[string]chan struct{}
	calls   int
}

func newFakeStore(schools ...adapters.School) *fakeStore {
	return &fakeStore{schools: schools, gates: map[string]chan struct{}{}}
}

func school(dbn, name, borough string) adapters.School {
	return adapters.School{DBN: dbn, Name: name, Borough: borough}
}

func (f *fakeStore) set(schools ...adapters.School) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schools = schools
}

func (f *fakeStore) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeStore) gate(text string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[text] = ch
	return ch
}

func (f *fakeStore) snapshot() ([]adapters.School, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]adapters.School(nil), f.schools...), f.err
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) QueryAll(ctx context.Context) (adapters.ResultSet, error) {
	all, err := f.snapshot()
	if err != nil {
		return adapters.ResultSet{}, err
	}
	return adapters.BuildResultSet(all), nil
}

func (f *fakeStore) QuerySearch(ctx context.Context, text string) (adapters.ResultSet, error) {
	f.mu.Lock()
	g := f.gates[text]
	f.mu.Unlock()
	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return adapters.ResultSet{}, ctx.Err()
		}
	}
	all, err := f.snapshot()
	if err != nil {
		return adapters.ResultSet{}, err
	}
	needle := format.Normalize(text)
	var out []adapters.School
	for _, s := range all {
		if strings.Contains(format.Normalize(s.Name), needle) {
			out = append(out, s)
		}
	}
	return adapters.BuildResultSet(out), nil
}

func (f *fakeStore) QueryFiltered(ctx context.Context, c adapters.FilterCriteria) (adapters.ResultSet, error) {
	all, err := f.snapshot()
	if err != nil {
		return adapters.ResultSet{}, err
	}
	var out []adapters.School
	for _, s := range all {
		if len(c.Boroughs) > 0 {
			match := false
			for _, b := range c.Boroughs {
				if strings.EqualFold(b, s.Borough) {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, s)
	}
	return adapters.BuildResultSet(out), nil
}

func names(rs adapters.ResultSet) []string {
	var out []string
	for _, sec := range rs.Sections {
		for _, s := range sec.Schools {
			out = append(out, s.Name)
		}
	}
	return out
}
