package store

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/VoxDroid/nycschools/internal/format"
)

// MatchName returns true if query is a case- and diacritic-insensitive
// substring of name. The query is not trimmed: "high " only matches names
// with a space after "high". An empty query matches everything.
func MatchName(name, query string) bool {
	q := format.Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(format.Normalize(name), q)
}

// SearchSchools returns the schools whose name contains text, ordered by name.
// Matching is done in Go so that diacritics fold the same way they do for
// section keys.
func (r *Repository) SearchSchools(ctx context.Context, text string) ([]School, error) {
	all, err := r.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]School, 0, len(all))
	for _, s := range all {
		if MatchName(s.Name, text) {
			out = append(out, s)
		}
	}
	return out, nil
}

type schoolNames []School

func (s schoolNames) String(i int) string { return format.Normalize(s[i].Name) }
func (s schoolNames) Len() int            { return len(s) }

// FuzzySearchSchools ranks schools by how well their names fuzzy-match query
// (characters in order, not necessarily adjacent). Best matches come first.
func (r *Repository) FuzzySearchSchools(ctx context.Context, query string) ([]School, error) {
	all, err := r.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	q := format.Normalize(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}
	matches := fuzzy.FindFrom(q, schoolNames(all))
	out := make([]School, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out, nil
}
