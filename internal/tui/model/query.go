package model

import (
	"fmt"
	"unicode/utf8"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

// SearchThreshold is the number of characters search text must exceed before
// it narrows the list. Shorter text shows every school.
const SearchThreshold = 3

// QueryKind selects which store query a Query evaluates.
type QueryKind int

// Query kinds.
const (
	AllSchools QueryKind = iota
	SearchQuery
	FilterQuery
)

func (k QueryKind) String() string {
	switch k {
	case AllSchools:
		return "all"
	case SearchQuery:
		return "search"
	case FilterQuery:
		return "filter"
	default:
		return fmt.Sprintf("QueryKind(%d)", int(k))
	}
}

// Query is the active selection of schools.
type Query struct {
	Kind     QueryKind
	Text     string
	Criteria adapters.FilterCriteria
}

// All returns the unfiltered query.
func All() Query { return Query{Kind: AllSchools} }

// Search returns a name search for text. It only narrows the list when
// SearchActive(text) holds.
func Search(text string) Query { return Query{Kind: SearchQuery, Text: text} }

// Filter returns a query for the given criteria.
func Filter(c adapters.FilterCriteria) Query { return Query{Kind: FilterQuery, Criteria: c} }

// SearchActive reports whether text is long enough to narrow the list. Every
// character counts, spaces included, and the text is matched as typed.
func SearchActive(text string) bool {
	return utf8.RuneCountInString(text) > SearchThreshold
}

// QueryForText maps search box input to the query the list should show.
func QueryForText(text string) Query {
	if SearchActive(text) {
		return Search(text)
	}
	return All()
}

// Effective returns the query actually evaluated: a search at or below the
// threshold behaves as All.
func (q Query) Effective() Query {
	if q.Kind == SearchQuery && !SearchActive(q.Text) {
		return All()
	}
	return q
}

func (q Query) String() string {
	switch q.Kind {
	case SearchQuery:
		return fmt.Sprintf("search %q", q.Text)
	case FilterQuery:
		return "filter " + q.Criteria.String()
	default:
		return q.Kind.String()
	}
}
