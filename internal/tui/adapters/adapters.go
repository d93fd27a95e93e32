// Package adapters provides the store-facing interfaces and lightweight types
// used by the list model, decoupling it from the SQLite store.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is used when a requested school cannot be found in the store.
var ErrNotFound = errors.New("not found")

// School is the read-only view of a school handed to the list model and the UI.
type School struct {
	DBN            string
	Name           string
	Borough        string
	Neighborhood   string
	Address        string
	Phone          string
	Email          string
	Website        string
	Overview       string
	TotalStudents  int
	GraduationRate string
	AttendanceRate string
	SAT            *SATSummary
}

// SATSummary mirrors store.SATScore for display.
type SATSummary struct {
	TestTakers int
	Reading    int
	Math       int
	Writing    int
}

// Section is a run of schools sharing the same index key.
type Section struct {
	Name    string
	Schools []School
}

// ResultSet is an ordered, sectioned snapshot of query results. It is never
// modified after construction; refreshes replace it wholesale.
type ResultSet struct {
	Sections    []Section
	IndexTitles []string
}

// Count returns the total number of schools across all sections.
func (r ResultSet) Count() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Schools)
	}
	return n
}

// FilterCriteria selects schools by borough, neighborhood and minimum
// graduation rate (a fraction in [0,1]).
type FilterCriteria struct {
	Boroughs          []string
	Neighborhood      string
	MinGraduationRate *float64
}

// KnownBoroughs are the borough names accepted in FilterCriteria.
var KnownBoroughs = []string{"Manhattan", "Bronx", "Brooklyn", "Queens", "Staten Island"}

// CanonicalBorough returns the KnownBoroughs spelling of name, matched
// case-insensitively.
func CanonicalBorough(name string) (string, bool) {
	n := strings.TrimSpace(name)
	for _, b := range KnownBoroughs {
		if strings.EqualFold(b, n) {
			return b, true
		}
	}
	return "", false
}

// Validate returns a *QueryFailure with reason MalformedCriteria when the
// criteria cannot be evaluated.
func (c FilterCriteria) Validate() error {
	if len(c.Boroughs) == 0 && strings.TrimSpace(c.Neighborhood) == "" && c.MinGraduationRate == nil {
		return &QueryFailure{Reason: MalformedCriteria, Err: errors.New("empty filter criteria")}
	}
	for _, b := range c.Boroughs {
		if _, ok := CanonicalBorough(b); !ok {
			return &QueryFailure{Reason: MalformedCriteria, Err: fmt.Errorf("unknown borough %q", b)}
		}
	}
	if r := c.MinGraduationRate; r != nil && (*r < 0 || *r > 1) {
		return &QueryFailure{Reason: MalformedCriteria, Err: fmt.Errorf("graduation rate %v outside [0,1]", *r)}
	}
	return nil
}

// String renders the criteria for status lines.
func (c FilterCriteria) String() string {
	var parts []string
	if len(c.Boroughs) > 0 {
		parts = append(parts, strings.Join(c.Boroughs, "|"))
	}
	if n := strings.TrimSpace(c.Neighborhood); n != "" {
		parts = append(parts, "near "+n)
	}
	if c.MinGraduationRate != nil {
		parts = append(parts, fmt.Sprintf("graduation >= %.0f%%", *c.MinGraduationRate*100))
	}
	return strings.Join(parts, ", ")
}

// SchoolStore evaluates the three query shapes against the persisted schools.
// Every method returns sections in a stable order; failures are *QueryFailure.
type SchoolStore interface {
	QueryAll(ctx context.Context) (ResultSet, error)
	QuerySearch(ctx context.Context, text string) (ResultSet, error)
	QueryFiltered(ctx context.Context, criteria FilterCriteria) (ResultSet, error)
}

// SchoolLookup serves the detail view and the filter picker.
type SchoolLookup interface {
	GetSchool(ctx context.Context, dbn string) (School, error)
	Boroughs(ctx context.Context) ([]string, error)
}
