package adapters

import (
	"context"
	"fmt"

	"github.com/VoxDroid/nycschools/internal/store"
)

// RepositoryAdapter adapts internal/store.Repository to SchoolStore and SchoolLookup.
type RepositoryAdapter struct{ repo *store.Repository }

// NewRepositoryAdapter returns an adapter that wraps a store.Repository.
func NewRepositoryAdapter(repo *store.Repository) *RepositoryAdapter {
	return &RepositoryAdapter{repo: repo}
}

// QueryAll returns every cached school, sectioned.
func (r *RepositoryAdapter) QueryAll(ctx context.Context) (ResultSet, error) {
	schools, err := r.repo.ListSchools(ctx)
	if err != nil {
		return ResultSet{}, Unreachable(fmt.Errorf("list schools: %w", err))
	}
	return BuildResultSet(fromStore(schools)), nil
}

// QuerySearch returns the schools whose name contains text.
func (r *RepositoryAdapter) QuerySearch(ctx context.Context, text string) (ResultSet, error) {
	schools, err := r.repo.SearchSchools(ctx, text)
	if err != nil {
		return ResultSet{}, Unreachable(fmt.Errorf("search schools: %w", err))
	}
	return BuildResultSet(fromStore(schools)), nil
}

// QueryFiltered returns the schools matching criteria.
func (r *RepositoryAdapter) QueryFiltered(ctx context.Context, criteria FilterCriteria) (ResultSet, error) {
	if err := criteria.Validate(); err != nil {
		return ResultSet{}, err
	}
	f := store.Filter{Neighborhood: criteria.Neighborhood, MinGraduationRate: criteria.MinGraduationRate}
	for _, b := range criteria.Boroughs {
		canon, _ := CanonicalBorough(b)
		f.Boroughs = append(f.Boroughs, canon)
	}
	schools, err := r.repo.FilterSchools(ctx, f)
	if err != nil {
		return ResultSet{}, Unreachable(fmt.Errorf("filter schools: %w", err))
	}
	return BuildResultSet(fromStore(schools)), nil
}

// GetSchool retrieves a single school by DBN.
func (r *RepositoryAdapter) GetSchool(ctx context.Context, dbn string) (School, error) {
	s, err := r.repo.GetSchool(ctx, dbn)
	if err != nil {
		return School{}, fmt.Errorf("get: %w", err)
	}
	if s == nil {
		return School{}, ErrNotFound
	}
	return FromStore(*s), nil
}

// Boroughs lists the boroughs present in the cache, spelled as KnownBoroughs
// where possible.
func (r *RepositoryAdapter) Boroughs(ctx context.Context) ([]string, error) {
	counts, err := r.repo.Boroughs(ctx)
	if err != nil {
		return nil, fmt.Errorf("boroughs: %w", err)
	}
	out := make([]string, 0, len(counts))
	for _, c := range counts {
		if canon, ok := CanonicalBorough(c.Borough); ok {
			out = append(out, canon)
			continue
		}
		out = append(out, c.Borough)
	}
	return out, nil
}

// Close closes the wrapped repository.
func (r *RepositoryAdapter) Close() error { return r.repo.Close() }

// FromStore maps a store.School into the adapter view.
func FromStore(s store.School) School {
	out := School{
		DBN:            s.DBN,
		Name:           s.Name,
		Borough:        s.Borough,
		Neighborhood:   s.Neighborhood,
		Address:        joinAddress(s.Address, s.City, s.Zip),
		Phone:          s.Phone,
		Email:          s.Email,
		Website:        s.Website,
		Overview:       s.Overview,
		TotalStudents:  s.TotalStudents,
		GraduationRate: s.GraduationRate,
		AttendanceRate: s.AttendanceRate,
	}
	if s.SAT != nil {
		out.SAT = &SATSummary{
			TestTakers: s.SAT.TestTakers,
			Reading:    s.SAT.ReadingAvg,
			Math:       s.SAT.MathAvg,
			Writing:    s.SAT.WritingAvg,
		}
	}
	return out
}

func fromStore(schools []store.School) []School {
	out := make([]School, 0, len(schools))
	for _, s := range schools {
		out = append(out, FromStore(s))
	}
	return out
}

func joinAddress(line, city, zip string) string {
	out := line
	if city != "" {
		if out != "" {
			out += ", "
		}
		out += city
	}
	if zip != "" {
		if out != "" {
			out += " "
		}
		out += zip
	}
	return out
}
