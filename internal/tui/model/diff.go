package model

import "github.com/VoxDroid/nycschools/internal/tui/adapters"

// Change lists the schools, by DBN, that appear in only one of two
// consecutive ResultSets. Both slices follow the order of their ResultSet.
type Change struct {
	Inserted []string
	Removed  []string
}

// Empty reports whether nothing was inserted or removed.
func (c Change) Empty() bool { return len(c.Inserted) == 0 && len(c.Removed) == 0 }

// Diff compares prev and next by DBN. It is informational only; next still
// replaces prev as a whole.
func Diff(prev, next adapters.ResultSet) Change {
	before := dbnSet(prev)
	after := dbnSet(next)
	var c Change
	for _, sec := range next.Sections {
		for _, s := range sec.Schools {
			if _, ok := before[s.DBN]; !ok {
				c.Inserted = append(c.Inserted, s.DBN)
			}
		}
	}
	for _, sec := range prev.Sections {
		for _, s := range sec.Schools {
			if _, ok := after[s.DBN]; !ok {
				c.Removed = append(c.Removed, s.DBN)
			}
		}
	}
	return c
}

func dbnSet(rs adapters.ResultSet) map[string]struct{} {
	m := make(map[string]struct{}, rs.Count())
	for _, sec := range rs.Sections {
		for _, s := range sec.Schools {
			m[s.DBN] = struct{}{}
		}
	}
	return m
}
