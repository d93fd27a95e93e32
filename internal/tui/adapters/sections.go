package adapters

import (
	"sort"
	"strings"
	"unicode"

	"github.com/VoxDroid/nycschools/internal/format"
)

// OtherSection is the key for names that do not start with a letter. It sorts
// after every letter.
const OtherSection = "#"

// SectionKey returns the index key of a school name: its first letter with
// diacritics removed, upper-cased, or OtherSection.
func SectionKey(name string) string {
	c := format.FirstChar(format.Normalize(strings.TrimSpace(name)))
	if c == "" {
		return OtherSection
	}
	r := []rune(c)[0]
	if !unicode.IsLetter(r) {
		return OtherSection
	}
	return string(unicode.ToUpper(r))
}

// CompareKeys orders section keys: letters by code point, OtherSection last.
func CompareKeys(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == OtherSection:
		return 1
	case b == OtherSection:
		return -1
	case a < b:
		return -1
	default:
		return 1
	}
}

// BuildResultSet groups schools into sections keyed by SectionKey. Sections
// follow CompareKeys; schools inside a section are ordered by folded name,
// then DBN. The input slice is not modified.
func BuildResultSet(schools []School) ResultSet {
	type keyed struct {
		key    string
		folded string
		school School
	}
	rows := make([]keyed, 0, len(schools))
	for _, s := range schools {
		rows = append(rows, keyed{key: SectionKey(s.Name), folded: format.Normalize(s.Name), school: s})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := CompareKeys(rows[i].key, rows[j].key); c != 0 {
			return c < 0
		}
		if rows[i].folded != rows[j].folded {
			return rows[i].folded < rows[j].folded
		}
		return rows[i].school.DBN < rows[j].school.DBN
	})

	var rs ResultSet
	for _, row := range rows {
		n := len(rs.Sections)
		if n == 0 || rs.Sections[n-1].Name != row.key {
			rs.Sections = append(rs.Sections, Section{Name: row.key})
			rs.IndexTitles = append(rs.IndexTitles, row.key)
			n++
		}
		rs.Sections[n-1].Schools = append(rs.Sections[n-1].Schools, row.school)
	}
	return rs
}
