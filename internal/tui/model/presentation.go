package model

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

// DisplayMode is a rendering hint for list rows. It never affects counts or
// ordering.
type DisplayMode int

// Display modes.
const (
	Compact DisplayMode = iota
	Detailed
)

func (m DisplayMode) String() string {
	switch m {
	case Compact:
		return "compact"
	case Detailed:
		return "detailed"
	default:
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
}

// Next returns the other display mode.
func (m DisplayMode) Next() DisplayMode {
	if m == Detailed {
		return Compact
	}
	return Detailed
}

// ParseDisplayMode parses "compact" or "detailed" (any case). The empty string
// is Compact.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compact":
		return Compact, nil
	case "detailed":
		return Detailed, nil
	default:
		return Compact, fmt.Errorf("unknown display mode %q", s)
	}
}

// IndexOutOfRangeError reports a section or row outside the bounds most
// recently reported by the PresentationAdapter. Row is -1 when only the
// section was out of range.
type IndexOutOfRangeError struct {
	Section int
	Row     int
}

func (e *IndexOutOfRangeError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("section %d out of range", e.Section)
	}
	return fmt.Sprintf("row %d in section %d out of range", e.Row, e.Section)
}

// PresentationAdapter exposes the binding's ResultSet as index-addressable
// sections and rows.
//
// The adapter reads from a snapshot taken by Sync, so counts and items stay
// consistent with each other between two Syncs even if the binding applies a
// new result in the meantime. Sync must be called from the UI context.
type PresentationAdapter struct {
	binding  *QueryBinding
	log      *zap.Logger
	snapshot adapters.ResultSet
	mode     DisplayMode
}

// NewPresentationAdapter returns an adapter synced to binding's current result.
func NewPresentationAdapter(binding *QueryBinding, log *zap.Logger) *PresentationAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &PresentationAdapter{binding: binding, log: log}
	a.Sync()
	return a
}

// Sync takes a new snapshot of the binding's ResultSet and returns it.
func (a *PresentationAdapter) Sync() adapters.ResultSet {
	a.snapshot = a.binding.Current()
	return a.snapshot
}

// Snapshot returns the ResultSet the adapter currently presents.
func (a *PresentationAdapter) Snapshot() adapters.ResultSet { return a.snapshot }

// SectionCount returns the number of sections, 0 when the result is empty.
func (a *PresentationAdapter) SectionCount() int { return len(a.snapshot.Sections) }

// RowCount returns the number of schools in section.
func (a *PresentationAdapter) RowCount(section int) (int, error) {
	if section < 0 || section >= len(a.snapshot.Sections) {
		return 0, &IndexOutOfRangeError{Section: section, Row: -1}
	}
	return len(a.snapshot.Sections[section].Schools), nil
}

// Item returns the school at section/row.
func (a *PresentationAdapter) Item(section, row int) (adapters.School, error) {
	if section < 0 || section >= len(a.snapshot.Sections) {
		return adapters.School{}, &IndexOutOfRangeError{Section: section, Row: row}
	}
	schools := a.snapshot.Sections[section].Schools
	if row < 0 || row >= len(schools) {
		return adapters.School{}, &IndexOutOfRangeError{Section: section, Row: row}
	}
	return schools[row], nil
}

// Row is Item for renderers. An out-of-range request is a synchronization bug
// in the caller: it is logged at DPanic, which panics under a development
// logger, and otherwise yields ok=false so nothing is drawn.
func (a *PresentationAdapter) Row(section, row int) (adapters.School, bool) {
	s, err := a.Item(section, row)
	if err != nil {
		a.log.DPanic("presentation index out of range", zap.Error(err),
			zap.Int("sections", len(a.snapshot.Sections)))
		return adapters.School{}, false
	}
	return s, true
}

// SectionTitle returns the header for section, or "" when out of range.
func (a *PresentationAdapter) SectionTitle(section int) string {
	if section < 0 || section >= len(a.snapshot.Sections) {
		return ""
	}
	return a.snapshot.Sections[section].Name
}

// SectionIndexTitles returns the jump labels, empty when there are no sections.
func (a *PresentationAdapter) SectionIndexTitles() []string {
	if len(a.snapshot.Sections) == 0 {
		return nil
	}
	out := make([]string, len(a.snapshot.IndexTitles))
	copy(out, a.snapshot.IndexTitles)
	return out
}

// SectionForIndexTitle maps a tapped jump label to a section index. A section
// named title wins; otherwise the first section whose key follows title, or
// the last section when none does. proposedIndex is used when it already
// points at a matching section. It returns -1 when there are no sections.
func (a *PresentationAdapter) SectionForIndexTitle(title string, proposedIndex int) int {
	secs := a.snapshot.Sections
	if len(secs) == 0 {
		return -1
	}
	if proposedIndex >= 0 && proposedIndex < len(secs) && secs[proposedIndex].Name == title {
		return proposedIndex
	}
	i := sort.Search(len(secs), func(i int) bool {
		return adapters.CompareKeys(secs[i].Name, title) >= 0
	})
	if i == len(secs) {
		return len(secs) - 1
	}
	return i
}

// Locate returns the section and row of the school with dbn.
func (a *PresentationAdapter) Locate(dbn string) (section, row int, ok bool) {
	for si, sec := range a.snapshot.Sections {
		for ri, s := range sec.Schools {
			if s.DBN == dbn {
				return si, ri, true
			}
		}
	}
	return 0, 0, false
}

// DisplayMode returns the current rendering hint.
func (a *PresentationAdapter) DisplayMode() DisplayMode { return a.mode }

// SetDisplayMode changes the rendering hint.
func (a *PresentationAdapter) SetDisplayMode(m DisplayMode) { a.mode = m }
