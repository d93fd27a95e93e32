package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/VoxDroid/nycschools/internal/format"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
	"github.com/VoxDroid/nycschools/internal/tui/sanitize"
)

const (
	nameWidth   = 56
	detailWidth = 76
)

// printListing writes the adapter's snapshot section by section.
func printListing(w io.Writer, view *modelpkg.PresentationAdapter) {
	if view.SectionCount() == 0 {
		fmt.Fprintln(w, "no schools")
		return
	}
	for sec := 0; sec < view.SectionCount(); sec++ {
		fmt.Fprintf(w, "[%s]\n", view.SectionTitle(sec))
		rows, err := view.RowCount(sec)
		if err != nil {
			continue
		}
		for row := 0; row < rows; row++ {
			s, ok := view.Row(sec, row)
			if !ok {
				continue
			}
			fmt.Fprintln(w, listRow(s, view.DisplayMode()))
		}
	}
}

func listRow(s adapters.School, mode modelpkg.DisplayMode) string {
	if mode == modelpkg.Compact {
		return fmt.Sprintf("  %s  %s", s.DBN, sanitize.Line(s.Name))
	}
	return fmt.Sprintf("  %s  %s  %-13s %-28s grad %s",
		s.DBN, sanitize.Pad(s.Name, nameWidth), sanitize.Fit(s.Borough, 13),
		sanitize.Fit(s.Neighborhood, 28), format.Percentage(s.GraduationRate))
}

// printDetail writes every field of a school.
func printDetail(w io.Writer, s adapters.School) {
	fmt.Fprintf(w, "%s (%s)\n", sanitize.Line(s.Name), s.DBN)
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(w, "  %-12s %s\n", label+":", sanitize.Line(value))
	}
	field("Borough", s.Borough)
	field("Neighborhood", s.Neighborhood)
	field("Address", s.Address)
	field("Phone", s.Phone)
	field("Email", s.Email)
	field("Website", s.Website)
	if s.TotalStudents > 0 {
		field("Students", humanize.Comma(int64(s.TotalStudents)))
	}
	field("Graduation", format.Percentage(s.GraduationRate))
	field("Attendance", format.Percentage(s.AttendanceRate))
	if s.SAT != nil {
		fmt.Fprintf(w, "  SAT (%d test takers): reading %d, math %d, writing %d\n",
			s.SAT.TestTakers, s.SAT.Reading, s.SAT.Math, s.SAT.Writing)
	}
	if o := strings.TrimSpace(s.Overview); o != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sanitize.Paragraph(o, detailWidth))
	}
}
