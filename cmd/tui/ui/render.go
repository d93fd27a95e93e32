package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/VoxDroid/nycschools/internal/format"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
	"github.com/VoxDroid/nycschools/internal/tui/sanitize"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#005F87")).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3A3A3A"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#87D787"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// title, status, notice and help lines
	chromeLines = 4
)

func (m *TuiModel) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m *TuiModel) listHeight() int {
	_, h := m.size()
	n := h - chromeLines
	if m.searching {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (m *TuiModel) detailHeight() int {
	_, h := m.size()
	if h-chromeLines < 1 {
		return 1
	}
	return h - chromeLines
}

// View implements tea.Model.
func (m *TuiModel) View() string {
	w, _ := m.size()
	var b strings.Builder
	b.WriteString(titleStyle.Render("NYC Schools"))
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(m.statusText()))
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	switch {
	case m.showDetail:
		b.WriteString(m.vp.View())
		b.WriteString("\n")
	case !m.loaded:
		b.WriteString(dimStyle.Render("loading..."))
		b.WriteString("\n")
	case m.view().SectionCount() == 0:
		b.WriteString(dimStyle.Render(m.emptyText()))
		b.WriteString("\n")
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	if m.notice != "" {
		style := errStyle
		if m.noticeOK {
			style = okStyle
		}
		b.WriteString(style.Render(sanitize.Fit(m.notice, w)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m *TuiModel) emptyText() string {
	if m.search.Value() != "" || m.filter >= 0 {
		return "no schools match"
	}
	return "no schools cached; press r to download"
}

func (m *TuiModel) helpText() string {
	switch {
	case m.showDetail:
		return helpLine(keys.Scroll, keys.Back, keys.Quit)
	case m.searching:
		return "type to search (more than 3 letters) · enter done · esc clear"
	case m.confirmFetch:
		return helpLine(keys.Confirm) + " · any other key cancels"
	}
	return helpLine(keys.Search, keys.Borough, keys.Mode, keys.Jump, keys.Open, keys.Download, keys.Dismiss, keys.Quit)
}

// formatRow renders one school in the given display mode, fitted to width.
func formatRow(s adapters.School, mode modelpkg.DisplayMode, width int) string {
	if mode == modelpkg.Compact {
		return sanitize.Fit(s.Name, width)
	}
	extra := "  " + sanitize.Line(fmt.Sprintf("%s · %s · grad %s", s.Borough, s.Neighborhood, format.Percentage(s.GraduationRate)))
	nameW := width - runewidth.StringWidth(extra)
	if nameW < 12 {
		return sanitize.Fit(s.Name+extra, width)
	}
	return sanitize.Fit(s.Name, nameW) + extra
}

// formatDetail renders every field of a school for the detail viewport.
func formatDetail(s adapters.School, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(sanitize.Fit(s.Name, width)))
	b.WriteString("\n\n")
	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", label+":")))
		b.WriteString(" ")
		b.WriteString(sanitize.Fit(value, width-14))
		b.WriteString("\n")
	}
	row("DBN", s.DBN)
	row("Borough", s.Borough)
	row("Neighborhood", s.Neighborhood)
	row("Address", s.Address)
	row("Phone", s.Phone)
	row("Email", s.Email)
	row("Website", s.Website)
	if s.TotalStudents > 0 {
		row("Students", humanize.Comma(int64(s.TotalStudents)))
	}
	row("Graduation", format.Percentage(s.GraduationRate))
	row("Attendance", format.Percentage(s.AttendanceRate))
	if s.SAT != nil {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("SAT results (%d test takers)", s.SAT.TestTakers)))
		b.WriteString("\n")
		row("Reading", fmt.Sprint(s.SAT.Reading))
		row("Math", fmt.Sprint(s.SAT.Math))
		row("Writing", fmt.Sprint(s.SAT.Writing))
	}
	if o := strings.TrimSpace(s.Overview); o != "" {
		b.WriteString("\n")
		b.WriteString(sanitize.Paragraph(o, width))
		b.WriteString("\n")
	}
	return b.String()
}
