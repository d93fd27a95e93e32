package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
)

const refreshedNotice = "New data has been loaded"

// TuiModel is the Bubble Tea model used by cmd/tui.
type TuiModel struct {
	uiModel Model
	fetcher Fetcher
	log     *zap.Logger

	list      list.Model
	search    textinput.Model
	searching bool
	vp        viewport.Model

	width  int
	height int

	showDetail bool
	detailDBN  string

	loaded   bool
	notice   string
	noticeOK bool

	confirmFetch bool
	fetching     bool

	boroughs []string
	// index into boroughs of the active filter, -1 for none
	filter int
}

func (m *TuiModel) view() *modelpkg.PresentationAdapter { return m.uiModel.View() }

// Update implements tea.Model.
func (m *TuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskMsg:
		msg()
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ensureViewportSize(msg.Width, m.detailHeight())
		m.resizeList()
		return m, nil
	case queryDoneMsg:
		m.applyQuery(msg)
		return m, nil
	case detailMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("could not load %s: %v", m.detailDBN, msg.err), false)
			return m, nil
		}
		m.showDetail = true
		w, _ := m.size()
		m.ensureViewportSize(w, m.detailHeight())
		m.vp.SetContent(formatDetail(msg.school, m.vp.Width))
		m.vp.GotoTop()
		return m, nil
	case boroughsMsg:
		if msg.err != nil {
			m.setNotice("could not list boroughs: "+msg.err.Error(), false)
			return m, nil
		}
		m.boroughs = msg.boroughs
		return m, m.nextFilter()
	case fetchDoneMsg:
		m.fetching = false
		if msg.err != nil {
			m.setNotice("download failed: "+msg.err.Error(), false)
			return m, nil
		}
		if msg.res.SATErr != nil {
			m.setNotice(fmt.Sprintf("downloaded %d schools; SAT results failed: %v", msg.res.Schools, msg.res.SATErr), false)
		}
		// the list itself refreshes through the update channel
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.showDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *TuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.setSearching(false)
		m.search.SetValue("")
		return m, cancelSearchCmd(m.uiModel)
	case tea.KeyEnter:
		m.setSearching(false)
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.filter = -1
		return m, tea.Batch(cmd, searchCmd(m.uiModel, v))
	}
	return m, cmd
}

func (m *TuiModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.showDetail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *TuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmFetch {
		m.confirmFetch = false
		if key.Matches(msg, keys.Confirm) {
			m.fetching = true
			m.setNotice("downloading school data...", true)
			return m, fetchCmd(m.fetcher)
		}
		m.clearNotice()
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		return m, m.setSearching(true)
	case key.Matches(msg, keys.Clear):
		if m.notice != "" {
			m.clearNotice()
			return m, nil
		}
		if m.search.Value() != "" || m.filter >= 0 {
			m.search.SetValue("")
			m.filter = -1
			return m, cancelSearchCmd(m.uiModel)
		}
		return m, nil
	case key.Matches(msg, keys.Dismiss):
		m.clearNotice()
		return m, nil
	case key.Matches(msg, keys.Mode):
		v := m.view()
		v.SetDisplayMode(v.DisplayMode().Next())
		return m, nil
	case key.Matches(msg, keys.Borough):
		if m.boroughs == nil {
			return m, boroughsCmd(m.uiModel)
		}
		return m, m.nextFilter()
	case key.Matches(msg, keys.Download):
		if m.fetcher == nil {
			m.setNotice("downloads are not available", false)
			return m, nil
		}
		if m.fetching {
			return m, nil
		}
		m.confirmFetch = true
		m.setNotice("Download the latest school data? (y/n)", true)
		return m, nil
	case key.Matches(msg, keys.Open):
		sch, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.detailDBN = sch.DBN
		return m, detailCmd(m.uiModel, sch.DBN)
	case key.Matches(msg, navigation(m.list.KeyMap)...):
		prev := m.list.Index()
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.skipHeader(prev)
		return m, cmd
	}

	if title, ok := indexKey(msg); ok {
		m.jump(title)
	}
	return m, nil
}

func (m *TuiModel) setSearching(on bool) tea.Cmd {
	m.searching = on
	m.resizeList()
	if on {
		return m.search.Focus()
	}
	m.search.Blur()
	return nil
}

// indexKey maps an upper-case letter or '#' to a section index title.
func indexKey(msg tea.KeyMsg) (string, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return "", false
	}
	r := msg.Runes[0]
	if (r >= 'A' && r <= 'Z') || string(r) == adapters.OtherSection {
		return string(r), true
	}
	return "", false
}

func (m *TuiModel) jump(title string) {
	sec := m.view().SectionForIndexTitle(title, m.currentSection())
	if sec < 0 {
		return
	}
	for i, it := range m.list.Items() {
		if h, ok := it.(headerItem); ok && h.section == sec {
			m.list.Select(i + 1)
			return
		}
	}
}

// nextFilter cycles: no filter, then each borough, then no filter again.
func (m *TuiModel) nextFilter() tea.Cmd {
	if len(m.boroughs) == 0 {
		m.setNotice("no boroughs to filter by", false)
		return nil
	}
	m.search.SetValue("")
	m.filter++
	if m.filter >= len(m.boroughs) {
		m.filter = -1
		return cancelSearchCmd(m.uiModel)
	}
	return filterCmd(m.uiModel, adapters.FilterCriteria{Boroughs: []string{m.boroughs[m.filter]}})
}

func (m *TuiModel) applyQuery(msg queryDoneMsg) {
	if superseded(msg.err) {
		return
	}
	if msg.err != nil {
		m.log.Warn("query failed", zap.String("query", msg.label), zap.Error(msg.err))
		m.setNotice(msg.label+" failed: "+msg.err.Error(), false)
		return
	}
	m.syncKeepingCursor()
	m.loaded = true
}

// DataRefreshed is the update channel's refresh handler. It runs inside
// Update, via the program dispatcher. The view syncs to the binding's current
// result, which may be newer than the one the channel evaluated, so the diff
// is taken between the snapshots actually shown.
func (m *TuiModel) DataRefreshed(_ adapters.ResultSet, err error) {
	if err != nil {
		m.setNotice("refresh failed: "+err.Error(), false)
		return
	}
	prev := m.view().Snapshot()
	m.syncKeepingCursor()
	m.loaded = true
	change := modelpkg.Diff(prev, m.view().Snapshot())
	if change.Empty() && strings.HasPrefix(m.notice, refreshedNotice) {
		// a second signal for the same write
		return
	}
	msg := refreshedNotice
	if !change.Empty() {
		msg += fmt.Sprintf(" (%d new, %d removed)", len(change.Inserted), len(change.Removed))
	}
	m.setNotice(msg, true)
}

// syncKeepingCursor takes a new snapshot and keeps the selected school
// selected when it is still present.
func (m *TuiModel) syncKeepingCursor() {
	var dbn string
	if s, ok := m.selected(); ok {
		dbn = s.DBN
	}
	v := m.view()
	v.Sync()
	m.list.SetItems(listItems(v))
	if dbn != "" {
		for i, it := range m.list.Items() {
			if s, ok := it.(schoolItem); ok && s.school.DBN == dbn {
				m.list.Select(i)
				return
			}
		}
	}
	m.list.Select(0)
	m.skipHeader(0)
}

// skipHeader moves the cursor off a section header, continuing in the
// direction it came from (prev is the index before the move).
func (m *TuiModel) skipHeader(prev int) {
	n := len(m.list.Items())
	for i := 0; i < n; i++ {
		if _, ok := m.list.SelectedItem().(headerItem); !ok {
			return
		}
		idx := m.list.Index()
		switch {
		case idx < prev && idx > 0:
			m.list.CursorUp()
		case idx+1 < n:
			m.list.CursorDown()
		default:
			return
		}
	}
}

// selected returns the school under the cursor.
func (m *TuiModel) selected() (adapters.School, bool) {
	it, ok := m.list.SelectedItem().(schoolItem)
	if !ok {
		return adapters.School{}, false
	}
	return it.school, true
}

func (m *TuiModel) currentSection() int {
	if it, ok := m.list.SelectedItem().(schoolItem); ok {
		return it.section
	}
	return 0
}

func (m *TuiModel) resizeList() {
	w, _ := m.size()
	m.list.SetSize(w, m.listHeight())
}

func (m *TuiModel) setNotice(s string, ok bool) {
	m.notice = s
	m.noticeOK = ok
}

func (m *TuiModel) clearNotice() { m.notice = "" }

func (m *TuiModel) statusText() string {
	v := m.view()
	n := v.Snapshot().Count()
	parts := []string{fmt.Sprintf("%d schools", n)}
	switch {
	case modelpkg.SearchActive(m.search.Value()):
		parts = append(parts, fmt.Sprintf("matching %q", m.search.Value()))
	case m.filter >= 0 && m.filter < len(m.boroughs):
		parts = append(parts, "in "+m.boroughs[m.filter])
	}
	parts = append(parts, v.DisplayMode().String())
	return strings.Join(parts, " · ")
}
