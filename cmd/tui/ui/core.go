package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/fetch"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
)

// Options configure the TUI model.
type Options struct {
	// Fetcher enables the r/y download flow when set.
	Fetcher Fetcher
	Mode    modelpkg.DisplayMode
	Log     *zap.Logger
}

// NewModel constructs the Bubble Tea TUI model used by cmd/tui. It accepts
// any implementation of Model (usually the framework-agnostic internal
// model) so tests can provide fakes.
func NewModel(ui Model, opts Options) *TuiModel {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search school names"
	in.CharLimit = 64

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	ui.View().SetDisplayMode(opts.Mode)

	// search and filtering stay with the query binding
	l := list.New(nil, rowDelegate{view: ui.View()}, defaultWidth, defaultHeight-chromeLines)
	l.SetFilteringEnabled(false)
	l.SetShowFilter(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.KeyMap = listKeyMap()

	return &TuiModel{
		uiModel: ui,
		fetcher: opts.Fetcher,
		log:     log,
		list:    l,
		search:  in,
		vp:      viewport.New(0, 0),
		filter:  -1,
	}
}

// NewProgram constructs the tea.Program for the TUI.
func NewProgram(m *TuiModel) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// taskMsg carries work posted from other goroutines onto the Update loop.
type taskMsg func()

// programDispatcher posts tasks to a running tea.Program.
type programDispatcher struct {
	p    *tea.Program
	done <-chan struct{}
}

// Dispatch implements model.Dispatcher.
func (d programDispatcher) Dispatch(task func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	d.p.Send(taskMsg(task))
	return true
}

// Dispatcher returns a model.Dispatcher that runs tasks inside p's Update
// loop. It reports false once done is closed, which the caller does when
// p.Run returns.
func Dispatcher(p *tea.Program, done <-chan struct{}) modelpkg.Dispatcher {
	return programDispatcher{p: p, done: done}
}

// Messages
type queryDoneMsg struct {
	rs  adapters.ResultSet
	err error
	// label describes the query in notices
	label string
}

type detailMsg struct {
	school adapters.School
	err    error
}

type boroughsMsg struct {
	boroughs []string
	err      error
}

type fetchDoneMsg struct {
	res fetch.Result
	err error
}

// Init loads the first result set.
func (m *TuiModel) Init() tea.Cmd {
	ui := m.uiModel
	return func() tea.Msg {
		rs, err := ui.Refresh(context.Background())
		return queryDoneMsg{rs: rs, err: err, label: "load"}
	}
}

func searchCmd(ui Model, text string) tea.Cmd {
	return func() tea.Msg {
		rs, err := ui.Search(context.Background(), text)
		return queryDoneMsg{rs: rs, err: err, label: "search"}
	}
}

func cancelSearchCmd(ui Model) tea.Cmd {
	return func() tea.Msg {
		rs, err := ui.CancelSearch(context.Background())
		return queryDoneMsg{rs: rs, err: err, label: "all schools"}
	}
}

func filterCmd(ui Model, c adapters.FilterCriteria) tea.Cmd {
	return func() tea.Msg {
		rs, err := ui.ApplyFilter(context.Background(), c)
		return queryDoneMsg{rs: rs, err: err, label: "filter " + c.String()}
	}
}

func detailCmd(ui Model, dbn string) tea.Cmd {
	return func() tea.Msg {
		s, err := ui.Detail(context.Background(), dbn)
		return detailMsg{school: s, err: err}
	}
}

func boroughsCmd(ui Model) tea.Cmd {
	return func() tea.Msg {
		b, err := ui.Boroughs(context.Background())
		return boroughsMsg{boroughs: b, err: err}
	}
}

func fetchCmd(f Fetcher) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Fetch(context.Background())
		return fetchDoneMsg{res: res, err: err}
	}
}

// superseded reports results that a newer query already replaced.
func superseded(err error) bool { return errors.Is(err, modelpkg.ErrSuperseded) }

// SetFetcher enables downloads after construction. The fetcher usually
// notifies the update channel, which is built from the program.
func (m *TuiModel) SetFetcher(f Fetcher) { m.fetcher = f }
