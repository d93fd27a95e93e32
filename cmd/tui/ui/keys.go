package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

// keyMap holds the TUI's command keys. Section jumps (A-Z, #) are matched by
// indexKey since they are not fixed bindings.
type keyMap struct {
	Quit     key.Binding
	Search   key.Binding
	Clear    key.Binding
	Dismiss  key.Binding
	Mode     key.Binding
	Borough  key.Binding
	Download key.Binding
	Open     key.Binding
	Jump     key.Binding
	Confirm  key.Binding
	Back     key.Binding
	Scroll   key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
	Mode:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
	Borough:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "borough")),
	Download: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "download")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Jump:     key.NewBinding(key.WithHelp("A-Z", "jump")),
	Confirm:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "download")),
	Back:     key.NewBinding(key.WithKeys("esc", "b", "backspace"), key.WithHelp("esc", "back")),
	Scroll:   key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "scroll")),
}

// listKeyMap keeps the list's navigation keys off the letters used for
// commands and section jumps.
func listKeyMap() list.KeyMap {
	km := list.DefaultKeyMap()
	km.PrevPage = key.NewBinding(key.WithKeys("pgup", "left"), key.WithHelp("pgup", "prev page"))
	km.NextPage = key.NewBinding(key.WithKeys("pgdown", "right"), key.WithHelp("pgdown", "next page"))
	km.GoToStart = key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "go to start"))
	km.GoToEnd = key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "go to end"))
	return km
}

// navigation reports the list bindings handed to list.Model.Update.
func navigation(km list.KeyMap) []key.Binding {
	return []key.Binding{km.CursorUp, km.CursorDown, km.PrevPage, km.NextPage, km.GoToStart, km.GoToEnd}
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
