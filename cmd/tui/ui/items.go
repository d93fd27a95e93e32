package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
)

// headerItem is a section title line. The cursor never rests on one.
type headerItem struct {
	title   string
	section int
}

func (headerItem) FilterValue() string { return "" }

type schoolItem struct {
	school  adapters.School
	section int
}

func (i schoolItem) FilterValue() string { return i.school.Name }

// listItems flattens the adapter's snapshot into headers and rows.
func listItems(v *modelpkg.PresentationAdapter) []list.Item {
	var items []list.Item
	for sec := 0; sec < v.SectionCount(); sec++ {
		items = append(items, headerItem{title: v.SectionTitle(sec), section: sec})
		n, err := v.RowCount(sec)
		if err != nil {
			continue
		}
		for row := 0; row < n; row++ {
			if s, ok := v.Row(sec, row); ok {
				items = append(items, schoolItem{school: s, section: sec})
			}
		}
	}
	return items
}

// rowDelegate draws section headers and school rows in the adapter's
// current display mode.
type rowDelegate struct {
	view *modelpkg.PresentationAdapter
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case headerItem:
		fmt.Fprint(w, headerStyle.Render(it.title))
	case schoolItem:
		text := formatRow(it.school, d.view.DisplayMode(), m.Width()-2)
		if index == m.Index() {
			fmt.Fprint(w, selectedStyle.Render("> "+text))
			return
		}
		fmt.Fprint(w, "  "+text)
	}
}
