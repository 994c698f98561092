package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
)

// todoItem adapts model.Todo to list.Item.
type todoItem struct {
	todo model.Todo
}

func (i todoItem) FilterValue() string { return i.todo.Text }

func toItems(todos []model.Todo) []list.Item {
	out := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		out = append(out, todoItem{todo: t})
	}
	return out
}

// itemDelegate renders one todo per line.
type itemDelegate struct {
	st styles
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	box := d.st.muted.Render(boxUnchecked)
	text := it.todo.Text
	if it.todo.Completed {
		box = d.st.success.Render(boxChecked)
		text = d.st.done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.st.selected.Render("> ")
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

func newList(st styles) list.Model {
	l := list.New(nil, itemDelegate{st: st}, 0, 0)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = st.title
	l.Styles.PaginationStyle = st.help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.DisableQuitKeybindings()
	return l
}

func (m *Model) restyleList() {
	m.list.SetDelegate(itemDelegate{st: m.styles})
	m.list.Styles.Title = m.styles.title
	m.list.Styles.PaginationStyle = m.styles.help
}
