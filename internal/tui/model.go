// Package tui is the interactive terminal client: sign-in form, todo list
// and edit dialog over a Session and a Syncer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/identity"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/todosync"
)

const welcomeFor = 3 * time.Second

type mode int

const (
	modeAuth mode = iota
	modeList
	modeAdd
	modeEdit
)

// SessionMsg carries a sign-in or sign-out transition into the program.
type SessionMsg struct{ User *model.User }

type loadedMsg struct{ err error }

type authDoneMsg struct{ err error }

type welcomeDoneMsg struct{ seq int }

type opDoneMsg struct {
	op  string
	err error
}

// Deps is what the TUI runs against.
type Deps struct {
	Session identity.Provider
	Sync    *todosync.Syncer
	Logger  *log.Logger
	// Theme "light" starts in the light palette; anything else is dark.
	Theme string
}

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	prov   identity.Provider
	sync   *todosync.Syncer
	logger *log.Logger

	keys   keyMap
	help   help.Model
	list   list.Model
	spin   spinner.Model
	input  textinput.Model
	form   authForm
	styles styles
	dark   bool

	mode       mode
	user       *model.User
	loading    bool
	editID     string
	inputErr   string
	welcome    string
	welcomeSeq int
	frame      int
	width      int
	height     int
}

// New builds the model. A session restored before the program starts shows
// the list straight away.
func New(ctx context.Context, d Deps) Model {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	dark := !strings.EqualFold(d.Theme, "light")
	st := newStyles(dark)

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 200

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = st.accent

	m := Model{
		ctx:    ctx,
		prov:   d.Session,
		sync:   d.Sync,
		logger: logger.WithPrefix("tui"),
		keys:   defaultKeys(),
		help:   help.New(),
		list:   newList(st),
		spin:   sp,
		input:  in,
		form:   newAuthForm(),
		styles: st,
		dark:   dark,
		width:  80,
		height: 24,
	}
	if u := d.Session.CurrentUser(); u != nil {
		m.signedIn(u)
	}
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameTick(), textinput.Blink}
	if m.user != nil {
		cmds = append(cmds, m.load(m.user.UID), m.spin.Tick, welcomeAfter(m.welcomeSeq))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case frameMsg:
		m.frame++
		return m, frameTick()
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case SessionMsg:
		return m.onSession(msg.User)
	case authDoneMsg:
		m.form.busy = false
		m.form.err = identity.Message(msg.err)
		return m, nil
	case loadedMsg:
		m.loading = false
		m.refresh()
		return m, nil
	case opDoneMsg:
		m.refresh()
		return m, nil
	case welcomeDoneMsg:
		if msg.seq == m.welcomeSeq {
			m.welcome = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAuth:
			return m.updateAuth(msg)
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeAuth:
		cmd = m.form.update(msg)
	case modeAdd, modeEdit:
		m.input, cmd = m.input.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) signedIn(u *model.User) {
	m.user = u
	m.mode = modeList
	m.loading = true
	m.welcomeSeq++
	name := strings.TrimSpace(u.DisplayName)
	if name == "" {
		name = "User"
	}
	m.welcome = "Welcome, " + name
}

func (m Model) onSession(u *model.User) (tea.Model, tea.Cmd) {
	if u == nil {
		m.user = nil
		m.mode = modeAuth
		m.loading = false
		m.welcome = ""
		m.sync.Reset()
		m.refresh()
		cmd := m.form.reset()
		return m, cmd
	}
	m.signedIn(u)
	m.form.busy = false
	m.layout()
	return m, tea.Batch(m.load(u.UID), m.spin.Tick, welcomeAfter(m.welcomeSeq))
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		cmd := m.form.toggle()
		return m, cmd
	case "up", "shift+tab":
		cmd := m.form.move(-1)
		return m, cmd
	case "down":
		cmd := m.form.move(1)
		return m, cmd
	case "enter":
		if m.form.busy {
			return m, nil
		}
		if !m.form.onLast() {
			cmd := m.form.move(1)
			return m, cmd
		}
		m.form.busy = true
		m.form.err = ""
		return m, m.submitAuth()
	}
	cmd := m.form.update(msg)
	return m, cmd
}

func (m Model) submitAuth() tea.Cmd {
	name, email, password := m.form.values()
	signUp := m.form.signUp
	ctx, prov := m.ctx, m.prov
	return func() tea.Msg {
		if signUp {
			return authDoneMsg{err: prov.SignUp(ctx, email, password, name)}
		}
		return authDoneMsg{err: prov.SignIn(ctx, email, password)}
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	uid := m.uid()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.inputErr = ""
		m.input.SetValue("")
		m.input.Placeholder = "New todo..."
		m.layout()
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.op("toggle", func(ctx context.Context) error {
			return m.sync.Toggle(ctx, uid, it.ID, it.Completed)
		})
	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = it.ID
		m.inputErr = ""
		m.input.SetValue(it.Text)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit todo..."
		m.layout()
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.op("delete", func(ctx context.Context) error {
			return m.sync.Delete(ctx, uid, it.ID)
		})
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, tea.Batch(m.load(uid), m.spin.Tick)
	case key.Matches(msg, m.keys.SignOut):
		return m, m.signOut()
	case key.Matches(msg, m.keys.Theme):
		m.dark = !m.dark
		m.styles = newStyles(m.dark)
		m.spin.Style = m.styles.accent
		m.restyleList()
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		uid := m.uid()
		text := m.input.Value()
		if m.mode == modeAdd {
			if text == "" {
				m.inputErr = "Text cannot be empty"
				return m, nil
			}
			m.closeInput()
			return m, m.op("add", func(ctx context.Context) error {
				_, err := m.sync.Add(ctx, uid, text)
				return err
			})
		}
		id := m.editID
		m.closeInput()
		return m, m.op("edit", func(ctx context.Context) error {
			return m.sync.Edit(ctx, uid, id, text)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeList
	m.editID = ""
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.layout()
}

func (m Model) uid() string {
	if m.user == nil {
		return ""
	}
	return m.user.UID
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	return it.todo, ok
}

func (m Model) load(uid string) tea.Cmd {
	ctx, s := m.ctx, m.sync
	return func() tea.Msg { return loadedMsg{err: s.Load(ctx, uid)} }
}

// op runs a mutation off the update loop. Errors are already logged by the
// syncer and are not shown.
func (m Model) op(name string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return opDoneMsg{op: name, err: fn(ctx)} }
}

func (m Model) signOut() tea.Cmd {
	ctx, prov, logger := m.ctx, m.prov, m.logger
	return func() tea.Msg {
		if err := prov.SignOut(ctx); err != nil {
			logger.Warn("sign out", "err", err)
		}
		return nil
	}
}

func welcomeAfter(seq int) tea.Cmd {
	return tea.Tick(welcomeFor, func(time.Time) tea.Msg { return welcomeDoneMsg{seq: seq} })
}

func (m *Model) refresh() {
	m.list.SetItems(toItems(m.sync.Todos()))
	done, pending := m.sync.Stats()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		"Todos",
		m.styles.success.Render("✔"), done,
		m.styles.pending.Render("•"), pending,
		m.styles.accent.Render("Total"), done+pending,
	)
}

// layout sizes the list to whatever the header, dialog and help leave free.
func (m *Model) layout() {
	h := m.height - 9
	if m.mode == modeAdd || m.mode == modeEdit {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(max(m.width-4, 20), h)
	m.help.Width = m.width - 4
}

func (m Model) badge() string {
	initials := ""
	if m.user != nil {
		initials = identity.Initials(m.user.DisplayName)
	}
	if initials == "" {
		initials = "U"
	}
	return m.styles.badge.Render(initials)
}

func (m Model) View() string {
	inner := m.width - 4
	var b strings.Builder
	b.WriteString(m.styles.stars.Render(starfield(inner, m.frame)) + "\n")

	if m.mode == modeAuth {
		b.WriteString(m.styles.accent.Render("tada") + "\n\n")
		b.WriteString(m.form.view(m.styles))
		return m.styles.panel.Render(b.String())
	}

	who := ""
	if m.user != nil {
		who = m.user.Email
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.accent.Render("tada"), "  ", m.badge(), " ", m.styles.muted.Render(who)) + "\n")
	if m.welcome != "" {
		b.WriteString(m.styles.success.Render(m.welcome) + "\n")
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spin.View() + " Loading todos...\n")
	} else {
		b.WriteString(m.list.View() + "\n")
	}

	if m.mode == modeAdd || m.mode == modeEdit {
		title := "Add todo"
		if m.mode == modeEdit {
			title = "Edit todo"
		}
		if m.inputErr != "" {
			title += "  " + m.styles.errText.Render(m.inputErr)
		}
		b.WriteString(m.styles.dialog.Render(title+"\n"+m.input.View()) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return m.styles.panel.Render(b.String())
}
