package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// authForm is the signed-out screen. tab switches between sign in and
// create account; the name field only shows when creating an account.
type authForm struct {
	signUp bool
	inputs []textinput.Model
	focus  int
	err    string
	busy   bool
}

func newAuthForm() authForm {
	name := textinput.New()
	name.Prompt = "Full name  "
	name.Placeholder = "Jo Lee"
	name.CharLimit = 80

	email := textinput.New()
	email.Prompt = "Email      "
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	pw := textinput.New()
	pw.Prompt = "Password   "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 128

	f := authForm{inputs: []textinput.Model{name, email, pw}}
	f.setFocus(fieldEmail)
	return f
}

func (f *authForm) fields() []int {
	if f.signUp {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (f *authForm) setFocus(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *authForm) toggle() tea.Cmd {
	f.signUp = !f.signUp
	f.err = ""
	return f.setFocus(f.fields()[0])
}

// move shifts focus by delta within the visible fields, wrapping.
func (f *authForm) move(delta int) tea.Cmd {
	fs := f.fields()
	pos := 0
	for i, id := range fs {
		if id == f.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fs)) % len(fs)
	return f.setFocus(fs[pos])
}

func (f *authForm) onLast() bool {
	fs := f.fields()
	return f.focus == fs[len(fs)-1]
}

func (f *authForm) values() (name, email, password string) {
	return f.inputs[fieldName].Value(), f.inputs[fieldEmail].Value(), f.inputs[fieldPassword].Value()
}

func (f *authForm) reset() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.err, f.busy, f.signUp = "", false, false
	return f.setFocus(fieldEmail)
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f authForm) view(st styles) string {
	var b strings.Builder
	heading, other := "Sign in", "tab: create an account"
	if f.signUp {
		heading, other = "Create account", "tab: sign in instead"
	}
	b.WriteString(st.title.Render(heading) + "\n\n")
	for _, id := range f.fields() {
		b.WriteString(f.inputs[id].View() + "\n")
	}
	b.WriteString("\n")
	switch {
	case f.busy:
		b.WriteString(st.muted.Render("working...") + "\n")
	case f.err != "":
		b.WriteString(st.errText.Render(f.err) + "\n")
	}
	b.WriteString(st.help.Render(other + " • enter: next/submit • esc: quit"))
	return b.String()
}
