package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/todosync"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

func runList(ctx context.Context, args []string, opt Options, p *ui.Printer) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	plain := fs.Bool("plain", false, "print a panel instead of starting the TUI")
	group := fs.Bool("group", false, "group output by pending/done")
	if err := fs.Parse(args); err != nil {
		p.Fail("usage: tada ls [--plain] [--group]")
		return exitUsage
	}

	if *plain || *group || !opt.Interactive {
		app, err := newApp(opt, opt.Logger, p)
		if err != nil {
			p.Fail(err.Error())
			return exitErr
		}
		return app.list(ctx, *group)
	}

	logger, closer, err := logging.OpenFile(opt.Config.LogPath(), logging.Options{
		Level:  opt.Config.LogLevel,
		Prefix: "tada",
	})
	if err != nil {
		p.Fail(err.Error())
		return exitErr
	}
	defer closer.Close()

	app, err := newApp(opt, logger, p)
	if err != nil {
		p.Fail(err.Error())
		return exitErr
	}
	app.restore(ctx)
	if err := tui.Run(ctx, tui.Deps{
		Session: app.sess,
		Sync:    app.sync,
		Logger:  logger,
		Theme:   opt.Config.Theme,
	}); err != nil {
		p.Fail("tui: " + err.Error())
		return exitErr
	}
	return exitOK
}

// list prints the plain panel. A failed load still prints the (empty) panel.
func (a *app) list(ctx context.Context, group bool) int {
	uid, code := a.requireUser(ctx)
	if code != exitOK {
		return code
	}
	loadErr := a.sync.Load(ctx, uid)
	todos := a.sync.Todos()
	d, pnd := a.sync.Stats()
	t := a.p.Theme()

	lines := []string{
		a.p.Header(d, pnd),
		a.p.C(t.Muted, ui.ProgressBar(d, d+pnd, 28)),
		"",
	}
	if group {
		lines = append(lines, a.groupLines(todos)...)
	} else {
		lines = append(lines, a.p.TodoLines(todos)...)
	}
	lines = append(lines, "", a.p.C(t.Muted, "Tip: add with `tada add \"Buy milk\"`"))
	a.p.Panel(lines)
	if loadErr != nil {
		return exitErr
	}
	return exitOK
}

func (a *app) groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Completed {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	t := a.p.Theme()
	section := func(title string, items []model.Todo) []string {
		out := []string{a.p.C(t.Accent, title)}
		if len(items) == 0 {
			return append(out, a.p.C(t.Muted, "(none)"))
		}
		return append(out, a.p.TodoLines(items)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func (a *app) add(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.p.Fail("usage: tada add <text...>")
		return exitUsage
	}
	uid, code := a.requireUser(ctx)
	if code != exitOK {
		return code
	}
	text := strings.Join(args, " ")
	if _, err := a.sync.Add(ctx, uid, text); err != nil {
		if errors.Is(err, todosync.ErrEmptyText) {
			a.p.Fail("add: empty text")
			return exitUsage
		}
		a.p.Fail("add: " + err.Error())
		return exitErr
	}
	a.p.OK("added")
	return exitOK
}

// pick resolves a 1-based index argument against a fresh load.
func (a *app) pick(ctx context.Context, verb, arg string) (string, model.Todo, int) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		a.p.Fail(verb + ": not a number: " + arg)
		return "", model.Todo{}, exitUsage
	}
	uid, code := a.requireUser(ctx)
	if code != exitOK {
		return "", model.Todo{}, code
	}
	if err := a.sync.Load(ctx, uid); err != nil {
		a.p.Fail("load: " + err.Error())
		return "", model.Todo{}, exitErr
	}
	todos := a.sync.Todos()
	if n < 1 || n > len(todos) {
		a.p.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(todos), n))
		a.p.Hint("Hint: run `tada ls` to see valid indexes")
		return "", model.Todo{}, exitUsage
	}
	return uid, todos[n-1], exitOK
}

func (a *app) toggle(ctx context.Context, args []string) int {
	if len(args) != 1 {
		a.p.Fail("usage: tada done <index>")
		return exitUsage
	}
	uid, td, code := a.pick(ctx, "done", args[0])
	if code != exitOK {
		return code
	}
	if err := a.sync.Toggle(ctx, uid, td.ID, td.Completed); err != nil {
		a.p.Fail("toggle: " + err.Error())
		return exitErr
	}
	a.p.OK("toggled")
	return exitOK
}

func (a *app) edit(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.p.Fail("usage: tada edit <index> [text...]")
		return exitUsage
	}
	uid, td, code := a.pick(ctx, "edit", args[0])
	if code != exitOK {
		return code
	}
	var err error
	if len(args) > 1 {
		err = a.sync.Edit(ctx, uid, td.ID, strings.Join(args[1:], " "))
	} else {
		err = a.sync.EditWithPrompt(ctx, uid, td.ID, todosync.PrompterFunc(
			func(_ context.Context, current string) (string, bool, error) {
				return a.prompt(fmt.Sprintf("Edit todo [%s]: ", current))
			}))
	}
	if err != nil {
		a.p.Fail("edit: " + err.Error())
		return exitErr
	}
	if now, ok := a.find(td.ID); ok && now.Text != td.Text {
		a.p.OK("edited")
	} else {
		a.p.Println(a.p.C(a.p.Theme().Muted, "unchanged"))
	}
	return exitOK
}

func (a *app) remove(ctx context.Context, args []string) int {
	if len(args) != 1 {
		a.p.Fail("usage: tada rm <index>")
		return exitUsage
	}
	uid, td, code := a.pick(ctx, "rm", args[0])
	if code != exitOK {
		return code
	}
	if err := a.sync.Delete(ctx, uid, td.ID); err != nil {
		a.p.Fail("remove: " + err.Error())
		return exitErr
	}
	a.p.OK("removed")
	return exitOK
}

func (a *app) find(id string) (model.Todo, bool) {
	for _, td := range a.sync.Todos() {
		if td.ID == id {
			return td, true
		}
	}
	return model.Todo{}, false
}
