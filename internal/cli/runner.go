package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/ui"
)

const (
	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

// Options carry the loaded configuration and the process streams.
type Options struct {
	Config *config.Config
	// Logger is used by plain subcommands. The TUI logs to a file instead.
	Logger *log.Logger
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	// Interactive lets `ls` start the TUI; otherwise it prints the plain panel.
	Interactive bool
}

func (o *Options) defaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = log.New(o.Err)
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()
	p := ui.New(opt.Out, opt.Err, opt.Config.Theme)
	if len(args) == 0 {
		PrintHelp(opt.Out)
		return exitUsage
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return exitOK
	case "ls":
		return runList(ctx, a, opt, p)
	case "add", "done", "edit", "rm":
		app, err := newApp(opt, opt.Logger, p)
		if err != nil {
			p.Fail(err.Error())
			return exitErr
		}
		switch cmd {
		case "add":
			return app.add(ctx, a)
		case "done":
			return app.toggle(ctx, a)
		case "edit":
			return app.edit(ctx, a)
		default:
			return app.remove(ctx, a)
		}
	case "auth":
		if len(a) == 0 {
			p.Fail("usage: tada auth <signup|login|logout|status|whoami>")
			return exitUsage
		}
		app, err := newApp(opt, opt.Logger, p)
		if err != nil {
			p.Fail(err.Error())
			return exitErr
		}
		switch a[0] {
		case "signup":
			return app.authSignUp(ctx, a[1:])
		case "login":
			return app.authLogin(ctx, a[1:])
		case "logout":
			return app.authLogout(ctx)
		case "status":
			return app.authStatus(ctx)
		case "whoami":
			return app.authWhoAmI(ctx)
		default:
			p.Fail("usage: tada auth <signup|login|logout|status|whoami>")
			return exitUsage
		}
	}

	p.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return exitUsage
}

// PrintHelp writes the usage text.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tada - todos synced to your account

Usage:
  tada [flags] <subcommand> [args]

Subcommands:
  ls [--plain] [--group]      List todos (interactive TUI on a terminal)
  add <text...>               Add a todo (text can be multiple words)
  done <index>                Toggle done for the todo at 1-based index
  edit <index> [text...]      Replace the text; prompts when text is omitted
  rm <index>                  Remove the todo at 1-based index
  auth signup [--email E] [--name N]
  auth login [--email E] [--token]
  auth logout | status | whoami

Flags:
  --backend remote|file|mem   Where todos live (default remote)
  --server URL                tada-server base URL
  --theme classic|neon|mono   Plain output theme

Examples:
  tada auth signup --email jo@example.com --name "Jo Lee"
  tada add "Buy milk"
  tada ls --plain
  tada done 2
  tada edit 2 "Buy oat milk"
  tada rm 3
`)
}
