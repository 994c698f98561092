package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
)

func main() {
	// Root flags (apply to every subcommand)
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flags := config.RegisterFlags(flag.CommandLine, false)
	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "tada:", err)
		os.Exit(2)
	}

	// Hand the remaining args to the CLI runner.
	args := flags.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, args, cli.Options{
		Config:      cfg,
		Logger:      logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Prefix: "tada"}),
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd()),
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
