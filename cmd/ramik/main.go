// Command ramik is the admin CLI and local dashboard server for the Ramik
// storefront backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/dashboard"
	"github.com/muhammadarsalan100/ramik/internal/config"
	"github.com/muhammadarsalan100/ramik/internal/logger"
	"github.com/muhammadarsalan100/ramik/query"
)

// app is everything a command needs.
type app struct {
	cfg    *config.Config
	client *ramik.Client
	dash   *dashboard.Dashboard
	log    *slog.Logger
	out    io.Writer
}

func main() {
	configPath := flag.String("config", "", "path to ramik.yaml (default: ./ramik.yaml, then the user config dir)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath, flag.Args(), os.Stdout)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	case errors.Is(err, ramik.ErrSessionEnded):
		fmt.Fprintln(os.Stderr, "ramik:", err)
		fmt.Fprintln(os.Stderr, "run `ramik login` to sign in again")
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "ramik:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, args []string, out io.Writer) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, see ramik -h", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(log)

	st, err := cfg.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	client, err := ramik.New(cfg.Client(st, log))
	if err != nil {
		st.Close()
		return err
	}
	defer client.Close()

	cache := query.NewCache(query.Options{MaxAge: cfg.Cache.MaxAge, Logger: log})
	a := &app{
		cfg:    cfg,
		client: client,
		dash:   dashboard.New(client, cache, log),
		log:    log,
		out:    out,
	}
	return cmd.run(ctx, a, args[1:])
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "usage: ramik [-config file] <command> [args]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].usage)
	}
	fmt.Fprintf(w, "\nflags:\n")
	flag.PrintDefaults()
}
