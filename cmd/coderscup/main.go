// Command coderscup is the contest platform client: it watches the contest
// countdown, browses the problem set, checks the contestant password, and
// runs the admin actions. Each invocation behaves like one browser tab:
// session state dies with the process while the shared state directory (and
// the broadcast channel over it) connects concurrent invocations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/config"
)

func main() {
	var (
		configPath string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "config file path (default "+config.DefaultPath+" if present)")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.Usage = usage
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	a, err := buildApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire application")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a, args[0], args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		a.Close()
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func run(ctx context.Context, a *app, cmd string, args []string) error {
	switch cmd {
	case "watch":
		return cmdWatch(ctx, a)
	case "problems":
		return cmdProblems(ctx, a, args)
	case "gate":
		return cmdGate(ctx, a, args)
	case "admin":
		return cmdAdmin(ctx, a, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Coders Cup contest client

Usage: coderscup [flags] <command> [args]

Commands:
  watch                                live contest countdown and transitions
  problems list                        list the problem set
  problems show <id>                   print one problem
  gate <password>                      check the contestant password
  admin [-password ...] login          verify the admin password
  admin [-password ...] problem add <file.json>
  admin [-password ...] problem update <file.json>
  admin [-password ...] problem delete <id>
  admin [-password ...] contest schedule [-countdown N] [-duration N]
  admin [-password ...] contest start [-duration N]
  admin [-password ...] contest stop|reset
  admin [-password ...] contest add-time [-minutes N]
  admin [-password ...] contest add-precountdown-time [-minutes N]
  admin [-password ...] contest visibility [-visible=BOOL]
  admin contest status                 print the contest state

Flags:
`)
	flag.PrintDefaults()
}
