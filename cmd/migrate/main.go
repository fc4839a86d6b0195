package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stemsi/gscribe-backend/internal/config"
	"github.com/stemsi/gscribe-backend/internal/logger"
)

// migrator is the subset of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(v int) error
}

func main() {
	dir := flag.String("path", "migrations", "directory holding the *.sql migrations")
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}
	if flag.NArg() == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	m, err := migrate.New("file://"+*dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dir).Msg("Failed to open migrations")
	}

	err = run(m, flag.Args(), os.Stdout)
	m.Close()
	if err != nil {
		log.Fatal().Err(err).Str("command", flag.Arg(0)).Msg("Migration failed")
	}
}

func run(m migrator, args []string, out io.Writer) error {
	switch args[0] {
	case "up":
		if err := ignoreNoChange(m.Up()); err != nil {
			return err
		}
	case "down":
		if err := ignoreNoChange(m.Down()); err != nil {
			return err
		}
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(n)); err != nil {
			return err
		}
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		if err := m.Force(v); err != nil {
			return err
		}
	case "version":
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return printVersion(m, out)
}

func printVersion(m migrator, out io.Writer) error {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "version: none")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "version: %d dirty: %t\n", v, dirty)
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", args[0], err)
	}
	return n, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: migrate [-path dir] up | down | steps N | force V | version")
}
