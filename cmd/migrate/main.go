// Command migrate manages the Postgres schema outside the server process.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/logger"
	"github.com/wimotos/backend/internal/infrastructure/migration"
	"github.com/wimotos/backend/migrations"
)

const usage = `Wi Motos schema migrations

  migrate [-path dir] [-log-level level] <command> [args]

  up                    apply pending migrations
  down                  roll every migration back
  step <n>              move n migrations, negative goes down
  version               print the applied version
  force <version>       mark version clean after a manual fix
  create <name> [desc]  write the next numbered up/down pair
  list                  list known migrations

The database comes from DATABASE_URL, WIMOTOS_DATABASE_* or config.toml.
Without -path the migrations embedded in the binary are used.`

var errUsage = errors.New("usage")

// dbCommands need a live migrator; the rest only touch files
var dbCommands = map[string]func(m *migration.Migrator, log *zap.Logger, args []string) error{
	"up":   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() },
	"step": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(n)
	},
	"version": func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		v, dirty, err := m.Version()
		if err == nil {
			log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		}
		return err
	},
}

func main() {
	dir := flag.String("path", "", "migrations directory (default: embedded)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	err = run(log, *dir, flag.Args())
	_ = log.Sync()
	switch {
	case errors.Is(err, errUsage):
		flag.Usage()
		os.Exit(2)
	case err != nil:
		log.Error("Migrate failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "create":
		return create(log, dir, args)
	case "list":
		return list(dir)
	}
	cmd, ok := dbCommands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("driver %q has no SQL migrations, the server creates sqlite schemas itself", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(m, log, args)
}

func create(log *zap.Logger, dir string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: create needs a name", errUsage)
	}
	if dir == "" {
		dir = "migrations"
	}
	desc := ""
	if len(args) > 2 {
		desc = args[2]
	}
	mf, err := migration.CreateMigration(dir, args[1], desc)
	if err != nil {
		return err
	}
	log.Info("Migration created", zap.String("version", mf.Version), zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
	return nil
}

func list(dir string) error {
	var src fs.FS = migrations.FS
	if dir != "" {
		src = os.DirFS(dir)
	}
	names, err := migration.ListMigrations(src)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%w: %s needs a number", errUsage, args[0])
	}
	return strconv.Atoi(args[1])
}
