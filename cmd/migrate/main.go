// Command migrate manages the PostgreSQL schema.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/infrastructure/logger"
	"github.com/shopcart/backend/internal/infrastructure/migration"
	"github.com/shopcart/backend/migrations"
)

var (
	migrationsDir string
	logLevel      string
)

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Shopcart database migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "dir", "",
		"read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		schemaCommand("up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) (migration.Status, error) { return m.Up() }),
		schemaCommand("down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) (migration.Status, error) { return m.Down() }),
		schemaCommand("step <n>", "Apply n migrations, negative n rolls back", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) (migration.Status, error) {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return migration.Status{}, fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		schemaCommand("goto <version>", "Migrate to a specific version", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) (migration.Status, error) {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return migration.Status{}, fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(version))
			}),
		schemaCommand("version", "Show the current schema version", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) (migration.Status, error) { return m.Status() }),
		schemaCommand("force <version>", "Mark a version as applied without running it", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) (migration.Status, error) {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return migration.Status{}, fmt.Errorf("invalid version %q", args[0])
				}
				if err := m.Force(version); err != nil {
					return migration.Status{}, err
				}
				return m.Status()
			}),
		dropCommand(),
		createCommand(),
		listCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := logger.DefaultConfig()
	cfg.Level = logLevel
	cfg.Service = "migrate"
	return logger.New(cfg)
}

func openMigrator(log *zap.Logger) (*migration.Migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}
	if migrationsDir != "" {
		return migration.NewFromDir(migrationsDir, cfg.Database.DSN(), log)
	}
	return migration.NewFromFS(migrations.FS, cfg.Database.DSN(), log)
}

func schemaCommand(
	use, short string,
	args cobra.PositionalArgs,
	run func(m *migration.Migrator, args []string) (migration.Status, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			m, err := openMigrator(log)
			if err != nil {
				return err
			}
			defer func() {
				if err := m.Close(); err != nil {
					log.Warn("Failed to close migrator", zap.Error(err))
				}
			}()

			status, err := run(m, argv)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", status.Version, status.Dirty)
			return nil
		},
	}
}

func dropCommand() *cobra.Command {
	var confirm bool
	cmd := schemaCommand("drop", "Drop every table of the database", cobra.NoArgs,
		func(m *migration.Migrator, _ []string) (migration.Status, error) {
			if !confirm {
				return migration.Status{}, fmt.Errorf("refusing to drop without --confirm")
			}
			return migration.Status{}, m.Drop()
		})
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm dropping all data")
	return cmd
}

func createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create a new migration pair in --dir (default ./migrations)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrationsDir
			if dir == "" {
				dir = "migrations"
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			m, err := migration.NewCreator(dir).Create(args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.UpPath)
			fmt.Fprintln(cmd.OutOrStdout(), m.DownPath)
			return nil
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the migrations in --dir (default ./migrations)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := migrationsDir
			if dir == "" {
				dir = "migrations"
			}
			list, err := migration.List(dir)
			if err != nil {
				return err
			}
			for _, m := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%0*d  %s\n", migration.VersionWidth, m.Version, m.Name)
			}
			return nil
		},
	}
}
