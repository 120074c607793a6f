// Package cli implements snipctl, the operator command line of the snippet
// activity service. It talks to the database directly through the same
// services the HTTP server uses.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/snippet-activity/internal/config"
	"github.com/sakif/snippet-activity/internal/repository/sqlstore"
	"github.com/sakif/snippet-activity/internal/service"
)

// app holds what the commands share. The store is opened on first use so
// commands that do not need it (token) work without a database.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	db         *sqlstore.DB

	activities *service.ActivityService
	categories *service.CategoryService
	snips      *service.SnipService
}

// NewRootCommand builds the snipctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "snipctl",
		Short: "Operate the snippet activity service",
		Long: `snipctl manages activities, issues test tokens and inspects snips.

Examples:
  snipctl migrate
  snipctl activity create "Algorithms 101"
  snipctl token --user 7 --cap mod/snippet:view --cap mod/snippet:addsnip
  snipctl snips latest --activity 1 --user 7 --max 5
  snipctl snip show 12 --activity 1 --user 7`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config file (default ./config.yaml)")

	root.AddCommand(newMigrateCommand(a))
	root.AddCommand(newActivityCommand(a))
	root.AddCommand(newTokenCommand(a))
	root.AddCommand(newSnipsCommand(a))
	root.AddCommand(newSnipCommand(a))

	return root
}

func (a *app) loadConfig(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) open() error {
	if a.db != nil {
		return nil
	}
	db, err := sqlstore.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	a.activities = service.NewActivityService(db, a.logger)
	a.categories = service.NewCategoryService(db, db, a.logger)
	a.snips = service.NewSnipService(db, a.categories, a.cfg.Server.BaseURL, a.logger)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.db.Dialect())
			return nil
		},
	}
}
