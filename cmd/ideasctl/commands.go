package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/content-ideas-api/internal/app"
	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/database"
	"github.com/content-ideas-api/pkg/logger"
)

// cli carries the state shared by all subcommands
type cli struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "ideasctl",
		Short: "Administer per-user content ideas and historical counters",
		Long: `ideasctl administers the same data directory and counter store as the
API server. Each user's document is guarded by an advisory lock file next to
it, so commands may run while the server is up on systems with flock(2).
Elsewhere, stop the server before running migrate or recalibrate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			c.cfg = cfg
			c.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	rootCmd.AddCommand(
		c.recalibrateCmd(),
		c.migrateCmd(),
		c.countsCmd(),
		c.dbCmd(),
	)
	return rootCmd
}

// withApp opens storage for the duration of fn
func (c *cli) withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := app.New(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close counters backend")
		}
	}()
	return fn(a)
}

func (c *cli) recalibrateCmd() *cobra.Command {
	var email string
	var all bool

	cmd := &cobra.Command{
		Use:   "recalibrate",
		Short: "Reset persistent counters to the totals computed from stored ideas",
		Long: `Recalibrate overwrites a user's persistent counters with the number of
ideas and article versions currently stored. Use it after manual cleanup,
since it can lower the counters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" && !all {
				return errors.New("one of --email or --all is required")
			}

			return c.withApp(cmd.Context(), func(a *app.App) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintln(w, "USER\tIDEAS\tARTICLES\tPREVIOUS IDEAS\tPREVIOUS ARTICLES\tERROR")

				if email != "" {
					result, err := a.Services.Counters.Recalibrate(cmd.Context(), email)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t\n", result.User,
						result.Current.IdeasGenerated, result.Current.ArticlesGenerated,
						result.Previous.IdeasGenerated, result.Previous.ArticlesGenerated)
					return nil
				}

				results, err := a.Services.Counters.RecalibrateAll(cmd.Context())
				for _, r := range results {
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n", r.User,
						r.Current.IdeasGenerated, r.Current.ArticlesGenerated,
						r.Previous.IdeasGenerated, r.Previous.ArticlesGenerated, r.Error)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "recalibrate a single user")
	cmd.Flags().BoolVar(&all, "all", false, "recalibrate every user with a stored collection")
	cmd.MarkFlagsMutuallyExclusive("email", "all")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite legacy idea records into the current article layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(a *app.App) error {
				users := []string{email}
				if email == "" {
					var err error
					if users, err = a.Repos.Ideas.Users(ctx); err != nil {
						return err
					}
				}

				var errs []error
				for _, user := range users {
					// Reading a collection migrates and persists legacy records
					ideas, err := a.Services.Ideas.Load(ctx, user)
					if err != nil {
						errs = append(errs, fmt.Errorf("%s: %w", user, err))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ideas\n", user, len(ideas))
				}
				return errors.Join(errs...)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "migrate a single user (default: every user)")
	return cmd
}

func (c *cli) countsCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Print a user's reconciled historical counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				counts, err := a.Services.Counters.GetCounts(cmd.Context(), email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ideas_generados: %d\narticulos_generados: %d\n", counts.Ideas, counts.Articles)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user to inspect")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the PostgreSQL counters schema",
	}

	open := func() (*database.DB, error) {
		if c.cfg.Counters.Backend != config.CountersPostgres {
			return nil, fmt.Errorf("counters backend is %q; schema migrations apply to %q only",
				c.cfg.Counters.Backend, config.CountersPostgres)
		}
		return database.New(&c.cfg.Database, c.log)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending schema migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := open()
				if err != nil {
					return err
				}
				defer db.Close()
				return db.RunMigrations(c.cfg.Database.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "rollback",
			Short: "Roll back the last schema migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := open()
				if err != nil {
					return err
				}
				defer db.Close()
				return db.MigrateDown(c.cfg.Database.MigrationsPath)
			},
		},
	)
	return cmd
}
