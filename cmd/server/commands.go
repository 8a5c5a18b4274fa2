package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vincentyap91/todolist/internal/config"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/platform/migrate"
	"github.com/vincentyap91/todolist/internal/service/auth"
	"github.com/vincentyap91/todolist/internal/store"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "todo-server",
		Short: "Ordered todo list API server",
		Long: `Serves the multi-tenant ordered todo list API and provides the
operator commands that go with it.

Configuration comes from ./config.yaml (or --config) and TODO_* environment
variables, e.g. TODO_DATABASE_URL and TODO_AUTH_JWT_SECRET.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newRebalanceCommand(opts))
	cmd.AddCommand(newUserCommand(opts))
	cmd.AddCommand(newHashPasswordCommand())

	return cmd
}

// runtime is what every database-backed command needs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
}

// openRuntime loads configuration, sets up logging and opens the database.
// Logs go to w, or to stdout when w is nil.
func openRuntime(ctx context.Context, opts *rootOptions, w io.Writer) (*runtime, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromFile(opts.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var log *slog.Logger
	if w == nil {
		log, err = logger.Setup(cfg.Server)
	} else {
		log, err = logger.SetupWithWriter(cfg.Server, w)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, logger: log, db: db}, nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := openRuntime(ctx, opts, nil)
			if err != nil {
				return err
			}

			rt.logger.Info("Server configuration loaded",
				slog.Int("port", rt.cfg.Server.Port),
				slog.String("log_level", rt.cfg.Server.LogLevel),
				slog.String("database_driver", rt.cfg.Database.Driver))

			if runMigrations {
				if err := migrate.Up(ctx, rt.db, rt.cfg.Database.Driver, rt.logger); err != nil {
					_ = rt.db.Close()
					return err
				}
			}

			app, err := newApplication(ctx, rt.cfg, rt.logger, rt.db)
			if err != nil {
				_ = rt.db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			return app.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <up|down|reset|status|version>",
		Short: "Manage the database schema",
		Long: `Runs goose migrations for the configured driver.

  up       apply all pending migrations
  down     roll back the most recent migration
  reset    roll back all migrations
  status   list applied and pending migrations
  version  print the current schema version`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{
			migrate.CommandUp,
			migrate.CommandDown,
			migrate.CommandReset,
			migrate.CommandStatus,
			migrate.CommandVersion,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.db.Close()

			return migrate.Run(cmd.Context(), rt.db, rt.cfg.Database.Driver, args[0], rt.logger)
		},
	}
}

func newRebalanceCommand(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "rebalance --owner <username|user-id>",
		Short: "Respace one owner's todo positions without changing their order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := openRuntime(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			app, err := newApplication(ctx, rt.cfg, rt.logger, rt.db)
			if err != nil {
				_ = rt.db.Close()
				return err
			}
			defer app.cleanup()

			user, err := app.lookupUser(ctx, owner)
			if err != nil {
				return err
			}

			todos, err := app.todoService.Rebalance(ctx, user.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rebalanced %d todos for %s\n", len(todos), user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "username or user ID whose list to rebalance (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// lookupUser accepts a user ID or a username.
func (app *application) lookupUser(ctx context.Context, ref string) (*domain.User, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return app.userService.GetUser(ctx, id)
	}
	user, err := app.userStore.GetByUsername(ctx, ref)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("no user %q: %w", ref, err)
	}
	return user, err
}

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCommand(opts))
	cmd.AddCommand(newUserApproveCommand(opts))
	return cmd
}

func newUserCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		username string
		email    string
		password string
		admin    bool
		active   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account (pending unless --active or --admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if password == "" {
				var err error
				if password, err = readSecret(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			rt, err := openRuntime(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			app, err := newApplication(ctx, rt.cfg, rt.logger, rt.db)
			if err != nil {
				_ = rt.db.Close()
				return err
			}
			defer app.cleanup()

			role := domain.RoleUser
			if admin {
				role = domain.RoleAdmin
			}
			user, err := app.userService.CreateUser(ctx, username, email, password, role)
			if err != nil {
				return err
			}
			if active {
				if user, err = app.userService.Approve(ctx, user.Username); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s, %s)\n", user.Username, user.ID, user.Role, user.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&email, "email", "", "contact address")
	cmd.Flags().StringVar(&password, "password", "", "password; read from stdin when omitted")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	cmd.Flags().BoolVar(&active, "active", false, "approve the account immediately")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserApproveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <username>",
		Short: "Mark a pending account active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := openRuntime(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			app, err := newApplication(ctx, rt.cfg, rt.logger, rt.db)
			if err != nil {
				_ = rt.db.Close()
				return err
			}
			defer app.cleanup()

			user, err := app.userService.Approve(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "approved %s\n", user.Username)
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for seeding accounts by hand",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				var err error
				if password, err = readSecret(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			hash, err := auth.NewBcryptVerifier(cost).Hash(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt cost")
	return cmd
}

// readSecret reads a single line from r.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("password is required")
	}
	return secret, nil
}
