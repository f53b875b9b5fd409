// Package cli is the jobportal command line: serving the API and
// maintaining its database.
//
//	jobportal serve         start the HTTP and websocket server
//	jobportal migrate       create or update the database schema
//	jobportal create-user   create an account from the terminal
//	jobportal clean-db      drop every table in the public schema
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/spf13/cobra"

	"github.com/himansu2198/Job-Listing-Portal/internal/config"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/server"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

var logger = loggo.GetLogger("jobportal.cli")

// Version is reported by --version
var Version = "dev"

type options struct {
	configFile string
}

// BuildCLI return the root command with every subcommand attached
func BuildCLI() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "jobportal",
		Short:         "Job listing portal API server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", os.Getenv("CONFIG_FILE"), "YAML config file, environment variables override it")

	rootCmd.AddCommand(
		buildServeCommand(opts),
		buildMigrateCommand(opts),
		buildCreateUserCommand(opts),
		buildCleanDBCommand(opts),
	)
	return rootCmd
}

func (o *options) load() (config.Config, error) {
	cfg, err := config.LoadFrom(o.configFile)
	if err != nil {
		return config.Config{}, errors.Annotate(err, "failed to load config")
	}
	if err := loggo.ConfigureLoggers(cfg.LogLevel); err != nil {
		return config.Config{}, errors.Annotatef(err, "invalid log level %q", cfg.LogLevel)
	}
	return cfg, nil
}

func (o *options) openDB() (*database.DBinstanceStruct, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if cfg.StoreBackend != config.StorePostgres {
		return nil, errors.NotSupportedf("store backend %q for this command", cfg.StoreBackend)
	}
	db, err := database.NewDBInstance(cfg.DB)
	if err != nil {
		return nil, errors.Annotate(err, "database failed to initialize")
	}
	return db, nil
}

func buildServeCommand(opts *options) *cobra.Command {
	var release bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if release {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := server.NewServer(ctx, cfg, server.Deps{})
			if err != nil {
				return errors.Trace(err)
			}
			defer func() {
				if err := s.Close(); err != nil {
					logger.Warningf("closing server: %v", err)
				}
			}()

			return s.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "run gin in release mode")
	return cmd
}

func buildMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// NewDBInstance migrates on open
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
			return nil
		},
	}
}

func buildCleanDBCommand(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean-db",
		Short: "Drop every table in the public schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintln(out, "WARNING: This command will DROP ALL TABLES in the 'public' schema of your database.")
				fmt.Fprint(out, "This action is irreversible. Do you want to continue? (yes/no): ")

				answer, err := newPrompter(cmd.InOrStdin()).line()
				if err != nil {
					return errors.Annotate(err, "failed to read input")
				}
				if strings.ToLower(answer) != "yes" {
					fmt.Fprintln(out, "Operation cancelled.")
					return nil
				}
			}

			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DropAllTables(cmd.Context()); err != nil {
				return errors.Annotate(err, "failed to execute drop command")
			}
			fmt.Fprintln(out, "All tables dropped successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func buildCreateUserCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create-user",
		Short: "Create a job seeker or employer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := promptUser(newPrompter(cmd.InOrStdin()), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := createUser(cmd.Context(), database.NewStore(db), &user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
}

type prompter struct {
	r *bufio.Reader
}

func newPrompter(r io.Reader) *prompter {
	return &prompter{r: bufio.NewReader(r)}
}

// line read one trimmed line. Input ending without a newline is accepted.
func (p *prompter) line() (string, error) {
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) ask(out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	return p.line()
}

func promptUser(p *prompter, out io.Writer) (model.User, error) {
	fmt.Fprintln(out, "Creating account")

	username, err := p.ask(out, "Enter username: ")
	if err != nil {
		return model.User{}, errors.Trace(err)
	}
	email, err := p.ask(out, "Enter email: ")
	if err != nil {
		return model.User{}, errors.Trace(err)
	}
	role, err := p.ask(out, "Enter role (jobseeker/employer): ")
	if err != nil {
		return model.User{}, errors.Trace(err)
	}
	password, err := p.ask(out, "Enter password: ")
	if err != nil {
		return model.User{}, errors.Trace(err)
	}
	confirm, err := p.ask(out, "Confirm password: ")
	if err != nil {
		return model.User{}, errors.Trace(err)
	}

	switch {
	case username == "" || email == "":
		return model.User{}, errors.NotValidf("empty username or email")
	case role != model.RoleJobSeeker && role != model.RoleEmployer:
		return model.User{}, errors.NotValidf("role %q", role)
	case password != confirm:
		return model.User{}, errors.New("passwords do not match")
	case len(password) < 8:
		return model.User{}, errors.NotValidf("password shorter than 8 characters")
	}

	hashed, err := utilities.HashPassword(password)
	if err != nil {
		return model.User{}, errors.Annotate(err, "hash password")
	}
	return model.User{
		Email:           strings.ToLower(email),
		Password:        hashed,
		Role:            role,
		EditableProfile: model.EditableProfile{Username: username},
	}, nil
}

type userCreator interface {
	CreateUser(ctx context.Context, user *model.User) error
}

func createUser(ctx context.Context, users userCreator, user *model.User) error {
	if err := users.CreateUser(ctx, user); err != nil {
		return errors.Annotatef(err, "creating %s", user.Email)
	}
	logger.Infof("created %s account %s", user.Role, user.ID)
	return nil
}
