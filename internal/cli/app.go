package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/config"
	"github.com/TWRT/join-board/internal/repository"
	"github.com/TWRT/join-board/internal/service"
)

// navigator tells the terminal user to log in again.
type navigator struct {
	w io.Writer
}

func (n navigator) RedirectToLogin() {
	fmt.Fprintln(n.w, "Session expired. Run `board login` to continue.")
}

func (n navigator) PromptLogin() {
	fmt.Fprintln(n.w, "The board rejected the request. Please log in again.")
}

// app is the wired client: config, session storage, backend and services.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	db       *sql.DB
	out      *OutputFormatter
	sessions *repository.SessionRepository
	store    *cache.Store
	auth     *service.AuthService
	board    *service.BoardService
	edit     *service.EditController
}

func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	log := config.NewLogger(cfg.LogLevel, opts.Verbose)

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open session storage", err)
	}

	sessions := repository.NewSessionRepository(db)
	remote := board.NewBoardClient(cfg.Board.BaseURL, cfg.Board.GuestsPath, cfg.Board.Timeout, sessions)
	store := cache.NewStore()
	auth := service.NewAuthService(remote, sessions, store, log)
	boardSvc := service.NewBoardService(remote, store, navigator{w: cmd.ErrOrStderr()}, log)

	log.Debug("client configured", "base_url", cfg.Board.BaseURL, "db", cfg.DBPath)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		sessions: sessions,
		store:    store,
		auth:     auth,
		board:    boardSvc,
		edit:     service.NewEditController(boardSvc, auth, log),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// load requires a session and fills the Local Cache.
func (a *app) load(ctx context.Context) error {
	if !a.auth.HasSession(ctx) {
		return NewExitError(ExitLoginRequired, "not logged in: run `board login`")
	}
	if err := a.board.Reload(ctx); err != nil {
		return err
	}
	a.out.VerboseLog("loaded %d tasks, %d subtasks", len(a.store.Tasks()), len(a.store.Subtasks()))
	return nil
}

// withApp opens the app for one command run and closes it afterwards.
func withApp(opts *RootOptions, cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(cmd.Context(), a)
}

// withBoard is withApp plus a loaded board.
func withBoard(opts *RootOptions, cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	return withApp(opts, cmd, func(ctx context.Context, a *app) error {
		if err := a.load(ctx); err != nil {
			return err
		}
		return run(ctx, a)
	})
}
