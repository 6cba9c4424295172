package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/TWRT/join-board/internal/api"
	"github.com/TWRT/join-board/internal/service"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board as JSON over HTTP",
		Long:  "Load the board and serve its view-models on a local HTTP address until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if address == "" {
					address = a.cfg.HTTP.Address
				}
				return runServe(ctx, a, address)
			})
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (defaults to HTTP_ADDRESS)")
	return cmd
}

func runServe(ctx context.Context, a *app, address string) error {
	// The HTTP surface answers 401s itself instead of printing to the terminal.
	nav := api.NewNavigator(a.log)
	boardSvc := service.NewBoardService(a.board.Backend(), a.store, nav, a.log)
	edit := service.NewEditController(boardSvc, a.auth, a.log)
	mux := api.SetupRouter(a.log, boardSvc, edit, a.cfg.Board.Timeout)

	server := http.Server{
		Addr:              address,
		ReadHeaderTimeout: a.cfg.Board.Timeout,
		Handler:           mux,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("board http server", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server stopped unexpectedly", "error", err)
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return serveErr
}
