package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/TWRT/join-board/internal/api/handlers"
	"github.com/TWRT/join-board/internal/service"
)

// Navigator answers login redirects of the local surface. The handler that
// hit the 401 writes the response; this only records it.
type Navigator struct {
	log *slog.Logger
}

func NewNavigator(log *slog.Logger) *Navigator {
	return &Navigator{log: log.With("component", "api")}
}

func (n *Navigator) RedirectToLogin() {
	n.log.Warn("backend session expired, login required")
}

func (n *Navigator) PromptLogin() {
	n.log.Warn("backend rejected the request, please log in again")
}

func SetupRouter(log *slog.Logger, board *service.BoardService, edit *service.EditController, timeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	boardHandler := handlers.NewBoardHandler(log, board, timeout)
	taskHandler := handlers.NewTaskHandler(log, board, edit, timeout)

	mux.HandleFunc("GET /board", boardHandler.GetBoard)
	mux.HandleFunc("POST /reload", boardHandler.Reload)

	mux.HandleFunc("GET /tasks/{id}", taskHandler.GetTask)
	mux.HandleFunc("POST /tasks/{id}/category", taskHandler.MoveTask)
	mux.HandleFunc("DELETE /tasks/{id}", taskHandler.DeleteTask)
	mux.HandleFunc("PATCH /subtasks/{id}", taskHandler.PatchSubtask)

	return mux
}
