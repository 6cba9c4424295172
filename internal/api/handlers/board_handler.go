package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/TWRT/join-board/internal/api/res"
	"github.com/TWRT/join-board/internal/service"
)

type BoardHandler struct {
	board   *service.BoardService
	log     *slog.Logger
	timeout time.Duration
}

func NewBoardHandler(log *slog.Logger, board *service.BoardService, timeout time.Duration) *BoardHandler {
	return &BoardHandler{board: board, log: log, timeout: timeout}
}

// GetBoard renders the cached board. ?q= filters by title.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	res.Json(w, h.board.Board(r.URL.Query().Get("q")), http.StatusOK)
}

func (h *BoardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.board.Reload(ctx); err != nil {
		writeErr(w, err)
		return
	}
	res.Json(w, h.board.Board(""), http.StatusOK)
}
