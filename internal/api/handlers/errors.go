package handlers

import (
	"errors"
	"net/http"

	"github.com/TWRT/join-board/internal/api/res"
	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/service"
)

// writeErr maps service and backend errors onto the local surface.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrUnauthorized):
		res.Error(w, "login required", http.StatusUnauthorized)
	case errors.Is(err, cache.ErrTaskNotFound), errors.Is(err, cache.ErrSubtaskNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidFields), errors.Is(err, service.ErrEmptySubtask),
		errors.Is(err, service.ErrForeignTask):
		res.Error(w, err.Error(), http.StatusBadRequest)
	default:
		res.Error(w, err.Error(), http.StatusBadGateway)
	}
}
