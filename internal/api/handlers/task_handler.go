package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/TWRT/join-board/internal/api/res"
	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/service"
)

type MoveTaskRequestBody struct {
	Category string `json:"category"`
}

type PatchSubtaskRequestBody struct {
	IsDone  *bool   `json:"is_done"`
	Content *string `json:"content"`
}

type TaskHandler struct {
	board   *service.BoardService
	edit    *service.EditController
	log     *slog.Logger
	timeout time.Duration

	// Guards the shared popup state: content edits walk it through edit
	// mode and deletes close it.
	mu sync.Mutex
}

func NewTaskHandler(log *slog.Logger, board *service.BoardService, edit *service.EditController, timeout time.Duration) *TaskHandler {
	return &TaskHandler{board: board, edit: edit, log: log, timeout: timeout}
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	detail, err := h.board.Renderer().Detail(models.ID(r.PathValue("id")))
	if err != nil {
		writeErr(w, err)
		return
	}
	res.Json(w, detail, http.StatusOK)
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var in MoveTaskRequestBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	category, ok := models.ParseCategory(in.Category)
	if !ok {
		res.Error(w, "unknown category: "+in.Category, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := models.ID(r.PathValue("id"))
	if err := h.edit.MoveTask(ctx, id, category); err != nil {
		writeErr(w, err)
		return
	}
	h.writeDetail(w, id)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.edit.DeleteTask(ctx, models.ID(r.PathValue("id"))); err != nil {
		writeErr(w, err)
		return
	}
	res.Json(w, map[string]any{"ok": true}, http.StatusOK)
}

// PatchSubtask toggles is_done and/or replaces the content of a subtask.
func (h *TaskHandler) PatchSubtask(w http.ResponseWriter, r *http.Request) {
	var in PatchSubtaskRequestBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.IsDone == nil && in.Content == nil {
		res.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	id := models.ID(r.PathValue("id"))
	sub, err := h.board.Store().Subtask(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if in.IsDone != nil {
		if err := h.edit.ToggleSubtask(ctx, id, *in.IsDone); err != nil {
			writeErr(w, err)
			return
		}
	}
	if in.Content != nil {
		if err := h.editContent(ctx, sub.Task, id, *in.Content); err != nil {
			writeErr(w, err)
			return
		}
	}
	h.writeDetail(w, sub.Task)
}

func (h *TaskHandler) editContent(ctx context.Context, taskID, subtaskID models.ID, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer h.edit.Close()

	if _, err := h.edit.Open(taskID); err != nil {
		return err
	}
	if _, err := h.edit.BeginEdit(); err != nil {
		return err
	}
	if _, err := h.edit.BeginSubtaskEdit(subtaskID); err != nil {
		return err
	}
	return h.edit.CommitSubtaskEdit(ctx, subtaskID, content)
}

func (h *TaskHandler) writeDetail(w http.ResponseWriter, id models.ID) {
	detail, err := h.board.Renderer().Detail(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	res.Json(w, detail, http.StatusOK)
}
