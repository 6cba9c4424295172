package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/TWRT/join-board/internal/client"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/render"
)

var (
	ErrNoTaskOpen    = errors.New("no task open")
	ErrNotEditing    = errors.New("task is not in edit mode")
	ErrForeignTask   = errors.New("subtask belongs to another task")
	ErrEmptySubtask  = errors.New("subtask content is empty")
	ErrInvalidFields = errors.New("invalid task fields")
)

type Mode int

const (
	ModeClosed Mode = iota
	ModeViewing
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	}
	return "closed"
}

// IdentitySource yields the logged-in user, or nil when nobody is.
type IdentitySource interface {
	CurrentUser(ctx context.Context) (*models.Identity, error)
}

// TaskForm is the edit form of a task. Assignees are display names.
type TaskForm struct {
	Title       string
	Description string
	Date        string
	Assignees   []string
	Priority    models.Priority
	Category    models.Category
}

type PendingSubtask struct {
	Key     uuid.UUID
	Content string
}

// EditView is the edit popup: the prefilled form plus the subtask rows.
type EditView struct {
	TaskID   models.ID
	Form     TaskForm
	Subtasks []render.SubtaskRow
}

// EditController drives the task popup. It is closed, viewing a task, or
// editing it; subtask rows can enter their own edit mode while the task is
// being edited. Every server change is followed by a cache refresh.
type EditController struct {
	board    *BoardService
	identity IdentitySource
	log      *slog.Logger

	mu             sync.Mutex
	mode           Mode
	taskID         models.ID
	editingSubtask models.ID
	pending        []PendingSubtask
}

func NewEditController(board *BoardService, identity IdentitySource, log *slog.Logger) *EditController {
	return &EditController{
		board:    board,
		identity: identity,
		log:      log.With("component", "edit"),
	}
}

func (c *EditController) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Open shows the read-only popup of a cached task.
func (c *EditController) Open(id models.ID) (render.Detail, error) {
	detail, err := c.board.Renderer().Detail(id)
	if err != nil {
		return render.Detail{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeViewing
	c.taskID = id
	c.editingSubtask = ""
	c.pending = nil
	return detail, nil
}

func (c *EditController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeClosed
	c.taskID = ""
	c.editingSubtask = ""
	c.pending = nil
}

// View re-renders the open popup from the cache.
func (c *EditController) View() (render.Detail, error) {
	c.mu.Lock()
	mode, id, editing := c.mode, c.taskID, c.editingSubtask
	pending := append([]PendingSubtask(nil), c.pending...)
	c.mu.Unlock()

	if mode == ModeClosed {
		return render.Detail{}, ErrNoTaskOpen
	}
	detail, err := c.board.Renderer().Detail(id)
	if err != nil {
		return render.Detail{}, err
	}
	for i := range detail.Subtasks {
		detail.Subtasks[i].Editing = detail.Subtasks[i].ID == editing
	}
	for _, p := range pending {
		detail.Subtasks = append(detail.Subtasks, render.SubtaskRow{
			ID:      models.ID(p.Key.String()),
			Content: p.Content,
			Pending: true,
		})
	}
	return detail, nil
}

// BeginEdit switches the open popup to the edit form.
func (c *EditController) BeginEdit() (EditView, error) {
	c.mu.Lock()
	if c.mode == ModeClosed {
		c.mu.Unlock()
		return EditView{}, ErrNoTaskOpen
	}
	id := c.taskID
	c.mu.Unlock()

	task, err := c.board.Store().Task(id)
	if err != nil {
		return EditView{}, err
	}
	detail, err := c.board.Renderer().Detail(id)
	if err != nil {
		return EditView{}, err
	}

	names := make([]string, 0, len(detail.Assignees))
	for _, b := range detail.Assignees {
		names = append(names, b.Name)
	}

	c.mu.Lock()
	c.mode = ModeEditing
	c.mu.Unlock()

	return EditView{
		TaskID: id,
		Form: TaskForm{
			Title:       task.Title,
			Description: task.Description,
			Date:        task.Date,
			Assignees:   names,
			Priority:    task.Priority,
			Category:    task.Category,
		},
		Subtasks: detail.Subtasks,
	}, nil
}

func (c *EditController) editingTask() (models.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeEditing {
		return "", ErrNotEditing
	}
	return c.taskID, nil
}

// Save sends the edited form as one PATCH and returns to the read-only
// view. Pending subtasks ride along with the same request.
func (c *EditController) Save(ctx context.Context, form TaskForm) error {
	id, err := c.editingTask()
	if err != nil {
		return err
	}

	fields, err := c.formFields(ctx, form)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if len(c.pending) > 0 {
		contents := make([]string, 0, len(c.pending))
		for _, p := range c.pending {
			contents = append(contents, p.Content)
		}
		fields["subtasks"] = contents
	}
	c.mu.Unlock()

	updated, err := c.board.backend.PatchTask(ctx, id, fields)
	applied := false
	if err == nil && updated != nil {
		c.board.Store().PutTask(*updated)
		applied = true
	}
	// Subtasks created on the server only show up after a reload.
	if _, hasSubtasks := fields["subtasks"]; hasSubtasks {
		applied = false
	}

	if err := c.board.settle(ctx, "save task", err, applied); err != nil {
		if errors.Is(err, board.ErrUnauthorized) {
			c.Close()
		}
		return fmt.Errorf("save task %s: %w", id, err)
	}

	c.mu.Lock()
	c.mode = ModeViewing
	c.editingSubtask = ""
	c.pending = nil
	c.mu.Unlock()
	return nil
}

// formFields merges the form into a partial update. Names resolve to the
// owning user slot when they name the session's own identity or a
// registered user, otherwise to a guest id. Unknown names are dropped.
func (c *EditController) formFields(ctx context.Context, form TaskForm) (models.Fields, error) {
	if form.Category != "" && !form.Category.Valid() {
		return nil, fmt.Errorf("%w: category %q", ErrInvalidFields, form.Category)
	}

	me, err := c.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}

	store := c.board.Store()
	var userID *models.ID
	guestIDs := make([]models.ID, 0, len(form.Assignees))
	for _, name := range form.Assignees {
		if g, ok := store.PersonByName(models.KindGuest, name); ok {
			if me != nil && g.ID == me.ID {
				id := g.ID
				userID = &id
			} else {
				guestIDs = append(guestIDs, g.ID)
			}
			continue
		}
		if u, ok := store.PersonByName(models.KindUser, name); ok {
			id := u.ID
			userID = &id
			continue
		}
		c.log.Warn("assignee not found in guests or users", "name", name)
	}

	fields := models.Fields{
		"title":           form.Title,
		"description":     form.Description,
		"date":            form.Date,
		"assigned_guests": guestIDs,
		"assigned_user":   userID,
	}
	if form.Priority != "" {
		fields["priority"] = form.Priority
	}
	if form.Category != "" {
		fields["category"] = form.Category
	}
	return fields, nil
}

// ToggleSubtask sets is_done of one subtask. It works from the read-only
// popup and is independent of the task edit form.
func (c *EditController) ToggleSubtask(ctx context.Context, subtaskID models.ID, done bool) error {
	updated, err := c.board.backend.PatchSubtask(ctx, subtaskID, models.Fields{"is_done": done})
	applied := false
	if err == nil && updated != nil {
		c.board.Store().PutSubtask(*updated)
		applied = true
	}
	return c.board.settle(ctx, "toggle subtask", err, applied)
}

// BeginSubtaskEdit puts one row of the open task into edit mode and
// returns its current content.
func (c *EditController) BeginSubtaskEdit(subtaskID models.ID) (string, error) {
	id, err := c.editingTask()
	if err != nil {
		return "", err
	}
	sub, err := c.ownSubtask(id, subtaskID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.editingSubtask = subtaskID
	c.mu.Unlock()
	return sub.Content, nil
}

func (c *EditController) ownSubtask(taskID, subtaskID models.ID) (models.Subtask, error) {
	sub, err := c.board.Store().Subtask(subtaskID)
	if err != nil {
		return models.Subtask{}, err
	}
	if sub.Task != taskID {
		return models.Subtask{}, ErrForeignTask
	}
	return sub, nil
}

// CommitSubtaskEdit sends the new content of a row and leaves its edit mode.
func (c *EditController) CommitSubtaskEdit(ctx context.Context, subtaskID models.ID, content string) error {
	id, err := c.editingTask()
	if err != nil {
		return err
	}
	if _, err := c.ownSubtask(id, subtaskID); err != nil {
		return err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptySubtask
	}

	updated, err := c.board.backend.PatchSubtask(ctx, subtaskID, models.Fields{"content": content})
	applied := false
	if err == nil && updated != nil {
		c.board.Store().PutSubtask(*updated)
		applied = true
	}

	c.mu.Lock()
	c.editingSubtask = ""
	c.mu.Unlock()
	return c.board.settle(ctx, "edit subtask", err, applied)
}

// DeleteSubtask drops a row of the task being edited.
func (c *EditController) DeleteSubtask(ctx context.Context, subtaskID models.ID) error {
	id, err := c.editingTask()
	if err != nil {
		return err
	}
	if _, err := c.ownSubtask(id, subtaskID); err != nil {
		return err
	}

	c.board.Store().RemoveSubtask(subtaskID)
	err = c.board.backend.Delete(ctx, client.ResourceSubtasks, subtaskID)

	c.mu.Lock()
	if c.editingSubtask == subtaskID {
		c.editingSubtask = ""
	}
	c.mu.Unlock()
	return c.board.settle(ctx, "delete subtask", err, false)
}

// AddPendingSubtask queues a new row client-side until the next Save.
func (c *EditController) AddPendingSubtask(content string) (uuid.UUID, error) {
	if _, err := c.editingTask(); err != nil {
		return uuid.Nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return uuid.Nil, ErrEmptySubtask
	}

	key := uuid.New()
	c.mu.Lock()
	c.pending = append(c.pending, PendingSubtask{Key: key, Content: content})
	c.mu.Unlock()
	return key, nil
}

func (c *EditController) Pending() []PendingSubtask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PendingSubtask(nil), c.pending...)
}

// MoveTask changes the column of a task with a single-field PATCH.
func (c *EditController) MoveTask(ctx context.Context, id models.ID, category models.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidFields, category)
	}
	updated, err := c.board.backend.PatchTask(ctx, id, models.Fields{"category": category})
	applied := false
	if err == nil && updated != nil {
		c.board.Store().PutTask(*updated)
		applied = true
	}
	return c.board.settle(ctx, "move task", err, applied)
}

// DeleteTask removes the task from the cache right away, deletes it on the
// server and reloads. A failed delete comes back with the reload.
func (c *EditController) DeleteTask(ctx context.Context, id models.ID) error {
	c.board.Store().RemoveTask(id)
	err := c.board.backend.Delete(ctx, client.ResourceTasks, id)
	c.Close()
	return c.board.settle(ctx, "delete task", err, false)
}

// CreateTask posts a new task with its subtask contents and reloads.
func (c *EditController) CreateTask(ctx context.Context, form TaskForm, subtasks []string) (*models.Task, error) {
	if strings.TrimSpace(form.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidFields)
	}
	if form.Category == "" {
		form.Category = models.CategoryToDo
	}

	fields, err := c.formFields(ctx, form)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		Title:          form.Title,
		Description:    form.Description,
		Date:           form.Date,
		Category:       form.Category,
		Priority:       form.Priority,
		AssignedUser:   fields["assigned_user"].(*models.ID),
		AssignedGuests: fields["assigned_guests"].([]models.ID),
	}

	contents := make([]string, 0, len(subtasks))
	for _, s := range subtasks {
		if s = strings.TrimSpace(s); s != "" {
			contents = append(contents, s)
		}
	}

	created, err := c.board.backend.CreateTask(ctx, task, contents)
	if err := c.board.settle(ctx, "create task", err, false); err != nil {
		return nil, err
	}
	return created, nil
}
