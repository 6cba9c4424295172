package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/client"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend keeps the server side collections in memory. fail maps an
// operation name to the error it returns.
type fakeBackend struct {
	mu       sync.Mutex
	tasks    []models.Task
	subtasks []models.Subtask
	users    []models.Person
	guests   []models.Person

	// echo makes PATCH answer with the updated entity.
	echo  bool
	fail  map[string]error
	calls []string

	onDelete func(resource client.Resource, id models.ID)
	patches  []models.Fields
	created  []models.Task
	nextID   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fail: map[string]error{}, nextID: 100}
}

func unauthorized(op string) error {
	return &board.StatusError{Op: op, StatusCode: http.StatusUnauthorized}
}

func serverError(op string) error {
	return &board.StatusError{Op: op, StatusCode: http.StatusInternalServerError}
}

func (f *fakeBackend) call(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListTasks(context.Context) ([]models.Task, error) {
	if err := f.call("ListTasks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeBackend) ListSubtasks(context.Context) ([]models.Subtask, error) {
	if err := f.call("ListSubtasks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Subtask(nil), f.subtasks...), nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]models.Person, error) {
	if err := f.call("ListUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Person(nil), f.users...), nil
}

func (f *fakeBackend) ListGuests(context.Context) ([]models.Person, error) {
	if err := f.call("ListGuests"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Person(nil), f.guests...), nil
}

func (f *fakeBackend) CreateTask(_ context.Context, task models.Task, subtasks []string) (*models.Task, error) {
	if err := f.call("CreateTask"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = models.ID(strconv.Itoa(f.nextID))
	f.tasks = append(f.tasks, task)
	f.created = append(f.created, task)
	for _, content := range subtasks {
		f.nextID++
		f.subtasks = append(f.subtasks, models.Subtask{ID: models.ID(strconv.Itoa(f.nextID)), Task: task.ID, Content: content})
	}
	return &task, nil
}

func (f *fakeBackend) PatchTask(_ context.Context, id models.ID, fields models.Fields) (*models.Task, error) {
	if err := f.call("PatchTask"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, fields)
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if v, ok := fields["title"].(string); ok {
			t.Title = v
		}
		if v, ok := fields["description"].(string); ok {
			t.Description = v
		}
		if v, ok := fields["date"].(string); ok {
			t.Date = v
		}
		if v, ok := fields["category"].(models.Category); ok {
			t.Category = v
		}
		if v, ok := fields["priority"].(models.Priority); ok {
			t.Priority = v
		}
		if v, ok := fields["assigned_user"].(*models.ID); ok {
			t.AssignedUser = v
		}
		if v, ok := fields["assigned_guests"].([]models.ID); ok {
			t.AssignedGuests = v
		}
		if v, ok := fields["subtasks"].([]string); ok {
			for _, content := range v {
				f.nextID++
				f.subtasks = append(f.subtasks, models.Subtask{ID: models.ID(strconv.Itoa(f.nextID)), Task: id, Content: content})
			}
		}
		f.tasks[i] = t
		if f.echo {
			return &t, nil
		}
		return nil, nil
	}
	return nil, &board.StatusError{Op: "patch tasks", StatusCode: http.StatusNotFound}
}

func (f *fakeBackend) PatchSubtask(_ context.Context, id models.ID, fields models.Fields) (*models.Subtask, error) {
	if err := f.call("PatchSubtask"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, fields)
	for i, s := range f.subtasks {
		if s.ID != id {
			continue
		}
		if v, ok := fields["is_done"].(bool); ok {
			s.IsDone = v
		}
		if v, ok := fields["content"].(string); ok {
			s.Content = v
		}
		f.subtasks[i] = s
		if f.echo {
			return &s, nil
		}
		return nil, nil
	}
	return nil, &board.StatusError{Op: "patch subtasks", StatusCode: http.StatusNotFound}
}

func (f *fakeBackend) Delete(_ context.Context, resource client.Resource, id models.ID) error {
	if f.onDelete != nil {
		f.onDelete(resource, id)
	}
	if err := f.call("Delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch resource {
	case client.ResourceTasks:
		for i, t := range f.tasks {
			if t.ID == id {
				f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
				break
			}
		}
	case client.ResourceSubtasks:
		for i, s := range f.subtasks {
			if s.ID == id {
				f.subtasks = append(f.subtasks[:i], f.subtasks[i+1:]...)
				break
			}
		}
	}
	return nil
}

type fakeNavigator struct {
	redirects int
	prompts   int
}

func (n *fakeNavigator) RedirectToLogin() { n.redirects++ }
func (n *fakeNavigator) PromptLogin()     { n.prompts++ }

type fixedIdentity struct {
	user *models.Identity
}

func (f fixedIdentity) CurrentUser(context.Context) (*models.Identity, error) {
	return f.user, nil
}

func idPtr(id models.ID) *models.ID { return &id }

// seededBackend is a board with two tasks, each with subtasks.
func seededBackend() *fakeBackend {
	f := newFakeBackend()
	f.users = []models.Person{{ID: "1", Name: "Max Mustermann", Color: "#FF4646"}}
	f.guests = []models.Person{
		{ID: "1", Name: "Max Mustermann", Color: "#FF4646"},
		{ID: "2", Name: "Anna Gast", Color: "#0038FF"},
		{ID: "3", Name: "Ben Bauer", Color: "#20D7C2"},
	}
	f.tasks = []models.Task{
		{ID: "1", Title: "Fix bug", Category: models.CategoryToDo, Priority: models.PriorityUrgent, AssignedUser: idPtr("1"), AssignedGuests: []models.ID{"2"}},
		{ID: "2", Title: "Write docs", Category: models.CategoryInProgress},
	}
	f.subtasks = []models.Subtask{
		{ID: "11", Task: "1", Content: "reproduce", IsDone: true},
		{ID: "12", Task: "1", Content: "patch", IsDone: true},
		{ID: "13", Task: "1", Content: "test", IsDone: false},
		{ID: "21", Task: "2", Content: "outline", IsDone: false},
	}
	return f
}

type harness struct {
	backend *fakeBackend
	nav     *fakeNavigator
	board   *BoardService
	edit    *EditController
}

func newHarness(f *fakeBackend, me *models.Identity) *harness {
	nav := &fakeNavigator{}
	svc := NewBoardService(f, cache.NewStore(), nav, discardLogger())
	return &harness{
		backend: f,
		nav:     nav,
		board:   svc,
		edit:    NewEditController(svc, fixedIdentity{user: me}, discardLogger()),
	}
}
