package client

import (
	"context"

	"github.com/TWRT/join-board/internal/models"
)

// Resource is the collection path segment a mutation targets.
type Resource string

const (
	ResourceTasks    Resource = "tasks/"
	ResourceSubtasks Resource = "subtasks/"
)

type TaskStore interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task, subtasks []string) (*models.Task, error)
}

type SubtaskStore interface {
	ListSubtasks(ctx context.Context) ([]models.Subtask, error)
}

type PersonStore interface {
	ListUsers(ctx context.Context) ([]models.Person, error)
	ListGuests(ctx context.Context) ([]models.Person, error)
}

// Mutator issues partial updates and deletes. PatchTask and PatchSubtask
// return nil when the backend answers without an entity.
type Mutator interface {
	PatchTask(ctx context.Context, id models.ID, fields models.Fields) (*models.Task, error)
	PatchSubtask(ctx context.Context, id models.ID, fields models.Fields) (*models.Subtask, error)
	Delete(ctx context.Context, resource Resource, id models.ID) error
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Color    string
}

type LoginResult struct {
	Token string
	User  models.Identity
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) error
}

type BoardBackend interface {
	TaskStore
	SubtaskStore
	PersonStore
	Mutator
}
