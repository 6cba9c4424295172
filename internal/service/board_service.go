package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/client"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/render"
)

// Navigator is the way back to the login entry point.
type Navigator interface {
	// RedirectToLogin is called once when the backend answers 401. The
	// call chain that hit it is abandoned.
	RedirectToLogin()
	// PromptLogin is the generic fallback for any other failed mutation.
	PromptLogin()
}

type BoardService struct {
	backend  client.BoardBackend
	store    *cache.Store
	renderer *render.Renderer
	nav      Navigator
	log      *slog.Logger
}

func NewBoardService(backend client.BoardBackend, store *cache.Store, nav Navigator, log *slog.Logger) *BoardService {
	return &BoardService{
		backend:  backend,
		store:    store,
		renderer: render.NewRenderer(store),
		nav:      nav,
		log:      log.With("component", "board"),
	}
}

func (s *BoardService) Backend() client.BoardBackend {
	return s.backend
}

func (s *BoardService) Store() *cache.Store {
	return s.store
}

func (s *BoardService) Renderer() *render.Renderer {
	return s.renderer
}

// Board renders the cached board, filtered by query when set.
func (s *BoardService) Board(query string) render.Board {
	return s.renderer.Board(query)
}

// Reload runs the load cycle: tasks, guests, subtasks, users, one after
// another. Each step replaces its collection. The first failing step
// aborts the rest, so earlier collections may be newer than later ones.
func (s *BoardService) Reload(ctx context.Context) error {
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"tasks", s.loadTasks},
		{"guests", s.loadGuests},
		{"subtasks", s.loadSubtasks},
		{"users", s.loadUsers},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			if errors.Is(err, board.ErrUnauthorized) {
				s.log.Warn("not authorized, redirecting to login", "step", step.name)
				s.nav.RedirectToLogin()
			} else {
				s.log.Error("load failed", "step", step.name, "error", err)
			}
			return fmt.Errorf("reload %s: %w", step.name, err)
		}
	}

	s.log.Debug("board reloaded", "tasks", len(s.store.Tasks()), "subtasks", len(s.store.Subtasks()))
	return nil
}

func (s *BoardService) loadTasks(ctx context.Context) error {
	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceTasks(tasks)
	return nil
}

func (s *BoardService) loadGuests(ctx context.Context) error {
	guests, err := s.backend.ListGuests(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceGuests(guests)
	return nil
}

func (s *BoardService) loadSubtasks(ctx context.Context) error {
	subtasks, err := s.backend.ListSubtasks(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceSubtasks(subtasks)
	return nil
}

func (s *BoardService) loadUsers(ctx context.Context) error {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceUsers(users)
	return nil
}

// failed reports a mutation error through the navigator. It returns true
// when the call chain must be abandoned.
func (s *BoardService) failed(op string, err error) bool {
	switch {
	case errors.Is(err, board.ErrUnauthorized):
		s.log.Warn("not authorized, redirecting to login", "op", op)
		s.nav.RedirectToLogin()
		return true
	case errors.Is(err, board.ErrRequestFailed):
		s.log.Error("mutation rejected", "op", op, "error", err)
		s.nav.PromptLogin()
	default:
		s.log.Error("mutation failed", "op", op, "error", err)
	}
	return false
}

// settle finishes a mutation. Failures are reported and then reconciled by
// a reload unless abandoned. A success already applied to the cache needs
// no reload.
func (s *BoardService) settle(ctx context.Context, op string, err error, applied bool) error {
	if err != nil {
		if s.failed(op, err) {
			return err
		}
		_ = s.Reload(ctx)
		return err
	}
	if applied {
		return nil
	}
	return s.Reload(ctx)
}
