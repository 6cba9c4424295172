// Package cache holds the in-memory snapshot of the backend collections the
// board renders from.
package cache

import (
	"errors"
	"slices"
	"sync"

	"github.com/TWRT/join-board/internal/models"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
)

type personKey struct {
	kind models.PersonKind
	id   models.ID
}

// Store is the Local Cache. Collections are replaced wholesale by the load
// cycle; mutations with a known result patch single entries in place.
// Readers get copies.
type Store struct {
	mu       sync.RWMutex
	tasks    []models.Task
	subtasks []models.Subtask
	users    []models.Person
	guests   []models.Person
	people   map[personKey]models.Person
}

func NewStore() *Store {
	return &Store{people: map[personKey]models.Person{}}
}

func (s *Store) ReplaceTasks(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]models.Task, len(tasks))
	for i, t := range tasks {
		s.tasks[i] = cloneTask(t)
	}
}

func (s *Store) ReplaceSubtasks(subtasks []models.Subtask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtasks = append([]models.Subtask(nil), subtasks...)
}

func (s *Store) ReplaceUsers(users []models.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = withKind(users, models.KindUser)
	s.reindex()
}

func (s *Store) ReplaceGuests(guests []models.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests = withKind(guests, models.KindGuest)
	s.reindex()
}

func withKind(people []models.Person, kind models.PersonKind) []models.Person {
	out := make([]models.Person, len(people))
	for i, p := range people {
		p.Kind = kind
		out[i] = p
	}
	return out
}

func (s *Store) reindex() {
	s.people = make(map[personKey]models.Person, len(s.users)+len(s.guests))
	for _, p := range s.users {
		s.people[personKey{models.KindUser, p.ID}] = p
	}
	for _, p := range s.guests {
		s.people[personKey{models.KindGuest, p.ID}] = p
	}
}

// Reset drops every collection. Called on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.subtasks = nil
	s.users = nil
	s.guests = nil
	s.people = map[personKey]models.Person{}
}

func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// cloneTask copies the assignee references so callers cannot reach into
// the cache through them.
func cloneTask(t models.Task) models.Task {
	if t.AssignedUser != nil {
		id := *t.AssignedUser
		t.AssignedUser = &id
	}
	t.AssignedGuests = slices.Clone(t.AssignedGuests)
	return t
}

func (s *Store) Subtasks() []models.Subtask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Subtask(nil), s.subtasks...)
}

func (s *Store) Task(id models.ID) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return cloneTask(t), nil
		}
	}
	return models.Task{}, ErrTaskNotFound
}

func (s *Store) Subtask(id models.ID) (models.Subtask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.subtasks {
		if st.ID == id {
			return st, nil
		}
	}
	return models.Subtask{}, ErrSubtaskNotFound
}

// PutTask replaces the cached task with the same id, or appends it.
func (s *Store) PutTask(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == task.ID {
			s.tasks[i] = cloneTask(task)
			return
		}
	}
	s.tasks = append(s.tasks, cloneTask(task))
}

func (s *Store) PutSubtask(subtask models.Subtask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range s.subtasks {
		if st.ID == subtask.ID {
			s.subtasks[i] = subtask
			return
		}
	}
	s.subtasks = append(s.subtasks, subtask)
}

// RemoveTask drops the task and reports whether it was cached. Its
// subtasks stay until the next load cycle.
func (s *Store) RemoveTask(id models.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) RemoveSubtask(id models.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range s.subtasks {
		if st.ID == id {
			s.subtasks = append(s.subtasks[:i:i], s.subtasks[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Person(kind models.PersonKind, id models.ID) (models.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[personKey{kind, id}]
	return p, ok
}

// PersonByName returns the first person of the given kind with that
// display name, in collection order.
func (s *Store) PersonByName(kind models.PersonKind, name string) (models.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.guests
	if kind == models.KindUser {
		list = s.users
	}
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return models.Person{}, false
}
