// Package render turns cached entities into view-models keyed by entity
// id: board columns with cards, and the task detail popup.
package render

import (
	"fmt"
	"math"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/categorizer"
	"github.com/TWRT/join-board/internal/models"
)

// BadgeLimit is how many assignee badges a card shows before "+N".
const BadgeLimit = 3

type Badge struct {
	PersonID models.ID         `json:"person_id" yaml:"person_id"`
	Kind     models.PersonKind `json:"kind" yaml:"kind"`
	Initials string            `json:"initials" yaml:"initials"`
	Name     string            `json:"name" yaml:"name"`
	Color    string            `json:"color" yaml:"color"`
}

type Card struct {
	TaskID      models.ID             `json:"task_id" yaml:"task_id"`
	Title       string                `json:"title" yaml:"title"`
	Description string                `json:"description" yaml:"description"`
	Category    models.Category       `json:"category" yaml:"category"`
	Priority    models.Priority       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Badges      []Badge               `json:"badges" yaml:"badges"`
	More        int                   `json:"more,omitempty" yaml:"more,omitempty"`
	Progress    *categorizer.Progress `json:"progress,omitempty" yaml:"progress,omitempty"`
	Percent     int                   `json:"percent,omitempty" yaml:"percent,omitempty"`
}

type Column struct {
	Category    models.Category `json:"category" yaml:"category"`
	Title       string          `json:"title" yaml:"title"`
	Cards       []Card          `json:"cards" yaml:"cards"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

type Board struct {
	Query   string   `json:"query,omitempty" yaml:"query,omitempty"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Card returns the card of taskID if the board shows it.
func (b Board) Card(taskID models.ID) (Card, bool) {
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			if c.TaskID == taskID {
				return c, true
			}
		}
	}
	return Card{}, false
}

type SubtaskRow struct {
	ID      models.ID `json:"id" yaml:"id"`
	Content string    `json:"content" yaml:"content"`
	Done    bool      `json:"done" yaml:"done"`
	Pending bool      `json:"pending,omitempty" yaml:"pending,omitempty"`
	Editing bool      `json:"editing,omitempty" yaml:"editing,omitempty"`
}

type Detail struct {
	TaskID        models.ID             `json:"task_id" yaml:"task_id"`
	Title         string                `json:"title" yaml:"title"`
	Description   string                `json:"description" yaml:"description"`
	Date          string                `json:"date" yaml:"date"`
	Category      models.Category       `json:"category" yaml:"category"`
	CategoryTitle string                `json:"category_title" yaml:"category_title"`
	Priority      models.Priority       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Assignees     []Badge               `json:"assignees" yaml:"assignees"`
	Subtasks      []SubtaskRow          `json:"subtasks" yaml:"subtasks"`
	Progress      *categorizer.Progress `json:"progress,omitempty" yaml:"progress,omitempty"`
}

type Renderer struct {
	store *cache.Store
}

func NewRenderer(store *cache.Store) *Renderer {
	return &Renderer{store: store}
}

// Board rebuilds every column from the cache. With a query only matching
// titles are placed and empty columns get no placeholder.
func (r *Renderer) Board(query string) Board {
	subtasks := r.store.Subtasks()
	buckets := categorizer.Search(r.store.Tasks(), query)

	board := Board{Query: query, Columns: make([]Column, 0, len(buckets))}
	for _, b := range buckets {
		col := Column{
			Category: b.Category,
			Title:    b.Category.Title(),
			Cards:    make([]Card, 0, len(b.Tasks)),
		}
		for _, t := range b.Tasks {
			col.Cards = append(col.Cards, r.Card(t, categorizer.FilterByTask(subtasks, t.ID)))
		}
		if len(col.Cards) == 0 && query == "" {
			col.Placeholder = fmt.Sprintf("No tasks %s", col.Title)
		}
		board.Columns = append(board.Columns, col)
	}
	return board
}

func (r *Renderer) Card(task models.Task, subtasks []models.Subtask) Card {
	assignees := r.Assignees(task)
	card := Card{
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Priority:    task.Priority,
		Badges:      assignees,
		Progress:    categorizer.ProgressOf(subtasks),
	}
	if card.Progress != nil {
		card.Percent = int(math.Round(card.Progress.Fraction() * 100))
	}
	if len(assignees) > BadgeLimit {
		card.Badges = assignees[:BadgeLimit]
		card.More = len(assignees) - BadgeLimit
	}
	return card
}

// Assignees resolves the owning user then the guests in list order. Ids
// that match nobody in the cache are skipped.
func (r *Renderer) Assignees(task models.Task) []Badge {
	badges := make([]Badge, 0, len(task.AssignedGuests)+1)
	if task.AssignedUser != nil && *task.AssignedUser != "" {
		if p, ok := r.store.Person(models.KindUser, *task.AssignedUser); ok {
			badges = append(badges, badgeOf(p))
		}
	}
	for _, id := range task.AssignedGuests {
		if p, ok := r.store.Person(models.KindGuest, id); ok {
			badges = append(badges, badgeOf(p))
		}
	}
	return badges
}

func badgeOf(p models.Person) Badge {
	return Badge{
		PersonID: p.ID,
		Kind:     p.Kind,
		Initials: Initials(p.Name),
		Name:     p.Name,
		Color:    p.Color,
	}
}

// Detail renders the read-only popup of a cached task.
func (r *Renderer) Detail(taskID models.ID) (Detail, error) {
	task, err := r.store.Task(taskID)
	if err != nil {
		return Detail{}, err
	}

	subtasks := categorizer.FilterByTask(r.store.Subtasks(), task.ID)
	rows := make([]SubtaskRow, 0, len(subtasks))
	for _, s := range subtasks {
		rows = append(rows, SubtaskRow{ID: s.ID, Content: s.Content, Done: s.IsDone})
	}

	return Detail{
		TaskID:        task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Date:          task.Date,
		Category:      task.Category,
		CategoryTitle: task.Category.Title(),
		Priority:      task.Priority,
		Assignees:     r.Assignees(task),
		Subtasks:      rows,
		Progress:      categorizer.ProgressOf(subtasks),
	}, nil
}
