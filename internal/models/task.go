package models

import "strings"

type Category string

const (
	CategoryToDo       Category = "to_do"
	CategoryInProgress Category = "in_progress"
	// The backend spells the feedback column "awaitt"; keep it verbatim.
	CategoryAwaitFeedback Category = "awaitt"
	CategoryDone          Category = "done"
)

// Categories lists the board columns in display order.
var Categories = []Category{
	CategoryToDo,
	CategoryInProgress,
	CategoryAwaitFeedback,
	CategoryDone,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Title is the human label of the column.
func (c Category) Title() string {
	switch c {
	case CategoryToDo:
		return "to do"
	case CategoryInProgress:
		return "in progress"
	case CategoryAwaitFeedback:
		return "await feedback"
	case CategoryDone:
		return "done"
	}
	return string(c)
}

// ParseCategory accepts the wire value or the column title.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if s == string(c) || s == c.Title() || s == strings.ReplaceAll(c.Title(), " ", "_") {
			return c, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urgent":
		return PriorityUrgent, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	}
	return "", false
}

type Task struct {
	ID             ID       `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Date           string   `json:"date"`
	Category       Category `json:"category"`
	Priority       Priority `json:"priority,omitempty"`
	AssignedUser   *ID      `json:"assigned_user"`
	AssignedGuests []ID     `json:"assigned_guests"`
}

// Subtask is a checklist row. Task references the parent by id; the parent
// does not own a list of its subtasks.
type Subtask struct {
	ID      ID     `json:"id"`
	Task    ID     `json:"task"`
	Content string `json:"content"`
	IsDone  bool   `json:"is_done"`
}

// Fields is a partial update payload.
type Fields map[string]any
