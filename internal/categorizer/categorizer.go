// Package categorizer partitions tasks into the fixed board columns and
// joins subtasks to their parent task.
package categorizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/TWRT/join-board/internal/models"
)

type Bucket struct {
	Category models.Category
	Tasks    []models.Task
}

// Categorize returns one bucket per column in models.Categories order.
// Tasks keep their source order. A task with an unknown category lands in
// no bucket.
func Categorize(tasks []models.Task) []Bucket {
	buckets := make([]Bucket, len(models.Categories))
	index := make(map[models.Category]int, len(models.Categories))
	for i, c := range models.Categories {
		buckets[i] = Bucket{Category: c, Tasks: []models.Task{}}
		index[c] = i
	}

	for _, t := range tasks {
		i, ok := index[t.Category]
		if !ok {
			continue
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
	}
	return buckets
}

// Search keeps only tasks whose title contains query, ignoring case. An
// empty query is the unfiltered board.
func Search(tasks []models.Task, query string) []Bucket {
	if query == "" {
		return Categorize(tasks)
	}

	fold := cases.Fold()
	needle := fold.String(query)

	matches := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(fold.String(t.Title), needle) {
			matches = append(matches, t)
		}
	}
	return Categorize(matches)
}

// FilterByTask returns the subtasks whose parent is taskID.
func FilterByTask(subtasks []models.Subtask, taskID models.ID) []models.Subtask {
	out := make([]models.Subtask, 0)
	for _, s := range subtasks {
		if s.Task == taskID {
			out = append(out, s)
		}
	}
	return out
}

type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// ProgressOf counts finished subtasks. It returns nil for an empty set:
// no progress indicator is shown then.
func ProgressOf(subtasks []models.Subtask) *Progress {
	if len(subtasks) == 0 {
		return nil
	}
	p := &Progress{Total: len(subtasks)}
	for _, s := range subtasks {
		if s.IsDone {
			p.Done++
		}
	}
	return p
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}
