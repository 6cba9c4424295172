package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/models"
)

func idPtr(id models.ID) *models.ID { return &id }

func fixtureStore() *cache.Store {
	s := cache.NewStore()
	s.ReplaceUsers([]models.Person{
		{ID: "1", Name: "Max Mustermann", Color: "#FF4646"},
	})
	s.ReplaceGuests([]models.Person{
		{ID: "1", Name: "Anna Gast", Color: "#0038FF"},
		{ID: "2", Name: "Gast", Color: "#FFBB2C"},
		{ID: "3", Name: "Ben Bauer", Color: "#20D7C2"},
		{ID: "4", Name: "Carla Cruz", Color: "#9327FF"},
	})
	s.ReplaceTasks([]models.Task{
		{
			ID: "1", Title: "Fix bug", Description: "Login fails", Date: "2024-05-01",
			Category: models.CategoryToDo, Priority: models.PriorityUrgent,
			AssignedUser: idPtr("1"), AssignedGuests: []models.ID{"1", "2", "3", "99"},
		},
		{ID: "2", Title: "Write docs", Category: models.CategoryInProgress},
		{ID: "3", Title: "Review", Category: models.CategoryDone, Priority: models.PriorityLow, AssignedGuests: []models.ID{"4"}},
	})
	s.ReplaceSubtasks([]models.Subtask{
		{ID: "1", Task: "1", Content: "reproduce", IsDone: true},
		{ID: "2", Task: "1", Content: "patch", IsDone: true},
		{ID: "3", Task: "1", Content: "test", IsDone: false},
		{ID: "4", Task: "42", Content: "orphan", IsDone: true},
	})
	return s
}

func TestBoard_Cards(t *testing.T) {
	board := NewRenderer(fixtureStore()).Board("")
	require.Len(t, board.Columns, 4)

	card, ok := board.Card("1")
	require.True(t, ok)
	require.Len(t, card.Badges, BadgeLimit)
	assert.Equal(t, []string{"MM", "AG", "G"}, []string{card.Badges[0].Initials, card.Badges[1].Initials, card.Badges[2].Initials})
	assert.Equal(t, "#FF4646", card.Badges[0].Color)
	assert.Equal(t, models.KindUser, card.Badges[0].Kind)
	assert.Equal(t, 1, card.More, "unresolved guest 99 is not counted")
	require.NotNil(t, card.Progress)
	assert.Equal(t, "2/3", card.Progress.String())
	assert.Equal(t, 67, card.Percent)

	docs, ok := board.Card("2")
	require.True(t, ok)
	assert.Nil(t, docs.Progress)
	assert.Zero(t, docs.Percent)
	assert.Empty(t, docs.Badges)
	assert.Zero(t, docs.More)

	await := board.Columns[2]
	assert.Equal(t, models.CategoryAwaitFeedback, await.Category)
	assert.Empty(t, await.Cards)
	assert.Equal(t, "No tasks await feedback", await.Placeholder)
}

func TestBoard_Search(t *testing.T) {
	r := NewRenderer(fixtureStore())

	board := r.Board("BUG")
	_, ok := board.Card("1")
	assert.True(t, ok)
	_, ok = board.Card("2")
	assert.False(t, ok)
	for _, col := range board.Columns {
		assert.Empty(t, col.Placeholder)
	}

	board = r.Board("")
	for _, id := range []models.ID{"1", "2", "3"} {
		_, ok := board.Card(id)
		assert.True(t, ok, "task %s", id)
	}
}

func TestDetail(t *testing.T) {
	d, err := NewRenderer(fixtureStore()).Detail("1")
	require.NoError(t, err)

	assert.Equal(t, "Fix bug", d.Title)
	assert.Equal(t, "to do", d.CategoryTitle)
	assert.Len(t, d.Assignees, 4)
	require.Len(t, d.Subtasks, 3)
	assert.Equal(t, SubtaskRow{ID: "1", Content: "reproduce", Done: true}, d.Subtasks[0])

	_, err = NewRenderer(fixtureStore()).Detail("404")
	assert.ErrorIs(t, err, cache.ErrTaskNotFound)
}

func TestWriteBoard_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBoard(&buf, NewRenderer(fixtureStore()).Board("")))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "board", buf.Bytes())
}

func TestWriteDetail(t *testing.T) {
	d, err := NewRenderer(fixtureStore()).Detail("3")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDetail(&buf, d))
	assert.Equal(t, "#3 Review\ncategory: done\npriority: Low\n\nassigned:\n  CC Carla Cruz\n", buf.String())
}
