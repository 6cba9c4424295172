package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWRT/join-board/internal/models"
)

func TestStore_ReplaceAndLookup(t *testing.T) {
	s := NewStore()
	s.ReplaceTasks([]models.Task{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}})
	s.ReplaceUsers([]models.Person{{ID: "1", Name: "Max Mustermann"}})
	s.ReplaceGuests([]models.Person{{ID: "1", Name: "Anna Gast"}})

	task, err := s.Task("2")
	require.NoError(t, err)
	assert.Equal(t, "b", task.Title)

	_, err = s.Task("9")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// Same id in both collections stays distinct by kind.
	user, ok := s.Person(models.KindUser, "1")
	require.True(t, ok)
	assert.Equal(t, "Max Mustermann", user.Name)
	assert.Equal(t, models.KindUser, user.Kind)

	guest, ok := s.Person(models.KindGuest, "1")
	require.True(t, ok)
	assert.Equal(t, "Anna Gast", guest.Name)

	_, ok = s.PersonByName(models.KindGuest, "Max Mustermann")
	assert.False(t, ok)
}

func TestStore_ReadersGetCopies(t *testing.T) {
	s := NewStore()
	s.ReplaceTasks([]models.Task{{ID: "1", Title: "a"}})

	tasks := s.Tasks()
	tasks[0].Title = "changed"

	task, err := s.Task("1")
	require.NoError(t, err)
	assert.Equal(t, "a", task.Title)
}

func TestStore_ReadersDoNotShareAssignees(t *testing.T) {
	s := NewStore()
	user := models.ID("1")
	s.ReplaceTasks([]models.Task{{ID: "1", AssignedUser: &user, AssignedGuests: []models.ID{"2", "3"}}})

	tasks := s.Tasks()
	tasks[0].AssignedGuests[0] = "9"
	*tasks[0].AssignedUser = "9"

	task, err := s.Task("1")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"2", "3"}, task.AssignedGuests)
	assert.Equal(t, models.ID("1"), *task.AssignedUser)

	task.AssignedGuests[1] = "9"
	again, err := s.Task("1")
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"2", "3"}, again.AssignedGuests)
}

func TestStore_PutAndRemove(t *testing.T) {
	s := NewStore()
	s.ReplaceTasks([]models.Task{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	s.ReplaceSubtasks([]models.Subtask{{ID: "10", Task: "1"}})

	s.PutTask(models.Task{ID: "2", Title: "patched"})
	s.PutTask(models.Task{ID: "4"})
	assert.True(t, s.RemoveTask("1"))
	assert.False(t, s.RemoveTask("1"))

	ids := []models.ID{}
	for _, task := range s.Tasks() {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []models.ID{"2", "3", "4"}, ids)

	s.PutSubtask(models.Subtask{ID: "10", Task: "1", IsDone: true})
	sub, err := s.Subtask("10")
	require.NoError(t, err)
	assert.True(t, sub.IsDone)

	assert.True(t, s.RemoveSubtask("10"))
	_, err = s.Subtask("10")
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.ReplaceTasks([]models.Task{{ID: "1"}})
	s.ReplaceUsers([]models.Person{{ID: "1"}})
	s.Reset()

	assert.Empty(t, s.Tasks())
	_, ok := s.Person(models.KindUser, "1")
	assert.False(t, ok)
}
