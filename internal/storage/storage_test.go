package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "planer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planer.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateTask("survives reopen", "2025-03-01", 2)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "survives reopen", tasks[0].Title)
}

func TestCreateTaskRoundTrip(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateTask("Buy milk", "2025-05-12", 3)
	require.NoError(t, err)
	require.NotZero(t, id)

	tasks, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2025-05-12", got.DueDate)
	assert.Equal(t, 3, got.Priority)
	assert.False(t, got.Completed)
}

func TestCreateTaskValidation(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateTask("", "2025-01-01", 1)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = s.CreateTask("   ", "2025-01-01", 1)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	for _, p := range []int{0, 6, -1, 100} {
		_, err = s.CreateTask("valid title", "2025-01-01", p)
		assert.ErrorIs(t, err, ErrPriorityRange, "priority %d", p)
	}

	n, err := s.CountTasks("")
	require.NoError(t, err)
	assert.Zero(t, n, "failed creates must not insert rows")
}

func TestUpdateTitleAndDueDateAcceptAnything(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateTask("original", "2025-01-01", 1)
	require.NoError(t, err)

	// Inline edits are deliberately lax: no emptiness or format checks.
	require.NoError(t, s.UpdateTitle(id, ""))
	require.NoError(t, s.UpdateDueDate(id, "not a date"))

	tasks, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "", tasks[0].Title)
	assert.Equal(t, "not a date", tasks[0].DueDate)
}

func TestUpdatePriorityRejectsOutOfRange(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateTask("task", "2025-01-01", 2)
	require.NoError(t, err)

	for _, p := range []int{0, 6, -3, 42} {
		err := s.UpdatePriority(id, p)
		assert.ErrorIs(t, err, ErrPriorityRange, "priority %d", p)
	}

	tasks, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].Priority, "rejected edits must leave the stored value")

	require.NoError(t, s.UpdatePriority(id, 5))
	tasks, err = s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, tasks[0].Priority)
}

func TestSetCompletedRoundTrip(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateTask("toggle me", "2025-01-01", 1)
	require.NoError(t, err)

	require.NoError(t, s.SetCompleted(id, true))
	tasks, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed)

	require.NoError(t, s.SetCompleted(id, false))
	tasks, err = s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	assert.False(t, tasks[0].Completed)

	// Unknown ids are a no-op, not an error.
	assert.NoError(t, s.SetCompleted(99999, true))
}

func TestDeleteTaskIdempotent(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateTask("doomed", "2025-01-01", 1)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(id))
	tasks, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.NoError(t, s.DeleteTask(id))
	assert.NoError(t, s.DeleteTask(424242))
}

func TestListTasksSearchIsCaseInsensitiveSubstring(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateTask("Buy milk", "2025-01-01", 1)
	require.NoError(t, err)
	_, err = s.CreateTask("Walk the dog", "2025-01-02", 2)
	require.NoError(t, err)

	for _, q := range []string{"milk", "MILK", "Milk", "ilk"} {
		tasks, err := s.ListTasks(q, SortNone, 10, 0)
		require.NoError(t, err)
		require.Len(t, tasks, 1, "query %q", q)
		assert.Equal(t, "Buy milk", tasks[0].Title)
	}

	tasks, err := s.ListTasks("cat", SortNone, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasksSorting(t *testing.T) {
	s := openTestStore(t)
	seed := []struct {
		title    string
		due      string
		priority int
	}{
		{"charlie", "2025-03-01", 2},
		{"alpha", "2025-01-15", 5},
		{"bravo", "2025-02-10", 1},
	}
	for _, in := range seed {
		_, err := s.CreateTask(in.title, in.due, in.priority)
		require.NoError(t, err)
	}

	byPriority, err := s.ListTasks("", SortPriority, 10, 0)
	require.NoError(t, err)
	for i := 1; i < len(byPriority); i++ {
		assert.LessOrEqual(t, byPriority[i-1].Priority, byPriority[i].Priority)
	}

	byTitle, err := s.ListTasks("", SortTitle, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo", "charlie"},
		[]string{byTitle[0].Title, byTitle[1].Title, byTitle[2].Title})

	byDue, err := s.ListTasks("", SortDueDate, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", byDue[0].DueDate)
	assert.Equal(t, "2025-03-01", byDue[2].DueDate)

	// SortNone guarantees only repeatability on an unmodified dataset.
	first, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	second, err := s.ListTasks("", SortNone, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListTasksPagination(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 12; i++ {
		_, err := s.CreateTask("task", "2025-01-01", 1)
		require.NoError(t, err)
	}

	page0, err := s.ListTasks("", SortNone, 5, 0)
	require.NoError(t, err)
	assert.Len(t, page0, 5)

	page1, err := s.ListTasks("", SortNone, 5, 5)
	require.NoError(t, err)
	assert.Len(t, page1, 5)

	page2, err := s.ListTasks("", SortNone, 5, 10)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	page3, err := s.ListTasks("", SortNone, 5, 15)
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestCountTasksRespectsFilter(t *testing.T) {
	s := openTestStore(t)
	titles := []string{"Buy milk", "Buy bread", "Walk the dog"}
	for _, title := range titles {
		_, err := s.CreateTask(title, "2025-01-01", 1)
		require.NoError(t, err)
	}

	all, err := s.CountTasks("")
	require.NoError(t, err)
	assert.Equal(t, 3, all)

	buys, err := s.CountTasks("buy")
	require.NoError(t, err)
	assert.Equal(t, 2, buys)

	none, err := s.CountTasks("zzz")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestInsertReminderIfAbsent(t *testing.T) {
	s := openTestStore(t)

	inserted, err := s.InsertReminderIfAbsent("New Year", "2025-01-01", "Holiday")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertReminderIfAbsent("New Year", "2025-01-01", "Holiday")
	require.NoError(t, err)
	assert.False(t, inserted, "same (name, date) must not insert twice")

	// Same name on a different date is a distinct reminder.
	inserted, err = s.InsertReminderIfAbsent("New Year", "2026-01-01", "Holiday")
	require.NoError(t, err)
	assert.True(t, inserted)

	reminders, err := s.UpcomingReminders("2000-01-01", 10)
	require.NoError(t, err)
	assert.Len(t, reminders, 2)
}

func TestUpcomingReminders(t *testing.T) {
	s := openTestStore(t)
	seed := []struct{ name, date string }{
		{"Past", "2025-01-01"},
		{"Boundary", "2025-06-01"},
		{"Later", "2025-08-15"},
		{"Latest", "2025-12-25"},
	}
	for _, r := range seed {
		_, err := s.InsertReminderIfAbsent(r.name, r.date, "Holiday")
		require.NoError(t, err)
	}

	got, err := s.UpcomingReminders("2025-06-01", 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.GreaterOrEqual(t, r.Date, "2025-06-01")
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Date, r.Date)
		}
	}
	assert.Equal(t, "Boundary", got[0].Name)

	capped, err := s.UpcomingReminders("2025-01-01", 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}
