// Package view holds the non-visual session state between the terminal
// UI and the store: the active search, sort key and page, plus the
// mapping from displayed rows back to task ids.
package view

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"planer/internal/storage"
)

// Column identifies an editable task field.
type Column int

const (
	ColTitle Column = iota
	ColDueDate
	ColPriority
)

// EditResult reports what an inline edit did. Reverted means the
// display must be reloaded because the value was rejected; Message is
// empty when the rejection is silent (non-numeric priority).
type EditResult struct {
	Applied  bool
	Reverted bool
	Message  string
}

// Controller owns transient view state only; nothing here is
// persisted. Every interaction re-queries the store, there is no cache.
type Controller struct {
	store         *storage.Store
	pageSize      int
	reminderLimit int

	search string
	sort   storage.SortKey
	page   int

	rows []storage.Task
}

func New(store *storage.Store, pageSize, reminderLimit int) *Controller {
	if pageSize <= 0 {
		pageSize = 5
	}
	if reminderLimit <= 0 {
		reminderLimit = 5
	}
	return &Controller{
		store:         store,
		pageSize:      pageSize,
		reminderLimit: reminderLimit,
	}
}

func (c *Controller) Search() string { return c.search }

func (c *Controller) Sort() storage.SortKey { return c.sort }

func (c *Controller) Page() int { return c.page }

// SetSearch updates the filter. The page index is kept, matching the
// original behavior; a late page can come back empty.
func (c *Controller) SetSearch(search string) {
	c.search = search
}

func (c *Controller) SetSort(key storage.SortKey) {
	c.sort = key
}

// CycleSort advances to the next sort key, wrapping back to none.
func (c *Controller) CycleSort() storage.SortKey {
	switch c.sort {
	case storage.SortNone:
		c.sort = storage.SortDueDate
	case storage.SortDueDate:
		c.sort = storage.SortPriority
	case storage.SortPriority:
		c.sort = storage.SortTitle
	default:
		c.sort = storage.SortNone
	}
	return c.sort
}

// Tasks loads the visible page and rebuilds the row-to-task mapping.
func (c *Controller) Tasks() ([]storage.Task, error) {
	rows, err := c.store.ListTasks(c.search, c.sort, c.pageSize, c.page*c.pageSize)
	if err != nil {
		return nil, err
	}
	c.rows = rows
	return rows, nil
}

// TaskAt returns the task shown on a display row of the last load.
func (c *Controller) TaskAt(row int) (storage.Task, bool) {
	if row < 0 || row >= len(c.rows) {
		return storage.Task{}, false
	}
	return c.rows[row], true
}

// PrevPage steps back one page. It reports whether the page changed.
func (c *Controller) PrevPage() bool {
	if c.page == 0 {
		return false
	}
	c.page--
	return true
}

// NextPage advances only while another filtered page exists. The bound
// uses the same filter as the visible rows.
func (c *Controller) NextPage() (bool, error) {
	total, err := c.store.CountTasks(c.search)
	if err != nil {
		return false, err
	}
	if (c.page+1)*c.pageSize >= total {
		return false, nil
	}
	c.page++
	return true, nil
}

// AddTask creates a task with creation-time validation. The current
// page and filters stay where they are.
func (c *Controller) AddTask(title, dueDate string, priority int) error {
	_, err := c.store.CreateTask(title, dueDate, priority)
	return err
}

// EditCell applies an inline edit to the task on a display row. Title
// and due-date edits store the text as typed. Priority edits revert on
// anything but an integer in range: silently for non-numeric input,
// with a user message when out of range.
func (c *Controller) EditCell(row int, col Column, value string) (EditResult, error) {
	t, ok := c.TaskAt(row)
	if !ok {
		return EditResult{Reverted: true}, nil
	}

	switch col {
	case ColTitle:
		if err := c.store.UpdateTitle(t.ID, value); err != nil {
			return EditResult{}, err
		}
		return EditResult{Applied: true}, nil
	case ColDueDate:
		if err := c.store.UpdateDueDate(t.ID, value); err != nil {
			return EditResult{}, err
		}
		return EditResult{Applied: true}, nil
	case ColPriority:
		p, err := strconv.Atoi(value)
		if err != nil {
			return EditResult{Reverted: true}, nil
		}
		err = c.store.UpdatePriority(t.ID, p)
		if errors.Is(err, storage.ErrPriorityRange) {
			return EditResult{
				Reverted: true,
				Message: fmt.Sprintf("Priority must be a number from %d to %d",
					storage.MinPriority, storage.MaxPriority),
			}, nil
		}
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{Applied: true}, nil
	default:
		return EditResult{Reverted: true}, nil
	}
}

// ToggleCompleted flips the completion flag of the task on a display
// row.
func (c *Controller) ToggleCompleted(row int) error {
	t, ok := c.TaskAt(row)
	if !ok {
		return nil
	}
	return c.store.SetCompleted(t.ID, !t.Completed)
}

// DeleteAt removes the task on a display row. The page index is kept
// even when this empties the last page.
func (c *Controller) DeleteAt(row int) error {
	t, ok := c.TaskAt(row)
	if !ok {
		return nil
	}
	return c.store.DeleteTask(t.ID)
}

// Upcoming returns the reminders dated today or later, capped at the
// configured limit.
func (c *Controller) Upcoming() ([]storage.Reminder, error) {
	today := time.Now().Format("2006-01-02")
	return c.store.UpcomingReminders(today, c.reminderLimit)
}
