// Package storage persists tasks and holiday reminders in a single
// SQLite file and exposes the query operations the rest of the program
// is built on.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	// ErrEmptyTitle is returned when a task is created with a blank title.
	ErrEmptyTitle = errors.New("task title is empty")
	// ErrPriorityRange is returned when a priority falls outside [1,5].
	ErrPriorityRange = errors.New("priority must be between 1 and 5")
)

const (
	MinPriority = 1
	MaxPriority = 5
)

// Task is a stored to-do item. Due dates are kept as text: creation
// writes YYYY-MM-DD, but inline edits may store arbitrary strings.
type Task struct {
	ID        int    `db:"id"`
	Title     string `db:"title"`
	DueDate   string `db:"due_date"`
	Completed bool   `db:"completed"`
	Priority  int    `db:"priority"`
}

// Reminder is a calendar entry written by holiday ingestion. Rows are
// never updated or deleted once inserted.
type Reminder struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
	Date string `db:"date"`
	Type string `db:"type"`
}

// SortKey selects the task list ordering. Sorting is always ascending.
type SortKey int

const (
	SortNone SortKey = iota
	SortDueDate
	SortPriority
	SortTitle
)

func (k SortKey) column() string {
	switch k {
	case SortDueDate:
		return "due_date"
	case SortPriority:
		return "priority"
	case SortTitle:
		return "title"
	default:
		return ""
	}
}

func (k SortKey) String() string {
	switch k {
	case SortDueDate:
		return "due date"
	case SortPriority:
		return "priority"
	case SortTitle:
		return "title"
	default:
		return "none"
	}
}

type Store struct {
	db *sqlx.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	due_date TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	priority INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS reminders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	date TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'Holiday'
);`
	_, err := s.db.Exec(ddl)
	return err
}

// CreateTask inserts a task and returns its id. The title must be
// non-blank and the priority in range; completed starts false.
func (s *Store) CreateTask(title, dueDate string, priority int) (int, error) {
	if strings.TrimSpace(title) == "" {
		return 0, ErrEmptyTitle
	}
	if priority < MinPriority || priority > MaxPriority {
		return 0, fmt.Errorf("%w: got %d", ErrPriorityRange, priority)
	}
	res, err := s.db.Exec(`INSERT INTO tasks (title, due_date, completed, priority) VALUES (?, ?, 0, ?);`,
		title, dueDate, priority)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// UpdateTitle replaces a task's title. Any text is accepted, including
// an empty string; only creation enforces a non-blank title.
func (s *Store) UpdateTitle(id int, title string) error {
	_, err := s.db.Exec(`UPDATE tasks SET title = ? WHERE id = ?;`, title, id)
	return err
}

// UpdateDueDate replaces a task's due date. The value is stored as
// given with no format check.
func (s *Store) UpdateDueDate(id int, dueDate string) error {
	_, err := s.db.Exec(`UPDATE tasks SET due_date = ? WHERE id = ?;`, dueDate, id)
	return err
}

// UpdatePriority replaces a task's priority. Out-of-range values are
// rejected and the stored value is left untouched.
func (s *Store) UpdatePriority(id, priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return fmt.Errorf("%w: got %d", ErrPriorityRange, priority)
	}
	_, err := s.db.Exec(`UPDATE tasks SET priority = ? WHERE id = ?;`, priority, id)
	return err
}

// SetCompleted flips the completion flag. Unknown ids are a no-op.
func (s *Store) SetCompleted(id int, done bool) error {
	val := 0
	if done {
		val = 1
	}
	_, err := s.db.Exec(`UPDATE tasks SET completed = ? WHERE id = ?;`, val, id)
	return err
}

// DeleteTask removes a task. Deleting an unknown id is a no-op.
func (s *Store) DeleteTask(id int) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	return err
}

// ListTasks returns one page of tasks whose title contains search
// (SQLite LIKE, case-insensitive for ASCII), ordered ascending by the
// sort column. SortNone keeps storage order.
func (s *Store) ListTasks(search string, key SortKey, limit, offset int) ([]Task, error) {
	q := `SELECT id, title, due_date, completed, priority FROM tasks WHERE title LIKE ?`
	if col := key.column(); col != "" {
		q += " ORDER BY " + col
	}
	q += " LIMIT ? OFFSET ?"

	tasks := []Task{}
	if err := s.db.Select(&tasks, q, likePattern(search), limit, offset); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountTasks reports how many tasks match the search filter. It uses
// the same LIKE pattern as ListTasks so pagination bounds always agree
// with the rows on screen.
func (s *Store) CountTasks(search string) (int, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM tasks WHERE title LIKE ?;`, likePattern(search)); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertReminderIfAbsent inserts a reminder unless a row with the same
// name and date already exists. It reports whether a row was inserted,
// so repeated ingestion runs never duplicate holidays.
func (s *Store) InsertReminderIfAbsent(name, date, typ string) (bool, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM reminders WHERE name = ? AND date = ?;`, name, date); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.db.Exec(`INSERT INTO reminders (name, date, type) VALUES (?, ?, ?);`, name, date, typ); err != nil {
		return false, err
	}
	return true, nil
}

// UpcomingReminders returns reminders dated on or after from, ascending
// by date, capped at limit.
func (s *Store) UpcomingReminders(from string, limit int) ([]Reminder, error) {
	reminders := []Reminder{}
	err := s.db.Select(&reminders,
		`SELECT id, name, date, type FROM reminders WHERE date >= ? ORDER BY date LIMIT ?;`,
		from, limit)
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func likePattern(search string) string {
	return "%" + search + "%"
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
