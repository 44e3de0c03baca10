// Package ui renders the planner as a Bubble Tea program: a paged task
// table, an add form, live search, inline field edits and the upcoming
// holiday panel. All state behind the widgets lives in view.Controller.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markusmobius/go-dateparser"

	"planer/internal/config"
	"planer/internal/storage"
	"planer/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeEdit
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("211"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	reminderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// formState backs both the add form and the edit form: one field at a
// time through the shared text input, tab to move, enter to advance.
type formState struct {
	row   int // display row being edited; -1 for the add form
	title string
	due   string
	prio  string
	index int
}

func formFields() []string {
	return []string{"title", "due date (YYYY-MM-DD or e.g. 'tomorrow')", "priority (1-5)"}
}

func (f formState) currentValue() string {
	switch f.index {
	case 0:
		return f.title
	case 1:
		return f.due
	default:
		return f.prio
	}
}

func (f *formState) setCurrentValue(v string) {
	switch f.index {
	case 0:
		f.title = v
	case 1:
		f.due = v
	default:
		f.prio = v
	}
}

func (f formState) currentLabel() string {
	return formFields()[f.index]
}

type Model struct {
	ctl *view.Controller
	cfg config.Config

	rows      []storage.Task
	reminders []storage.Reminder
	cursor    int
	mode      mode
	input     textinput.Model
	status    string
	statusErr bool

	confirmDel bool
	form       *formState
}

func Run(ctl *view.Controller, cfg config.Config) error {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		ctl:    ctl,
		cfg:    cfg,
		input:  ti,
		mode:   modeList,
		status: "Press 'a' to add, '/' to search, 's' to sort, h/l to change page.",
	}
	if err := m.reload(); err != nil {
		return err
	}
	if reminders, err := ctl.Upcoming(); err == nil {
		m.reminders = reminders
	}

	program := tea.NewProgram(&m)
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// reload re-queries the visible page with the current filter, sort and
// page index and clamps the cursor to it.
func (m *Model) reload() error {
	rows, err := m.ctl.Tasks()
	if err != nil {
		return err
	}
	m.rows = rows
	m.cursor = clampCursor(m.cursor, len(rows))
	return nil
}

func (m *Model) reloadStatus(okMsg string) {
	if err := m.reload(); err != nil {
		m.setError(fmt.Sprintf("reload failed: %v", err))
		return
	}
	m.setStatus(okMsg)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateFormMode(msg.String(), msg)
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		default:
			return m.updateListMode(msg.String())
		}
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m *Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.rows) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.rows))
		}
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		}
	case m.cfg.Keys.PrevPage, "left":
		if m.ctl.PrevPage() {
			m.reloadStatus(m.pageStatus())
		}
	case m.cfg.Keys.NextPage, "right":
		moved, err := m.ctl.NextPage()
		if err != nil {
			m.setError(fmt.Sprintf("page failed: %v", err))
			return m, nil
		}
		if moved {
			m.reloadStatus(m.pageStatus())
		}
	case m.cfg.Keys.Add:
		m.form = &formState{row: -1, due: "", prio: "1"}
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = m.form.currentLabel()
		m.input.Focus()
		m.setStatus("Add task: Enter to advance, Esc to cancel")
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.SetValue(m.ctl.Search())
		m.input.Placeholder = "search"
		m.input.Focus()
		m.setStatus("Search: type to filter, Enter to keep, Esc to clear")
	case m.cfg.Keys.Sort:
		key := m.ctl.CycleSort()
		m.reloadStatus(fmt.Sprintf("Sorting by: %s", key))
	case m.cfg.Keys.Toggle:
		if len(m.rows) == 0 {
			return m, nil
		}
		if err := m.ctl.ToggleCompleted(m.cursor); err != nil {
			m.setError(fmt.Sprintf("toggle failed: %v", err))
			return m, nil
		}
		m.reloadStatus("Toggled task")
	case m.cfg.Keys.Delete:
		if len(m.rows) == 0 {
			return m, nil
		}
		m.confirmDel = true
		t := m.rows[m.cursor]
		m.setStatus(fmt.Sprintf("Delete \"%s\"? y/n", t.Title))
	case m.cfg.Keys.Edit:
		if len(m.rows) == 0 {
			m.setStatus("No tasks to edit")
			return m, nil
		}
		t := m.rows[m.cursor]
		m.form = &formState{
			row:   m.cursor,
			title: t.Title,
			due:   t.DueDate,
			prio:  strconv.Itoa(t.Priority),
		}
		m.mode = modeEdit
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.input.Focus()
		m.setStatus("Edit task: Enter to advance, Esc to cancel")
	}
	return m, nil
}

func (m *Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.ctl.SetSearch("")
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.reloadStatus("Search cleared")
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.mode = modeList
		m.input.Blur()
		m.reloadStatus(m.pageStatus())
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		// Filter on every keystroke, like the original search box.
		m.ctl.SetSearch(m.input.Value())
		if err := m.reload(); err != nil {
			m.setError(fmt.Sprintf("search failed: %v", err))
		}
		return m, cmd
	}
}

func (m *Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		m.input.Blur()
		m.setStatus("Cancelled")
		return m, nil
	case "tab", "shift+tab":
		m.form.setCurrentValue(m.input.Value())
		step := 1
		if key == "shift+tab" {
			step = -1
		}
		m.form.index = wrapIndex(m.form.index+step, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index < len(formFields())-1 {
			m.form.index++
			m.input.SetValue(m.form.currentValue())
			m.input.Placeholder = m.form.currentLabel()
			return m, nil
		}
		if m.mode == modeAdd {
			return m.submitAdd()
		}
		return m.submitEdit()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) submitAdd() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.form.title)
	if title == "" {
		m.setError("Add a task name")
		m.form.index = 0
		m.input.SetValue(m.form.title)
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	}

	due, err := parseDueDate(m.form.due)
	if err != nil {
		m.setError(err.Error())
		m.form.index = 1
		m.input.SetValue(m.form.due)
		return m, nil
	}

	prio, err := parsePriority(m.form.prio)
	if err != nil {
		m.setError(err.Error())
		m.form.index = 2
		m.input.SetValue(m.form.prio)
		return m, nil
	}

	if err := m.ctl.AddTask(title, due, prio); err != nil {
		m.setError(fmt.Sprintf("save failed: %v", err))
		return m, nil
	}
	m.closeForm()
	m.reloadStatus("Added task")
	return m, nil
}

func (m *Model) submitEdit() (tea.Model, tea.Cmd) {
	row := m.form.row
	// Title and due date apply as typed; only priority can be rejected.
	if _, err := m.ctl.EditCell(row, view.ColTitle, m.form.title); err != nil {
		m.setError(fmt.Sprintf("save failed: %v", err))
		return m, nil
	}
	if _, err := m.ctl.EditCell(row, view.ColDueDate, m.form.due); err != nil {
		m.setError(fmt.Sprintf("save failed: %v", err))
		return m, nil
	}
	res, err := m.ctl.EditCell(row, view.ColPriority, m.form.prio)
	if err != nil {
		m.setError(fmt.Sprintf("save failed: %v", err))
		return m, nil
	}

	// Reloading reverts the display when the priority was rejected;
	// the non-numeric case stays silent, the out-of-range case gets a
	// message.
	m.closeForm()
	if err := m.reload(); err != nil {
		m.setError(fmt.Sprintf("reload failed: %v", err))
		return m, nil
	}
	if res.Message != "" {
		m.setError(res.Message)
	} else {
		m.setStatus("Task updated")
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.confirmDel = false
		m.setStatus("Delete cancelled")
		return m, nil
	case "y", "Y":
		m.confirmDel = false
		if err := m.ctl.DeleteAt(m.cursor); err != nil {
			m.setError(fmt.Sprintf("delete failed: %v", err))
			return m, nil
		}
		m.reloadStatus("Deleted task")
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("❀ Planer ❀"))
	b.WriteString("\n\n")

	if m.mode == modeAdd || m.mode == modeEdit {
		b.WriteString(m.renderForm())
	} else {
		b.WriteString(m.renderTable())
		b.WriteString("\n")
		b.WriteString(m.renderReminders())
	}

	if m.mode == modeSearch {
		b.WriteString("\nSearch: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.renderHelp()))
	return b.String()
}

func (m *Model) renderTable() string {
	var b strings.Builder

	filter := ""
	if m.ctl.Search() != "" {
		filter = fmt.Sprintf("  filter: %q", m.ctl.Search())
	}
	b.WriteString(headingStyle.Render("Your tasks"))
	b.WriteString(fmt.Sprintf("  (%s, sort: %s%s)\n", m.pageStatus(), m.ctl.Sort(), filter))

	if len(m.rows) == 0 {
		b.WriteString("  Nothing on this page.\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-3s %-30s %-12s %-8s", "✓", "Task", "Due", "Prio")))
	b.WriteString("\n")
	for i, t := range m.rows {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}
		line := fmt.Sprintf("%s %-3s %-30s %-12s %-8d", cursor, checkbox, truncate(t.Title, 30), t.DueDate, t.Priority)
		switch {
		case t.Completed:
			line = completedStyle.Render(line)
		case m.cursor == i && m.mode == modeList:
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderReminders() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Upcoming holidays"))
	b.WriteString("\n")
	if len(m.reminders) == 0 {
		b.WriteString(reminderStyle.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}
	for _, r := range m.reminders {
		b.WriteString(reminderStyle.Render(fmt.Sprintf("  %s  %s", r.Date, r.Name)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderForm() string {
	var b strings.Builder
	if m.mode == modeAdd {
		b.WriteString(headingStyle.Render("Add a new task"))
	} else {
		b.WriteString(headingStyle.Render("Edit task"))
	}
	b.WriteString("\n\n")

	values := []string{m.form.title, m.form.due, m.form.prio}
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if i == m.form.index {
			val = m.input.View()
		} else if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-40s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m *Model) pageStatus() string {
	return fmt.Sprintf("page %d", m.ctl.Page()+1)
}

func (m *Model) renderHelp() string {
	k := m.cfg.Keys
	return fmt.Sprintf("%s/%s move • %s/%s page • %s add • %s edit • %s toggle • %s delete • %s search • %s sort • %s quit",
		k.Up, k.Down, k.PrevPage, k.NextPage, k.Add, k.Edit, k.Toggle, k.Delete, k.Search, k.Sort, k.Quit)
}

// parseDueDate normalizes due-date input to YYYY-MM-DD. Empty input
// means today, mirroring the original date widget's default. Anything
// else goes through go-dateparser, so "tomorrow" or "next friday" work.
func parseDueDate(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return t.Format("2006-01-02"), nil
	}
	cfg := &dateparser.Configuration{CurrentTime: time.Now()}
	res, err := dateparser.Parse(cfg, input)
	if err != nil {
		return "", fmt.Errorf("could not parse due date %q", input)
	}
	return res.Time.Format("2006-01-02"), nil
}

func parsePriority(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return storage.MinPriority, nil
	}
	p, err := strconv.Atoi(input)
	if err != nil || p < storage.MinPriority || p > storage.MaxPriority {
		return 0, fmt.Errorf("priority must be a number from %d to %d", storage.MinPriority, storage.MaxPriority)
	}
	return p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
