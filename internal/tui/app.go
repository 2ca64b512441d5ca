// Package tui is the interactive list: tap a row to edit it, reveal a row to
// delete it, at most one revealed row at a time.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/output"
	"todo/internal/taskstore"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

// resultMsg reports the outcome of a remote operation.
type resultMsg struct {
	op  string
	err error
}

// EventMsg tells the model the store changed outside of Update.
type EventMsg struct{}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	revealStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("196")).
			Foreground(lipgloss.Color("230"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("70"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Model represents the application state.
type Model struct {
	ctx   context.Context
	store *taskstore.Store

	snap      taskstore.Snapshot
	cursor    int
	mode      mode
	editIndex int
	input     textinput.Model

	busy      bool
	status    string
	statusErr bool

	width  int
	height int
}

// New creates a model over store. It stays busy until the load started by
// Init reports back.
func New(ctx context.Context, store *taskstore.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 500
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	return Model{
		ctx:   ctx,
		store: store,
		snap:  store.Snapshot(),
		input: ti,
		busy:  true,
	}
}

// Run starts the program on in/out and blocks until the user quits.
func Run(ctx context.Context, store *taskstore.Store, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, store),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	// Events can fire from inside Update; Send must not block the loop.
	unsubscribe := store.Subscribe(func(taskstore.Event) {
		go p.Send(EventMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}

// Init loads the list.
func (m Model) Init() tea.Cmd {
	return m.run(taskstore.OpLoad, m.store.Load)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 10 {
			m.input.Width = m.width - 10
		}
		return m, nil

	case resultMsg:
		m.busy = false
		m.refresh()
		m.notify(msg.op, msg.err)
		if msg.op == taskstore.OpEdit && msg.err != nil {
			return m.resumeEdit()
		}
		return m, nil

	case EventMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.snap.Tasks)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "r":
		m.busy = true
		m.status = ""
		return m, m.run(taskstore.OpLoad, m.store.Load)

	case "a":
		m.store.CloseRows()
		m.mode = modeAdd
		m.input.Reset()
		m.input.Placeholder = "New task"
		m.refresh()
		return m, m.input.Focus()

	case "l", "right":
		m.reveal()
		return m, nil

	case "h", "left":
		if len(m.snap.Tasks) > 0 {
			m.store.CloseRow(m.cursor)
		}
		m.refresh()
		return m, nil

	case "esc":
		m.store.CloseRows()
		m.refresh()
		return m, nil

	case "d", "x":
		if m.revealed(m.cursor) {
			return m.remove(m.cursor)
		}
		m.reveal()
		return m, nil

	case "enter", "e":
		if len(m.snap.Tasks) == 0 {
			return m, nil
		}
		if m.revealed(m.cursor) {
			return m.remove(m.cursor)
		}
		return m.beginEdit(m.cursor)
	}
	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil

	case "enter":
		text := m.input.Value()
		m.mode = modeList
		m.input.Blur()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, m.run(taskstore.OpAdd, func(ctx context.Context) error {
			return m.store.Add(ctx, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		m.store.CancelEdit(m.editIndex)
		m.refresh()
		return m, nil

	case "enter":
		index, text := m.editIndex, m.input.Value()
		m.mode = modeList
		m.input.Blur()
		m.busy = true
		m.status = ""
		return m, m.run(taskstore.OpEdit, func(ctx context.Context) error {
			return m.store.Edit(ctx, index, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) beginEdit(index int) (tea.Model, tea.Cmd) {
	m.store.CloseRows()
	if err := m.store.BeginEdit(index); err != nil {
		m.refresh()
		m.notify(taskstore.OpBeginEdit, err)
		return m, nil
	}
	m.refresh()
	m.mode = modeEdit
	m.editIndex = index
	m.input.Placeholder = ""
	m.input.SetValue(m.snap.Tasks[index].Text)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// resumeEdit reopens the input on a row whose edit was rejected, keeping the
// rejected text so it can be retried or cancelled.
func (m Model) resumeEdit() (tea.Model, tea.Cmd) {
	i := m.editIndex
	if i < 0 || i >= len(m.snap.Tasks) || !m.snap.Tasks[i].Editing {
		return m, nil
	}
	m.mode = modeEdit
	return m, m.input.Focus()
}

func (m Model) remove(index int) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = ""
	return m, m.run(taskstore.OpRemove, func(ctx context.Context) error {
		return m.store.Remove(ctx, index)
	})
}

// reveal opens the cursor row, closing any other revealed row.
func (m *Model) reveal() {
	if len(m.snap.Tasks) == 0 {
		return
	}
	if err := m.store.OpenRow(m.cursor); err != nil {
		m.notify(taskstore.OpOpenRow, err)
	}
	m.refresh()
}

func (m Model) revealed(index int) bool {
	return m.snap.HasOpen && m.snap.OpenIndex == index
}

func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{op: op, err: fn(ctx)}
	}
}

// refresh re-reads the store and keeps the cursor on the list.
func (m *Model) refresh() {
	m.snap = m.store.Snapshot()
	if m.cursor >= len(m.snap.Tasks) {
		m.cursor = len(m.snap.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// notify sets the status line for the outcome of op.
func (m *Model) notify(op string, err error) {
	if err != nil {
		m.status, _ = output.Failure(err)
		m.statusErr = true
		return
	}
	m.statusErr = false
	switch op {
	case taskstore.OpAdd:
		m.status = "task added"
	case taskstore.OpEdit:
		m.status = "task updated"
	case taskstore.OpRemove:
		m.status = "task removed"
	case taskstore.OpLoad:
		m.status = fmt.Sprintf("%d task(s)", len(m.snap.Tasks))
	default:
		m.status = ""
	}
}

// View renders the list.
func (m Model) View() string {
	var lines []string

	lines = append(lines, titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(m.snap.Tasks))))
	lines = append(lines, "")

	switch {
	case !m.snap.Loaded && m.busy:
		lines = append(lines, "loading...")
	case len(m.snap.Tasks) == 0:
		lines = append(lines, helpStyle.Render("no tasks"))
	}

	for i, task := range m.snap.Tasks {
		text := output.NormalizeText(task.Text)
		if m.mode == modeEdit && i == m.editIndex {
			text = m.input.View()
		}
		line := fmt.Sprintf("%3d  %s", i+1, text)

		switch {
		case m.revealed(i):
			line = revealStyle.Render(line + "  [enter: delete]")
		case i == m.cursor && m.mode == modeList:
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if m.mode == modeAdd {
		lines = append(lines, "", m.input.View())
	}

	lines = append(lines, "")
	if m.status != "" {
		if m.statusErr {
			lines = append(lines, errorStyle.Render(m.status))
		} else {
			lines = append(lines, noticeStyle.Render(m.status))
		}
	}
	lines = append(lines, m.renderHelp())

	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	switch m.mode {
	case modeAdd:
		return helpStyle.Render("enter: add • esc: cancel")
	case modeEdit:
		return helpStyle.Render("enter: save (empty removes) • esc: cancel")
	}
	return helpStyle.Render("j/k: move • enter: edit • d: reveal/delete • h: hide • esc: hide all • a: add • r: reload • q: quit")
}
