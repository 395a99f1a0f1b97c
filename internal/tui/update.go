package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/deadlines/internal/logger"
)

// tickMsg is sent every second for countdown updates
type tickMsg time.Time

// Init starts the one-second tick
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// One shared instant per tick for every card
		m.recompute(m.clock.Now())
		m.pulseOn = !m.pulseOn
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeForm:
			return m.updateForm(msg)
		case ModeMenu:
			return m.updateMenu(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		return m.handleNormalKeys(msg)
	}

	// Cursor blink and friends belong to the open form
	if m.mode == ModeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

// handleNormalKeys handles key presses on the card grid
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := columnsFor(m.width)

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Left):
		m.moveCursor(-1)

	case key.Matches(msg, keys.Right):
		m.moveCursor(1)

	case key.Matches(msg, keys.Up):
		m.moveCursor(-cols)

	case key.Matches(msg, keys.Down):
		m.moveCursor(cols)

	case key.Matches(msg, keys.Add):
		m.mode = ModeForm
		m.message = ""
		return m, m.form.openAdd()

	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		return m.startEdit()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.Menu):
		if m.currentDeadline() != nil {
			m.mode = ModeMenu
			m.menuCursor = 0
		}

	case key.Matches(msg, keys.Reload):
		m.handleReload()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.deadlines) {
		return
	}
	m.cursor = next
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	d := m.currentDeadline()
	if d == nil {
		return m, nil
	}
	m.mode = ModeForm
	m.message = ""
	return m, m.form.openEdit(*d, m.loc)
}

func (m *Model) handleDelete() {
	d := m.currentDeadline()
	if d == nil {
		return
	}
	name := d.Name
	if _, err := m.store.Remove(context.Background(), d.ID); err != nil {
		m.log.Error("Delete failed", logger.F("id", d.ID), logger.F("error", err))
		m.message = fmt.Sprintf("Error deleting: %v", err)
	} else {
		m.message = fmt.Sprintf("Deleted: %s", name)
	}
	m.loadData()
}

func (m *Model) handleReload() {
	if _, err := m.store.Load(context.Background()); err != nil {
		m.log.Error("Reload failed", logger.F("error", err))
		m.message = fmt.Sprintf("Reload failed: %v", err)
		return
	}
	m.loadData()
	m.message = fmt.Sprintf("Reloaded %d deadlines", len(m.deadlines))
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Menu):
		m.mode = ModeNormal

	case key.Matches(msg, keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}

	case key.Matches(msg, keys.Down):
		if m.menuCursor < len(menuItems)-1 {
			m.menuCursor++
		}

	case key.Matches(msg, keys.Edit):
		return m.startEdit()

	case key.Matches(msg, keys.Delete):
		m.mode = ModeNormal
		m.handleDelete()

	case key.Matches(msg, keys.Enter):
		if menuItems[m.menuCursor] == "Edit" {
			return m.startEdit()
		}
		m.mode = ModeNormal
		m.handleDelete()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case key.Matches(msg, keys.Tab):
		return m, m.form.focusField(m.form.focus + 1)

	case key.Matches(msg, keys.BackTab):
		return m, m.form.focusField(m.form.focus - 1)

	case key.Matches(msg, keys.Save):
		return m.saveForm()

	case key.Matches(msg, keys.Enter) && m.form.focus != fieldTask:
		if m.form.focus == fieldSave {
			return m.saveForm()
		}
		return m, m.form.focusField(m.form.focus + 1)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// saveForm stores the draft; an incomplete draft is silently ignored
func (m Model) saveForm() (tea.Model, tea.Cmd) {
	draft := m.form.draft()
	if !draft.Valid(m.loc) {
		return m, nil
	}
	ctx := context.Background()

	if m.form.editing {
		patch, err := draft.Patch(m.form.original, m.loc)
		if err != nil {
			return m, nil
		}
		d, found, err := m.store.Update(ctx, m.form.original.ID, patch)
		switch {
		case err != nil:
			m.log.Error("Update failed", logger.F("id", m.form.original.ID), logger.F("error", err))
			m.message = fmt.Sprintf("Error saving: %v", err)
		case !found:
			m.message = "Deadline no longer exists"
		default:
			m.message = fmt.Sprintf("Updated: %s", d.Name)
		}
	} else {
		due, err := draft.DueTime(m.loc)
		if err != nil {
			return m, nil
		}
		d, err := m.store.Add(ctx, draft.Name, draft.Task, due)
		if err != nil {
			m.log.Error("Add failed", logger.F("error", err))
			m.message = fmt.Sprintf("Error adding: %v", err)
		} else {
			m.message = fmt.Sprintf("Added: %s", d.Name)
		}
		m.loadData()
		m.cursor = clamp(len(m.deadlines)-1, len(m.deadlines))
		m.mode = ModeNormal
		return m, nil
	}

	m.loadData()
	m.mode = ModeNormal
	return m, nil
}
