package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/present"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)

	body := m.renderGrid()
	switch m.mode {
	case ModeForm:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			m.renderForm(), lipgloss.WithWhitespaceChars(" "))
	case ModeMenu:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			m.renderMenu(), lipgloss.WithWhitespaceChars(" "))
	case ModeHelp:
		body = m.renderHelp(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("DEADLINES") + HelpStyle.Render(tierLegend(m.states, m.deadlines))
	now := HelpStyle.Render(m.now.In(m.loc).Format("15:04:05 MST"))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(now) - 1
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + now + "\n"
}

func (m Model) renderGrid() string {
	if len(m.deadlines) == 0 {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Foreground(TextMuted).Render("Nothing to track yet"),
			HelpStyle.Render("Press 'a' to add your first deadline"))
		return lipgloss.Place(m.width, 6, lipgloss.Center, lipgloss.Center, empty)
	}

	cols := columnsFor(m.width)
	var rows []string
	for start := 0; start < len(m.deadlines); start += cols {
		end := start + cols
		if end > len(m.deadlines) {
			end = len(m.deadlines)
		}
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, m.renderCard(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderCard(i int) string {
	d := m.deadlines[i]
	state := m.states[i]

	top, bottom := present.FormatCountdown(state.TimeLeft)
	countdownLine := CountdownStyle.Render(fmt.Sprintf("%s %s", top, bottom))
	if state.TimeLeft.Overdue {
		countdownLine = OverdueStyle.Render(top)
	}

	ring := m.bars[state.Tier].ViewAs(state.RemainingPercent / 100)
	percent := lipgloss.NewStyle().Foreground(TierColor(state.Tier)).
		Render(fmt.Sprintf("%3.0f%% left · %s", state.RemainingPercent, state.Tier))

	content := lipgloss.JoinVertical(lipgloss.Left,
		NameStyle.Render(present.Truncate(present.SingleLine(d.Name), cardInner-5)),
		countdownLine,
		ring,
		percent,
		HelpStyle.Render(present.Truncate(present.SingleLine(d.Task), m.truncateLen)),
		HelpStyle.Render(present.FormatCardDate(d.DueDate, m.loc)),
	)

	return cardStyle(state, i == m.cursor, m.pulseOn).Height(cardHeight - 2).Render(content)
}

func (m Model) renderStatusBar() string {
	help := "a:add  e:edit  d:del  m:menu  r:reload  ?:help  q:quit"
	if m.mode == ModeForm {
		help = "tab:next field  ctrl+s:save  esc:cancel"
	}
	if m.message != "" && m.mode == ModeNormal {
		help = m.message
	}

	// Full task text of the selected card
	detail := ""
	if d := m.currentDeadline(); d != nil && m.mode == ModeNormal {
		detail = lipgloss.NewStyle().Foreground(Text).Render(d.Name+": ") + HelpStyle.Render(d.Task)
		if left := m.states[m.cursor].TimeLeft; left.Overdue {
			detail += OverdueStyle.Render("  " + present.FormatOverdueBy(left))
		}
	}

	return StatusBarStyle.Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, detail, help))
}

func (m Model) renderForm() string {
	title := "Add New Deadline"
	action := "Add Deadline"
	if m.form.editing {
		title = "Edit Deadline"
		action = "Save Changes"
	}

	label := func(f formField, text string) string {
		if m.form.focus == f {
			return LabelFocusedStyle.Render(text)
		}
		return LabelStyle.Render(text)
	}

	button := ButtonDisabledStyle.Render(action)
	if m.form.draft().Valid(m.loc) {
		button = ButtonStyle.Render(action)
		if m.form.focus == fieldSave {
			button = ButtonFocusedStyle.Render(action)
		}
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += label(fieldName, "Name") + "\n" + m.form.name.View() + "\n\n"
	content += label(fieldTask, "Task / Description") + "\n" + m.form.task.View() + "\n\n"
	content += label(fieldDue, fmt.Sprintf("Due Date & Time (%s)", m.loc)) + "\n" + m.form.due.View() + "\n\n"
	content += button + "\n\n"
	content += HelpStyle.Render("tab:next  ctrl+s:save  esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderMenu() string {
	d := m.currentDeadline()
	if d == nil {
		return ""
	}

	content := lipgloss.NewStyle().Bold(true).Render(d.Name) + "\n\n"
	for i, item := range menuItems {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.menuCursor {
			cursor = "❯ "
			style = style.Bold(true).Foreground(Primary)
		}
		if item == "Delete" {
			style = style.Foreground(TierCritical)
		}
		content += style.Render(cursor+item) + "\n"
	}
	content += "\n" + HelpStyle.Render("enter:select  esc:close")

	return ModalStyle.Width(30).Render(content)
}

func (m Model) renderHelp(height int) string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  h/j/k/l  Move           │
│  arrows   Move           │
│                          │
│  Actions                 │
│  ───────                 │
│  a        Add deadline   │
│  e/Enter  Edit           │
│  d        Delete         │
│  m        Card menu      │
│  r        Reload         │
│                          │
│  Form                    │
│  ────                    │
│  Tab      Next field     │
│  Ctrl+S   Save           │
│  Esc      Cancel         │
│                          │
│  ?        Toggle help    │
│  q        Quit           │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, help)
}

// tierLegend summarizes the grid by tier
func tierLegend(states []countdown.State, deadlines []model.Deadline) string {
	counts := countdown.CountByTier(states)
	return fmt.Sprintf("%d deadlines · %d safe · %d warning · %d critical",
		len(deadlines), counts[countdown.Safe], counts[countdown.Warning], counts[countdown.Critical])
}
