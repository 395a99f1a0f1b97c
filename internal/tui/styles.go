package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/deadlines/internal/countdown"
)

// Color palette
var (
	// Tier colors
	TierSafe     = lipgloss.Color("#95E1A3") // Green
	TierWarning  = lipgloss.Color("#FFE66D") // Yellow
	TierCritical = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Card geometry
const (
	cardWidth  = 33 // outer width including border and margin
	cardInner  = 30 // includes padding, leaves room for a 25 rune task plus "..."
	cardHeight = 9
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Width(cardInner).
			Padding(0, 1).
			MarginRight(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	CardSelectedStyle = CardStyle.
				Border(lipgloss.ThickBorder()).
				BorderForeground(Primary)

	NameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	CountdownStyle = lipgloss.NewStyle().
			Foreground(Text)

	OverdueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TierCritical)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Form and menu dialogs
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	LabelFocusedStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(Text).
			Background(Secondary)

	ButtonFocusedStyle = ButtonStyle.
				Background(Primary).
				Bold(true)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(TextMuted).
				Faint(true)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// TierColor returns the ring color for a tier
func TierColor(t countdown.Tier) lipgloss.Color {
	switch t {
	case countdown.Safe:
		return TierSafe
	case countdown.Warning:
		return TierWarning
	default:
		return TierCritical
	}
}

// cardStyle picks the frame of a card; pulsing cards flash their tier color
func cardStyle(state countdown.State, selected, pulseOn bool) lipgloss.Style {
	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	if state.Pulse && pulseOn {
		style = style.BorderForeground(TierColor(state.Tier))
	}
	return style
}
