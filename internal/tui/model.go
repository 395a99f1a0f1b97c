package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/present"
	"github.com/existflow/deadlines/internal/store"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeForm
	ModeMenu
	ModeHelp
)

// menuItems are the entries of the per-card overflow menu
var menuItems = []string{"Edit", "Delete"}

// Options configures a Model
type Options struct {
	Store          *store.Store
	Clock          clock.Clock
	Location       *time.Location
	TruncateLength int
	Logger         *logger.Logger
}

// Model is the main TUI model
type Model struct {
	store       *store.Store
	clock       clock.Clock
	loc         *time.Location
	truncateLen int
	log         *logger.Logger

	deadlines []model.Deadline
	states    []countdown.State
	now       time.Time
	pulseOn   bool

	bars map[countdown.Tier]progress.Model

	// UI state
	width      int
	height     int
	mode       Mode
	cursor     int
	menuCursor int

	form formModel

	message string
}

// NewModel creates a new TUI model over an already loaded store
func NewModel(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.System
	}
	if opts.Location == nil {
		opts.Location, _ = present.LoadLocation(present.DefaultTimezone)
	}
	if opts.TruncateLength <= 0 {
		opts.TruncateLength = present.DefaultTruncate
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}

	m := Model{
		store:       opts.Store,
		clock:       opts.Clock,
		loc:         opts.Location,
		truncateLen: opts.TruncateLength,
		log:         opts.Logger.WithFields(logger.F("component", "tui")),
		mode:        ModeNormal,
		form:        newForm(),
		bars:        newBars(),
	}

	m.loadData()
	m.log.Debug("TUI model initialized", logger.F("deadlines", len(m.deadlines)))
	return m
}

func newBars() map[countdown.Tier]progress.Model {
	bars := make(map[countdown.Tier]progress.Model, 3)
	for _, tier := range []countdown.Tier{countdown.Safe, countdown.Warning, countdown.Critical} {
		bars[tier] = progress.New(
			progress.WithSolidFill(string(TierColor(tier))),
			progress.WithoutPercentage(),
			progress.WithWidth(cardInner-2),
		)
	}
	return bars
}

// loadData copies the store's collection and recomputes derived state
func (m *Model) loadData() {
	m.deadlines = m.store.List()
	m.cursor = clamp(m.cursor, len(m.deadlines))
	m.recompute(m.clock.Now())
}

// recompute derives every card from the single instant now
func (m *Model) recompute(now time.Time) {
	m.now = now
	m.states = countdown.DeriveAll(m.deadlines, now)
}

func (m *Model) currentDeadline() *model.Deadline {
	if m.cursor < len(m.deadlines) {
		return &m.deadlines[m.cursor]
	}
	return nil
}
