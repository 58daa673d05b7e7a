// Package tui provides the terminal client using Bubble Tea.
//
// The screen is split into a header with day tabs, a plan pane for the
// selected day, a scrollable chat viewport and an input prompt. One
// session lives for the whole program run; switching between the meal
// and workout context keeps the conversation going.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fitgenie/internal/chat"
	"fitgenie/internal/logger"
	"fitgenie/internal/plan"
	"fitgenie/internal/profile"
)

const (
	planLoadTimeout = 10 * time.Second
	turnTimeout     = time.Minute
)

// Model is the root Bubble Tea model for the chat client.
type Model struct {
	log     *logger.Logger
	manager *chat.Manager
	session *chat.Session
	source  plan.Source
	user    profile.UserProfile

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	meals    plan.WeeklyMealPlan
	workouts plan.WeeklyWorkoutPlan
	loadErr  string
	day      int
	waiting  bool
	notice   string
	width    int
	height   int
	ready    bool
}

// New creates the client model. Run it with tea.NewProgram.
func New(manager *chat.Manager, source plan.Source, user profile.UserProfile, log *logger.Logger) Model {
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}

	ti := textinput.New()
	ti.Prompt = "you> "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return Model{
		log:     log,
		manager: manager,
		source:  source,
		user:    user,
		session: chat.NewSession(newSessionID(), chat.PlanTypeMeal, chat.MealGreeting),
		input:   ti,
		spin:    sp,
	}
}

func newSessionID() string {
	return fmt.Sprintf("tui-%d", time.Now().UnixNano())
}

// Messages.
type plansMsg struct {
	meals    plan.WeeklyMealPlan
	workouts plan.WeeklyWorkoutPlan
	err      error
}

type turnDoneMsg struct {
	err error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadPlansCmd())
}

// loadPlansCmd fetches both plans up front; the context toggle then
// switches instantly.
func (m Model) loadPlansCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), planLoadTimeout)
		defer cancel()

		meals, err := source.MealPlan(ctx)
		if err != nil {
			return plansMsg{err: err}
		}
		workouts, err := source.WorkoutPlan(ctx)
		if err != nil {
			return plansMsg{err: err}
		}
		return plansMsg{meals: meals, workouts: workouts}
	}
}

func (m Model) sendCmd(message string) tea.Cmd {
	manager, session, user := m.manager, m.session, m.user
	planContext := m.activePlan()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		return turnDoneMsg{err: manager.SendTurn(ctx, session, message, user, planContext)}
	}
}

// activePlan returns the plan matching the session context, for the wire.
func (m Model) activePlan() any {
	if m.session.Context() == chat.PlanTypeWorkout {
		return m.workouts
	}
	return m.meals
}

func (m Model) planLen() int {
	if m.session.Context() == chat.PlanTypeWorkout {
		return len(m.workouts)
	}
	return len(m.meals)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.session.Abandon()
			return m, tea.Quit

		case "enter":
			if m.waiting {
				m.notice = "Still waiting for the assistant..."
				return m, nil
			}
			message := strings.TrimSpace(m.input.Value())
			if message == "" {
				return m, nil
			}
			m.input.Reset()
			m.notice = ""
			m.waiting = true
			m.refreshChat()
			return m, tea.Batch(m.sendCmd(message), m.spin.Tick)

		case "tab":
			if m.session.Context() == chat.PlanTypeMeal {
				m.session.SetContext(chat.PlanTypeWorkout)
			} else {
				m.session.SetContext(chat.PlanTypeMeal)
			}
			m.clampDay()
			m.resize()
			return m, nil

		case "shift+right":
			if n := m.planLen(); n > 0 {
				m.day = (m.day + 1) % n
			}
			m.resize()
			return m, nil

		case "shift+left":
			if n := m.planLen(); n > 0 {
				m.day = (m.day + n - 1) % n
			}
			m.resize()
			return m, nil

		case "ctrl+r":
			m.loadErr = ""
			m.notice = "Reloading plans..."
			return m, m.loadPlansCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case plansMsg:
		if msg.err != nil {
			m.log.Error("tui: plan load failed: %v", msg.err)
			m.loadErr = "Plans unavailable. Press ctrl+r to retry."
			m.notice = ""
			m.resize()
			return m, nil
		}
		m.meals = msg.meals
		m.workouts = msg.workouts
		m.loadErr = ""
		m.notice = ""
		m.clampDay()
		m.resize()
		return m, nil

	case turnDoneMsg:
		m.waiting = false
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		m.refreshChat()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) clampDay() {
	if n := m.planLen(); n == 0 {
		m.day = 0
	} else if m.day >= n {
		m.day = n - 1
	}
}

// resize recomputes the viewport box from the surrounding chrome and
// refreshes its content.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.planView()) + 2
	height := m.height - chrome
	if height < 3 {
		height = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
	m.input.Width = m.width - len(m.input.Prompt) - 1
	m.refreshChat()
	m.viewport.GotoBottom()
}

func (m *Model) refreshChat() {
	m.viewport.SetContent(m.chatContent())
}
