package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"fitgenie/internal/chat"
	"fitgenie/internal/plan"
	"fitgenie/internal/profile"
)

type stubTransport struct{}

func (stubTransport) Send(_ context.Context, req chat.Request) (*chat.Response, error) {
	return &chat.Response{
		Response: "ok",
		History:  append(req.History, chat.Turn{Role: chat.RoleUser, Content: req.Message}, chat.Turn{Role: chat.RoleAssistant, Content: "ok"}),
	}, nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	manager := chat.NewManager(stubTransport{}, nil, nil)
	return New(manager, plan.NewStaticSource(nil), profile.Default(), nil)
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned unexpected model type %T", updated)
	}
	return next
}

func TestContextToggleKeepsConversation(t *testing.T) {
	m := newTestModel(t)
	if m.session.Context() != chat.PlanTypeMeal {
		t.Fatalf("New model should start in the meal context, got %q", m.session.Context())
	}
	before := len(m.session.History())

	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.session.Context() != chat.PlanTypeWorkout {
		t.Errorf("Tab should switch to the workout context, got %q", m.session.Context())
	}
	if len(m.session.History()) != before {
		t.Error("Switching context must not touch the conversation history")
	}

	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.session.Context() != chat.PlanTypeMeal {
		t.Errorf("Second tab should switch back to meals, got %q", m.session.Context())
	}
}

func TestPlansMsgPopulatesBothPlans(t *testing.T) {
	m := newTestModel(t)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	msg := m.loadPlansCmd()()
	loaded, ok := msg.(plansMsg)
	if !ok {
		t.Fatalf("loadPlansCmd returned %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("Loading bundled plans failed: %v", loaded.err)
	}

	m = applyMsg(t, m, loaded)
	if len(m.meals) != 7 || len(m.workouts) != 7 {
		t.Errorf("Expected 7 days in each plan, got %d meals / %d workouts", len(m.meals), len(m.workouts))
	}
	if !strings.Contains(m.View(), "Day 1") {
		t.Error("View should show day tabs once plans are loaded")
	}
}

func TestDayTabsWrapAround(t *testing.T) {
	m := newTestModel(t)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = applyMsg(t, m, m.loadPlansCmd()().(plansMsg))

	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	if m.day != 6 {
		t.Errorf("Stepping left from day 0 should wrap to day 6, got %d", m.day)
	}
	m = applyMsg(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})
	if m.day != 0 {
		t.Errorf("Stepping right should wrap back to day 0, got %d", m.day)
	}
}

func TestTurnDoneClearsWaiting(t *testing.T) {
	m := newTestModel(t)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m.waiting = true

	m = applyMsg(t, m, turnDoneMsg{})
	if m.waiting {
		t.Error("turnDoneMsg should clear the waiting flag")
	}
}

func TestChatContentShowsGreeting(t *testing.T) {
	m := newTestModel(t)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if !strings.Contains(m.chatContent(), "meal assistant") {
		t.Error("Chat content should include the seeded greeting")
	}
}
