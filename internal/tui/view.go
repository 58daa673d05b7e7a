package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fitgenie/internal/chat"
	"fitgenie/internal/markup"
	"fitgenie/internal/plan"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	planTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	planLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	planDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))
)

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.planView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	mealTab, workoutTab := tabActiveStyle, tabStyle
	if m.session.Context() == chat.PlanTypeWorkout {
		mealTab, workoutTab = tabStyle, tabActiveStyle
	}

	parts := []string{
		titleStyle.Render("FitGenie"),
		mealTab.Render("[ Meals ]"),
		workoutTab.Render("[ Workouts ]"),
	}

	if n := m.planLen(); n > 0 {
		tabs := make([]string, n)
		for i := 0; i < n; i++ {
			label := fmt.Sprintf("Day %d", i+1)
			if i == m.day {
				tabs[i] = tabActiveStyle.Render(label)
			} else {
				tabs[i] = tabStyle.Render(label)
			}
		}
		parts = append(parts, strings.Join(tabs, tabStyle.Render(" | ")))
	}

	return strings.Join(parts, "  ")
}

func (m Model) planView() string {
	if m.loadErr != "" {
		return noticeStyle.Render("  " + m.loadErr)
	}
	if m.session.Context() == chat.PlanTypeWorkout {
		return m.workoutDayView()
	}
	return m.mealDayView()
}

func (m Model) mealDayView() string {
	if len(m.meals) == 0 {
		return planDimStyle.Render("  No meal plan loaded yet.")
	}
	day := m.meals[m.day]

	var b strings.Builder
	b.WriteString(planTitleStyle.Render("  " + day.Date))
	b.WriteString("\n")
	for _, entry := range []struct {
		label string
		meal  *plan.Meal
	}{
		{"Breakfast", day.Meals.Breakfast},
		{"Lunch", day.Meals.Lunch},
		{"Dinner", day.Meals.Dinner},
	} {
		if entry.meal == nil {
			b.WriteString(planDimStyle.Render(fmt.Sprintf("  %-10s not planned", entry.label)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(planLineStyle.Render(fmt.Sprintf("  %-10s %s  (%.0f kcal)",
			entry.label, mealItems(entry.meal), entry.meal.Totals.Calories)))
		b.WriteString("\n")
	}
	b.WriteString(planDimStyle.Render(fmt.Sprintf("  Totals: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat",
		day.Totals.Calories, day.Totals.ProteinG, day.Totals.CarbsG, day.Totals.FatG)))
	return b.String()
}

func mealItems(meal *plan.Meal) string {
	items := []string{meal.Components.Protein.Item, meal.Components.Carb.Item, meal.Components.Fat.Item}
	for _, veg := range meal.Components.Vegetables {
		items = append(items, veg.Item)
	}
	for _, fruit := range meal.Components.Fruits {
		items = append(items, fruit.Item)
	}
	kept := items[:0]
	for _, item := range items {
		if item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ", ")
}

func (m Model) workoutDayView() string {
	if len(m.workouts) == 0 {
		return planDimStyle.Render("  No workout plan loaded yet.")
	}
	day := m.workouts[m.day]

	var b strings.Builder
	b.WriteString(planTitleStyle.Render(fmt.Sprintf("  %s: %s", day.Day, day.Focus)))
	b.WriteString("\n")
	if day.RestDay() {
		b.WriteString(planDimStyle.Render("  Recovery day. Keep it light."))
		return b.String()
	}
	for _, ex := range day.Exercises {
		b.WriteString(planLineStyle.Render(fmt.Sprintf("  %-22s %dx%d  %s", ex.Name, ex.Sets, ex.Reps, ex.Equipment)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// chatContent renders the session history for the viewport. Assistant
// replies are flattened so embedded markup reads cleanly.
func (m Model) chatContent() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, turn := range m.session.History() {
		if turn.Role == chat.RoleUser {
			b.WriteString(wrap.Render(userStyle.Render("you> ") + turn.Content))
		} else {
			b.WriteString(wrap.Render(assistantStyle.Render("genie> ") + markup.Flatten(turn.Content)))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) footerView() string {
	var status string
	switch {
	case m.waiting:
		status = m.spin.View() + spinnerStyle.Render(" thinking...")
	case m.notice != "":
		status = noticeStyle.Render(m.notice)
	default:
		status = helpStyle.Render("tab: context | shift+←/→: day | ctrl+r: reload | esc: quit")
	}
	return m.input.View() + "\n" + status
}
