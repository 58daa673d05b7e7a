package telegram

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitgenie/internal/chat"
	"fitgenie/internal/metrics"
	"fitgenie/internal/plan"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("No message was sent")
	}
	return f.sent[len(f.sent)-1]
}

type echoTransport struct{}

func (echoTransport) Send(_ context.Context, req chat.Request) (*chat.Response, error) {
	reply := "echo: " + req.Message
	return &chat.Response{
		Response: reply,
		History: append(req.History,
			chat.Turn{Role: chat.RoleUser, Content: req.Message},
			chat.Turn{Role: chat.RoleAssistant, Content: reply},
		),
	}, nil
}

func newTestBot(transport chat.Transport) (*Bot, *fakeSender) {
	out := &fakeSender{}
	manager := chat.NewManager(transport, nil, nil)
	bot := newBot(out, manager, plan.NewStaticSource(nil), metrics.NewStore(), 0, "", nil)
	return bot, out
}

func message(chatID, userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID, UserName: "tester"},
		Text: text,
	}
}

func TestChatMessageRepliesWithAssistantTurn(t *testing.T) {
	bot, out := newTestBot(echoTransport{})

	bot.processMessage(message(7, 1, "how much protein?"))

	reply := out.last(t)
	if reply.ChatID != 7 {
		t.Errorf("Reply went to chat %d, want 7", reply.ChatID)
	}
	if reply.Text != "echo: how much protein?" {
		t.Errorf("Unexpected reply text: %q", reply.Text)
	}
}

func TestSessionPersistsAcrossMessages(t *testing.T) {
	bot, _ := newTestBot(echoTransport{})

	bot.processMessage(message(7, 1, "first"))
	bot.processMessage(message(7, 1, "second"))

	history := bot.session(7).History()
	// Greeting + 2 user turns + 2 replies.
	if len(history) != 5 {
		t.Fatalf("Expected 5 history turns, got %d", len(history))
	}
	if history[1].Content != "first" || history[3].Content != "second" {
		t.Errorf("Turns out of order: %+v", history)
	}

	// A different chat gets a fresh session.
	if len(bot.session(8).History()) != 1 {
		t.Error("A new chat should start with just the greeting")
	}
}

func TestContextCommandsSwitchWithoutClearing(t *testing.T) {
	bot, out := newTestBot(echoTransport{})

	bot.processMessage(message(7, 1, "hello"))
	turns := len(bot.session(7).History())

	bot.processMessage(message(7, 1, "/workout"))
	if bot.session(7).Context() != chat.PlanTypeWorkout {
		t.Errorf("Expected workout context, got %q", bot.session(7).Context())
	}
	if len(bot.session(7).History()) != turns {
		t.Error("Switching context must keep the conversation history")
	}
	if !strings.Contains(out.last(t).Text, "workout") {
		t.Errorf("Expected a switch confirmation, got %q", out.last(t).Text)
	}

	bot.processMessage(message(7, 1, "/meal"))
	if bot.session(7).Context() != chat.PlanTypeMeal {
		t.Errorf("Expected meal context, got %q", bot.session(7).Context())
	}
}

func TestPlanCommandFormatsActiveContext(t *testing.T) {
	bot, out := newTestBot(echoTransport{})

	bot.processMessage(message(7, 1, "/plan"))
	if !strings.Contains(out.last(t).Text, "Weekly Meal Plan") {
		t.Errorf("Expected the meal plan by default, got %q", out.last(t).Text)
	}

	bot.processMessage(message(7, 1, "/workout"))
	bot.processMessage(message(7, 1, "/plan"))
	if !strings.Contains(out.last(t).Text, "Weekly Workout Plan") {
		t.Errorf("Expected the workout plan after /workout, got %q", out.last(t).Text)
	}
}

func TestMetricsCommand(t *testing.T) {
	bot, out := newTestBot(echoTransport{})

	bot.processMessage(message(7, 1, "hello"))
	bot.processMessage(message(7, 1, "/metrics"))

	text := out.last(t).Text
	if !strings.Contains(text, "Usage & Health Report") {
		t.Errorf("Unexpected metrics report: %q", text)
	}
	if !strings.Contains(text, "Goroutines") {
		t.Error("Report should include system health")
	}
}

func TestAllowList(t *testing.T) {
	out := &fakeSender{}
	manager := chat.NewManager(echoTransport{}, nil, nil)
	bot := newBot(out, manager, plan.NewStaticSource(nil), metrics.NewStore(), 42, "", nil)

	if bot.allowed(message(7, 99, "hi")) {
		t.Error("User 99 should be rejected when only 42 is allowed")
	}
	if !bot.allowed(message(7, 42, "hi")) {
		t.Error("User 42 should be allowed")
	}
}

func TestMealPlanFormatting(t *testing.T) {
	week, err := plan.NewStaticSource(nil).MealPlan(context.Background())
	if err != nil {
		t.Fatalf("Loading bundled plan: %v", err)
	}

	text := formatMealPlan(week)
	if !strings.Contains(text, "kcal") {
		t.Error("Formatted plan should include calories")
	}
	if strings.Count(text, "*") < 7 {
		t.Error("Each day should get a bold header")
	}
}
