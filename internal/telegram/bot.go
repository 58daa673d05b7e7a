// Package telegram exposes the FitGenie assistant through a Telegram bot.
// Each chat gets its own long-lived session, so the conversation context
// survives between messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitgenie/internal/chat"
	"fitgenie/internal/logger"
	"fitgenie/internal/markup"
	"fitgenie/internal/metrics"
	"fitgenie/internal/plan"
	"fitgenie/internal/profile"
)

const turnTimeout = time.Minute

// sender is the slice of the Telegram API the handlers need. The real
// *tgbotapi.BotAPI satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API, the chat manager and the plan source.
type Bot struct {
	api         *tgbotapi.BotAPI
	out         sender
	manager     *chat.Manager
	source      plan.Source
	store       *metrics.Store
	user        profile.UserProfile
	allowUserID int64
	logPath     string
	log         *logger.Logger

	mu       sync.Mutex
	sessions map[int64]*chat.Session
}

// NewBot initializes the Telegram bot over long polling. allowUserID
// restricts the bot to a single user; zero leaves it open.
func NewBot(token string, allowUserID int64, manager *chat.Manager, source plan.Source, store *metrics.Store, logPath string, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}
	log.Info("telegram: authorized on account %s", api.Self.UserName)

	b := newBot(api, manager, source, store, allowUserID, logPath, log)
	b.api = api
	return b, nil
}

func newBot(out sender, manager *chat.Manager, source plan.Source, store *metrics.Store, allowUserID int64, logPath string, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}
	return &Bot{
		out:         out,
		manager:     manager,
		source:      source,
		store:       store,
		user:        profile.Default(),
		allowUserID: allowUserID,
		logPath:     logPath,
		log:         log,
		sessions:    make(map[int64]*chat.Session),
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if !b.allowed(update.Message) {
				b.log.Warn("telegram: unauthorized access attempt from UserID %d (@%s)",
					update.Message.From.ID, update.Message.From.UserName)
				continue
			}
			go b.processMessage(update.Message)
		}
	}
}

func (b *Bot) allowed(msg *tgbotapi.Message) bool {
	return b.allowUserID == 0 || (msg.From != nil && msg.From.ID == b.allowUserID)
}

func (b *Bot) session(chatID int64) *chat.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = chat.NewSession(fmt.Sprintf("tg-%d", chatID), chat.PlanTypeMeal, chat.MealGreeting)
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch strings.TrimSpace(msg.Text) {
	case "/start":
		b.reply(msg.Chat.ID, "👋 *FitGenie*\n\nAsk me anything about your meal or workout plan.\n\n"+
			"/meal - talk about the meal plan\n"+
			"/workout - talk about the workout plan\n"+
			"/plan - show the current plan\n"+
			"/metrics - usage and health report")
	case "/meal":
		b.session(msg.Chat.ID).SetContext(chat.PlanTypeMeal)
		b.reply(msg.Chat.ID, "🥗 Switched to the *meal* context. The conversation continues.")
	case "/workout":
		b.session(msg.Chat.ID).SetContext(chat.PlanTypeWorkout)
		b.reply(msg.Chat.ID, "🏋️ Switched to the *workout* context. The conversation continues.")
	case "/plan":
		b.handlePlanCommand(msg.Chat.ID)
	case "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	default:
		b.handleChatMessage(msg)
	}
}

func (b *Bot) handleChatMessage(msg *tgbotapi.Message) {
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	s := b.session(msg.Chat.ID)

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	planContext, err := b.activePlan(ctx, s)
	if err != nil {
		b.log.Warn("telegram: plan load failed, sending turn without plan: %v", err)
	}

	if err := b.manager.SendTurn(ctx, s, msg.Text, b.user, planContext); err != nil {
		var stateErr *chat.ProtocolStateError
		if errors.As(err, &stateErr) {
			b.reply(msg.Chat.ID, "⏳ Still working on your previous message, one at a time please.")
			return
		}
		b.log.Error("telegram: send turn: %v", err)
		return
	}

	history := s.History()
	if len(history) == 0 {
		return
	}
	last := history[len(history)-1]
	if last.Role != chat.RoleAssistant {
		return
	}
	b.reply(msg.Chat.ID, markup.Flatten(last.Content))
}

func (b *Bot) activePlan(ctx context.Context, s *chat.Session) (any, error) {
	if s.Context() == chat.PlanTypeWorkout {
		return b.source.WorkoutPlan(ctx)
	}
	return b.source.MealPlan(ctx)
}

func (b *Bot) handlePlanCommand(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	s := b.session(chatID)
	if s.Context() == chat.PlanTypeWorkout {
		week, err := b.source.WorkoutPlan(ctx)
		if err != nil {
			b.reply(chatID, "❌ Couldn't load the workout plan. Try again later.")
			return
		}
		b.reply(chatID, formatWorkoutPlan(week))
		return
	}

	week, err := b.source.MealPlan(ctx)
	if err != nil {
		b.reply(chatID, "❌ Couldn't load the meal plan. Try again later.")
		return
	}
	b.reply(chatID, formatMealPlan(week))
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	sum := b.store.Summary()
	health := metrics.GetSysHealth(b.logPath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("💬 *Conversation*\n")
	if sum.Turns == 0 {
		sb.WriteString("_No turns yet_\n")
	} else {
		sb.WriteString(fmt.Sprintf("• Turns: %d (%d fallbacks)\n", sum.Turns, sum.Fallbacks))
		sb.WriteString(fmt.Sprintf("• Avg latency: %dms\n", sum.AvgLatencyMS))
		for planType, n := range sum.ByPlanType {
			sb.WriteString(fmt.Sprintf("• %s turns: %d\n", planType, n))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Log size: %s\n", health.LogFileSize))

	b.reply(chatID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("telegram: send message: %v", err)
	}
}

func formatMealPlan(week plan.WeeklyMealPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Weekly Meal Plan*\n\n")
	for _, day := range week {
		sb.WriteString(fmt.Sprintf("*%s* (%.0f kcal)\n", day.Date, day.Totals.Calories))
		for _, entry := range []struct {
			label string
			meal  *plan.Meal
		}{
			{"Breakfast", day.Meals.Breakfast},
			{"Lunch", day.Meals.Lunch},
			{"Dinner", day.Meals.Dinner},
		} {
			if entry.meal == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("• %s: %s (%.0f kcal)\n",
				entry.label, entry.meal.Components.Protein.Item, entry.meal.Totals.Calories))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatWorkoutPlan(week plan.WeeklyWorkoutPlan) string {
	var sb strings.Builder
	sb.WriteString("🏋️ *Weekly Workout Plan*\n\n")
	for _, day := range week {
		sb.WriteString(fmt.Sprintf("*%s*: %s\n", day.Day, day.Focus))
		if day.RestDay() {
			sb.WriteString("_Recovery day_\n\n")
			continue
		}
		for _, ex := range day.Exercises {
			sb.WriteString(fmt.Sprintf("• %s %dx%d\n", ex.Name, ex.Sets, ex.Reps))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
