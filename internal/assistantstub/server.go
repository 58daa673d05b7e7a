// Package assistantstub is a local stand-in for the hosted assistant
// service. It speaks the same wire protocol with canned replies, so the
// clients can be developed and demoed without the real model behind them.
package assistantstub

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"fitgenie/internal/chat"
	"fitgenie/internal/logger"
	"fitgenie/internal/plan"
)

// The service keeps at most this many turns per reply, oldest first out.
const maxHistoryTurns = 20

// Server implements the assistant wire protocol.
type Server struct {
	log    *logger.Logger
	plans  *plan.StaticSource
	apiKey string
}

// NewServer creates a stub server. An empty apiKey disables auth checks.
func NewServer(apiKey string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}
	return &Server{
		log:    log,
		plans:  plan.NewStaticSource(log),
		apiKey: apiKey,
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/meal-plan", s.handleMealPlan)
	r.Get("/workout-plan", s.handleWorkoutPlan)

	r.Group(func(api chi.Router) {
		if s.apiKey != "" {
			api.Use(s.requireToken)
		}
		api.Post("/chat", s.handleChat)
	})

	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("stub: %s %s in %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

// requireToken verifies the short-lived bearer token the clients mint.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		_, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
			if tok.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(s.apiKey), nil
		}, jwt.WithAudience("fitgenie-assistant"), jwt.WithExpirationRequired())
		if err != nil {
			s.log.Warn("stub: rejected token: %v", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleMealPlan serves the bundled meal plan in the wrapped layout the
// hosted service uses.
func (s *Server) handleMealPlan(w http.ResponseWriter, r *http.Request) {
	week, err := s.plans.MealPlan(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"days": week})
}

// handleWorkoutPlan serves the bundled workout plan as a bare array,
// deliberately a different layout than the meal endpoint.
func (s *Server) handleWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	week, err := s.plans.WorkoutPlan(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, week)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	reply := cannedReply(req)

	history := append(req.History,
		chat.Turn{Role: chat.RoleUser, Content: req.Message},
		chat.Turn{Role: chat.RoleAssistant, Content: reply},
	)
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	writeJSON(w, chat.Response{
		Response: reply,
		Plan:     marshalRaw(req.Plan),
		History:  history,
	})
}

// cannedReply picks a deterministic reply so demos and tests are stable.
func cannedReply(req chat.Request) string {
	message := strings.ToLower(req.Message)
	switch {
	case strings.Contains(message, "protein"):
		return "Greek yogurt, lentils and chicken thigh are easy ways to raise your daily protein without blowing up calories."
	case strings.Contains(message, "rest"):
		return "Keep rest days light: a 30 minute walk and some stretching beat doing nothing at all."
	case req.PlanType == chat.PlanTypeWorkout:
		return fmt.Sprintf("Looking at your workout plan, \"%s\" is a fair question. Keep your form strict and add weight only when all sets feel controlled.", req.Message)
	default:
		return fmt.Sprintf("Looking at your meal plan, \"%s\" is a fair question. Keep your portions as listed and adjust one meal at a time.", req.Message)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func marshalRaw(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
