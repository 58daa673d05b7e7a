package plan

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fitgenie/internal/logger"
)

//go:embed data/*.json
var fixturesFS embed.FS

// LoadError reports that fetching or parsing raw plan data failed. It is
// distinct from an empty plan: the UI shows a retry affordance for a
// LoadError and an empty state for an empty plan.
type LoadError struct {
	PlanType string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s plan: %v", e.PlanType, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source loads plans from a configured origin and normalizes them. A failed
// load never yields a partial plan: callers get the full plan or a *LoadError.
type Source interface {
	MealPlan(ctx context.Context) (WeeklyMealPlan, error)
	WorkoutPlan(ctx context.Context) (WeeklyWorkoutPlan, error)
}

// StaticSource serves the bundled fixture plans. The fixtures deliberately
// ship in two different layouts (array and day-keyed map), so the static
// path exercises the same normalization as the remote one.
type StaticSource struct {
	norm *Normalizer
}

// NewStaticSource creates a Source backed by the embedded fixtures.
func NewStaticSource(log *logger.Logger) *StaticSource {
	return &StaticSource{norm: NewNormalizer(log)}
}

// MealPlan returns the normalized bundled meal plan.
func (s *StaticSource) MealPlan(_ context.Context) (WeeklyMealPlan, error) {
	raw, err := s.readFixture("meal", "data/weekly_meal_plan.json")
	if err != nil {
		return nil, err
	}
	return s.norm.MealPlan(raw), nil
}

// WorkoutPlan returns the normalized bundled workout plan.
func (s *StaticSource) WorkoutPlan(_ context.Context) (WeeklyWorkoutPlan, error) {
	raw, err := s.readFixture("workout", "data/weekly_workout_plan.json")
	if err != nil {
		return nil, err
	}
	return s.norm.WorkoutPlan(raw), nil
}

func (s *StaticSource) readFixture(planType, name string) (any, error) {
	data, err := fixturesFS.ReadFile(name)
	if err != nil {
		return nil, &LoadError{PlanType: planType, Err: err}
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{PlanType: planType, Err: fmt.Errorf("invalid fixture JSON: %w", err)}
	}
	return raw, nil
}

// RemoteSource fetches plans from the trainer service over HTTP.
type RemoteSource struct {
	baseURL    string
	httpClient *http.Client
	norm       *Normalizer
}

// NewRemoteSource creates a Source that fetches plans from baseURL.
func NewRemoteSource(baseURL string, timeout time.Duration, log *logger.Logger) *RemoteSource {
	return &RemoteSource{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		norm:       NewNormalizer(log),
	}
}

// MealPlan fetches and normalizes the remote meal plan.
func (s *RemoteSource) MealPlan(ctx context.Context) (WeeklyMealPlan, error) {
	raw, err := s.fetch(ctx, "meal", s.baseURL+"/meal-plan")
	if err != nil {
		return nil, err
	}
	return s.norm.MealPlan(raw), nil
}

// WorkoutPlan fetches and normalizes the remote workout plan.
func (s *RemoteSource) WorkoutPlan(ctx context.Context) (WeeklyWorkoutPlan, error) {
	raw, err := s.fetch(ctx, "workout", s.baseURL+"/workout-plan")
	if err != nil {
		return nil, err
	}
	return s.norm.WorkoutPlan(raw), nil
}

func (s *RemoteSource) fetch(ctx context.Context, planType, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{PlanType: planType, Err: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &LoadError{PlanType: planType, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{PlanType: planType, Err: fmt.Errorf("plan api error: status %d", resp.StatusCode)}
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &LoadError{PlanType: planType, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return raw, nil
}
