package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fitgenie/internal/logger"
)

// Shape classifies the structure of a raw plan payload. The service has
// shipped three layouts over time: a bare array of days, an object wrapping
// that array under a "days" key, and a legacy map keyed by day label.
type Shape int

const (
	ShapeUnrecognized Shape = iota
	ShapeArray
	ShapeWrapped
	ShapeBucketed
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeWrapped:
		return "wrapped"
	case ShapeBucketed:
		return "bucketed"
	default:
		return "unrecognized"
	}
}

// FormatError reports that a raw payload matched none of the recognized
// shapes. It is logged as a diagnostic, never returned across the package
// boundary: callers always get a usable (possibly empty) plan.
type FormatError struct {
	PlanType string
	Got      Shape
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s plan: unrecognized input shape (%s)", e.PlanType, e.Got)
}

// DetectShape classifies a raw payload. Exhaustive over the three layouts
// the service has produced; anything else is ShapeUnrecognized.
func DetectShape(raw any) Shape {
	return detect(canonicalize(raw))
}

func detect(c any) Shape {
	switch v := c.(type) {
	case []any:
		return ShapeArray
	case map[string]any:
		if _, ok := v["days"].([]any); ok {
			return ShapeWrapped
		}
		return ShapeBucketed
	default:
		return ShapeUnrecognized
	}
}

// Normalizer converts raw plan payloads into the canonical model. It never
// panics and never returns an error: malformed days degrade to well-defined
// defaults, and fully unrecognized input degrades to an empty plan with a
// logged diagnostic.
type Normalizer struct {
	log *logger.Logger
}

// NewNormalizer creates a Normalizer. A nil log disables diagnostics.
func NewNormalizer(log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}
	return &Normalizer{log: log}
}

// MealPlan normalizes a raw meal plan payload.
func (n *Normalizer) MealPlan(raw any) WeeklyMealPlan {
	c := canonicalize(raw)
	switch detect(c) {
	case ShapeArray:
		return n.mealDays("meal", c.([]any))
	case ShapeWrapped:
		return n.mealDays("meal (wrapped)", c.(map[string]any)["days"].([]any))
	case ShapeBucketed:
		return n.mealBuckets(c.(map[string]any))
	default:
		if c != nil {
			n.log.Warn("normalize: %v", &FormatError{PlanType: "meal", Got: ShapeUnrecognized})
		}
		return WeeklyMealPlan{}
	}
}

// mealDays handles the pass-through tiers: a sequence of day objects that
// already carry "meals" and "totals". No deeper validation is done.
func (n *Normalizer) mealDays(what string, seq []any) WeeklyMealPlan {
	for _, elem := range seq {
		day, ok := elem.(map[string]any)
		if !ok {
			n.log.Warn("normalize: %s plan: sequence element is not a day object", what)
			return WeeklyMealPlan{}
		}
		if _, ok := day["meals"]; !ok {
			n.log.Warn("normalize: %s plan: day object missing 'meals' key", what)
			return WeeklyMealPlan{}
		}
		if _, ok := day["totals"]; !ok {
			n.log.Warn("normalize: %s plan: day object missing 'totals' key", what)
			return WeeklyMealPlan{}
		}
	}
	var week WeeklyMealPlan
	if err := remarshal(seq, &week); err != nil {
		n.log.Warn("normalize: %s plan: decoding day sequence: %v", what, err)
		return WeeklyMealPlan{}
	}
	return week
}

// mealBuckets handles the legacy day-keyed map. A malformed or partial
// entry degrades to defaults for that day only; it never aborts the week.
func (n *Normalizer) mealBuckets(buckets map[string]any) WeeklyMealPlan {
	week := make(WeeklyMealPlan, 0, len(buckets))
	for _, key := range sortedDayKeys(buckets) {
		day := DailyMealPlan{Date: todayLabel()}
		entry, ok := buckets[key].(map[string]any)
		if !ok {
			n.log.Warn("normalize: meal plan: bucket %q is not a day object, using defaults", key)
			week = append(week, day)
			continue
		}
		if s, ok := entry["date"].(string); ok && s != "" {
			day.Date = s
		}
		if rawMeals, ok := entry["meals"]; ok {
			var meals DailyMeals
			if err := remarshal(rawMeals, &meals); err != nil {
				n.log.Warn("normalize: meal plan: bucket %q meals malformed, using defaults: %v", key, err)
			} else {
				day.Meals = meals
			}
		}
		if rawTotals, ok := entry["totals"]; ok {
			var totals Macros
			if err := remarshal(rawTotals, &totals); err != nil {
				n.log.Warn("normalize: meal plan: bucket %q totals malformed, using zeros: %v", key, err)
			} else {
				day.Totals = totals
			}
		}
		week = append(week, day)
	}
	return week
}

// WorkoutPlan normalizes a raw workout plan payload. Completed is always
// false afterwards; the source never carries completion state.
func (n *Normalizer) WorkoutPlan(raw any) WeeklyWorkoutPlan {
	c := canonicalize(raw)
	switch detect(c) {
	case ShapeArray:
		return n.workoutDays("workout", c.([]any))
	case ShapeWrapped:
		return n.workoutDays("workout (wrapped)", c.(map[string]any)["days"].([]any))
	case ShapeBucketed:
		return n.workoutBuckets(c.(map[string]any))
	default:
		if c != nil {
			n.log.Warn("normalize: %v", &FormatError{PlanType: "workout", Got: ShapeUnrecognized})
		}
		return WeeklyWorkoutPlan{}
	}
}

func (n *Normalizer) workoutDays(what string, seq []any) WeeklyWorkoutPlan {
	for _, elem := range seq {
		day, ok := elem.(map[string]any)
		if !ok {
			n.log.Warn("normalize: %s plan: sequence element is not a day object", what)
			return WeeklyWorkoutPlan{}
		}
		if _, ok := day["focus"]; !ok {
			n.log.Warn("normalize: %s plan: day object missing 'focus' key", what)
			return WeeklyWorkoutPlan{}
		}
		if _, ok := day["exercises"]; !ok {
			n.log.Warn("normalize: %s plan: day object missing 'exercises' key", what)
			return WeeklyWorkoutPlan{}
		}
	}
	var week WeeklyWorkoutPlan
	if err := remarshal(seq, &week); err != nil {
		n.log.Warn("normalize: %s plan: decoding day sequence: %v", what, err)
		return WeeklyWorkoutPlan{}
	}
	for i := range week {
		week[i].Completed = false
		if week[i].Exercises == nil {
			week[i].Exercises = []Exercise{}
		}
	}
	return week
}

// workoutBuckets maps the legacy day-keyed layout: entry "type" becomes
// Focus (defaulting to "Unknown"), entry "workout" becomes Exercises.
func (n *Normalizer) workoutBuckets(buckets map[string]any) WeeklyWorkoutPlan {
	week := make(WeeklyWorkoutPlan, 0, len(buckets))
	for _, key := range sortedDayKeys(buckets) {
		day := WorkoutDay{Day: key, Focus: "Unknown", Exercises: []Exercise{}}
		entry, ok := buckets[key].(map[string]any)
		if !ok {
			n.log.Warn("normalize: workout plan: bucket %q is not a day object, using defaults", key)
			week = append(week, day)
			continue
		}
		if s, ok := entry["type"].(string); ok && s != "" {
			day.Focus = s
		}
		if rawExercises, ok := entry["workout"]; ok {
			var exercises []Exercise
			if err := remarshal(rawExercises, &exercises); err != nil {
				n.log.Warn("normalize: workout plan: bucket %q workout malformed, using empty list: %v", key, err)
			} else if exercises != nil {
				day.Exercises = exercises
			}
		}
		week = append(week, day)
	}
	return week
}

// canonicalize reduces any input (typed structs, json.RawMessage, or an
// already-decoded any tree) to plain maps/slices/scalars so the shape
// dispatch sees one representation. Unmarshalable input maps to nil.
func canonicalize(raw any) any {
	switch raw.(type) {
	case nil:
		return nil
	case []any, map[string]any:
		return raw
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var c any
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return c
}

func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// sortedDayKeys orders bucket keys so "Day 2" sorts before "Day 10".
// JSON object order is lost by Go's decoder, so calendar order has to be
// recovered from the labels themselves.
func sortedDayKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, ni, oki := splitTrailingNumber(keys[i])
		pj, nj, okj := splitTrailingNumber(keys[j])
		if oki && okj && pi == pj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func splitTrailingNumber(s string) (prefix string, num int, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return strings.TrimSpace(s[:i]), n, true
}

func todayLabel() string {
	return time.Now().Format("2006-01-02")
}
