// Package plan holds the canonical in-memory model for weekly meal and
// workout plans, the normalizer that maps the service's various payload
// shapes onto it, and the source adapter that loads raw plan data.
package plan

import "strings"

// Macros holds the macro-nutrient totals for a meal or a day.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	Calories float64 `json:"calories"`
}

// Component is a single meal component (one food item and its portion).
type Component struct {
	Item     string  `json:"item"`
	Portion  string  `json:"portion"`
	Calories float64 `json:"calories"`
}

// Components groups the components of a meal by role.
type Components struct {
	Protein    Component   `json:"protein"`
	Carb       Component   `json:"carb"`
	Fat        Component   `json:"fat"`
	Vegetables []Component `json:"vegetables,omitempty"`
	Fruits     []Component `json:"fruits,omitempty"`
}

// Meal is one meal of a day.
type Meal struct {
	Type       string     `json:"type"`
	Components Components `json:"components"`
	Totals     Macros     `json:"totals"`
	Tags       []string   `json:"tags"`
}

// DailyMeals holds the three meals of a day. A nil entry means the source
// carried no data for that slot.
type DailyMeals struct {
	Breakfast *Meal `json:"breakfast"`
	Lunch     *Meal `json:"lunch"`
	Dinner    *Meal `json:"dinner"`
}

// DailyMealPlan is the plan for a single day. Index 0 of a WeeklyMealPlan
// is "today"; order is calendar order.
type DailyMealPlan struct {
	Date   string     `json:"date"`
	Meals  DailyMeals `json:"meals"`
	Totals Macros     `json:"totals"`
}

// WeeklyMealPlan is an ordered week of daily meal plans.
type WeeklyMealPlan []DailyMealPlan

// Exercise is a single exercise within a workout day.
type Exercise struct {
	Name         string `json:"name"`
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	Rest         string `json:"rest"`
	Equipment    string `json:"equipment"`
	Instructions string `json:"instructions"`
}

// WorkoutDay is one day of a workout plan. Completed is the only field
// mutated after normalization, and only by user interaction.
type WorkoutDay struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
	Completed bool       `json:"completed"`
}

// RestDay reports whether this day is a rest day.
func (d WorkoutDay) RestDay() bool {
	return strings.Contains(strings.ToLower(d.Focus), "rest")
}

// WeeklyWorkoutPlan is an ordered sequence of workout days. Unlike the meal
// plan it carries no fixed length; it is as long as the source says.
type WeeklyWorkoutPlan []WorkoutDay
