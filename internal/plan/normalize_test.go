package plan

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustDecode(t *testing.T, data string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("Failed to decode test JSON: %v", err)
	}
	return raw
}

const mealDayOne = `{
	"date": "Day 1",
	"meals": {
		"breakfast": {
			"type": "Breakfast",
			"components": {
				"protein": {"item": "Greek Yogurt", "portion": "120g", "calories": 126.0},
				"carb": {"item": "Oats", "portion": "168g", "calories": 665.4},
				"fat": {"item": "Walnuts", "portion": "15g", "calories": 105.3}
			},
			"totals": {"protein_g": 42.2, "fat_g": 26.9, "carbs_g": 130.0, "calories": 896.7},
			"tags": ["sweet", "high protein"]
		},
		"lunch": null,
		"dinner": null
	},
	"totals": {"protein_g": 42.2, "fat_g": 26.9, "carbs_g": 130.0, "calories": 896.7}
}`

const mealDayTwo = `{
	"date": "Day 2",
	"meals": {
		"breakfast": null,
		"lunch": {
			"type": "Lunch",
			"components": {
				"protein": {"item": "Chicken Thigh", "portion": "250g", "calories": 362.5},
				"carb": {"item": "White Rice", "portion": "150g", "calories": 522.0},
				"fat": {"item": "Sunflower Oil", "portion": "30g", "calories": 273.6},
				"vegetables": [{"item": "Tomato", "portion": "50g", "calories": 10.5}]
			},
			"totals": {"protein_g": 58.0, "fat_g": 51.9, "carbs_g": 120.0, "calories": 1168.6},
			"tags": ["high protein"]
		},
		"dinner": null
	},
	"totals": {"protein_g": 58.0, "fat_g": 51.9, "carbs_g": 120.0, "calories": 1168.6}
}`

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Shape
	}{
		{"Array", mustDecode(t, `[`+mealDayOne+`]`), ShapeArray},
		{"EmptyArray", mustDecode(t, `[]`), ShapeArray},
		{"Wrapped", mustDecode(t, `{"days": [`+mealDayOne+`]}`), ShapeWrapped},
		{"Bucketed", mustDecode(t, `{"Day 1": `+mealDayOne+`}`), ShapeBucketed},
		{"EmptyObject", mustDecode(t, `{}`), ShapeBucketed},
		{"DaysKeyNotASequence", mustDecode(t, `{"days": "monday"}`), ShapeBucketed},
		{"String", "not a plan", ShapeUnrecognized},
		{"Number", 42.0, ShapeUnrecognized},
		{"Nil", nil, ShapeUnrecognized},
		{"TypedPlan", WeeklyMealPlan{{Date: "Day 1"}}, ShapeArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectShape(tt.raw); got != tt.want {
				t.Errorf("DetectShape() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalizeMealPlanShapeInvariance(t *testing.T) {
	n := NewNormalizer(nil)

	array := n.MealPlan(mustDecode(t, `[`+mealDayOne+`,`+mealDayTwo+`]`))
	wrapped := n.MealPlan(mustDecode(t, `{"days": [`+mealDayOne+`,`+mealDayTwo+`]}`))
	bucketed := n.MealPlan(mustDecode(t, `{"Day 1": `+mealDayOne+`, "Day 2": `+mealDayTwo+`}`))

	if len(array) != 2 {
		t.Fatalf("Expected 2 days from array shape, got %d", len(array))
	}
	if !reflect.DeepEqual(array, wrapped) {
		t.Errorf("Array and wrapped shapes produced different plans:\n%+v\n%+v", array, wrapped)
	}
	if !reflect.DeepEqual(array, bucketed) {
		t.Errorf("Array and bucketed shapes produced different plans:\n%+v\n%+v", array, bucketed)
	}

	if array[0].Date != "Day 1" || array[1].Date != "Day 2" {
		t.Errorf("Day order not preserved: got %q, %q", array[0].Date, array[1].Date)
	}
	if array[0].Meals.Breakfast == nil {
		t.Fatal("Day 1 breakfast missing after normalization")
	}
	if array[0].Meals.Breakfast.Components.Protein.Item != "Greek Yogurt" {
		t.Errorf("Unexpected breakfast protein: %q", array[0].Meals.Breakfast.Components.Protein.Item)
	}
}

func TestNormalizeMealPlanBucketDegradation(t *testing.T) {
	n := NewNormalizer(nil)

	// Day 2 has no meals key and Day 3 is not even an object. Both must
	// degrade to defaults without shortening the week.
	raw := mustDecode(t, `{
		"Day 1": `+mealDayOne+`,
		"Day 2": {"date": "Day 2", "totals": {"protein_g": 10, "fat_g": 5, "carbs_g": 20, "calories": 200}},
		"Day 3": "oops"
	}`)

	week := n.MealPlan(raw)
	if len(week) != 3 {
		t.Fatalf("Expected 3 days, got %d", len(week))
	}

	if week[0].Meals.Breakfast == nil {
		t.Error("Day 1 should keep its breakfast")
	}

	day2 := week[1]
	if day2.Meals.Breakfast != nil || day2.Meals.Lunch != nil || day2.Meals.Dinner != nil {
		t.Error("Day 2 should default to empty meals")
	}
	if day2.Totals.Calories != 200 {
		t.Errorf("Day 2 totals should be copied through, got %+v", day2.Totals)
	}
	if day2.Date != "Day 2" {
		t.Errorf("Day 2 date should be copied through, got %q", day2.Date)
	}

	day3 := week[2]
	if day3.Date == "" {
		t.Error("Day 3 date should be filled with a placeholder, not left empty")
	}
	if day3.Totals != (Macros{}) {
		t.Errorf("Day 3 totals should be all-zero, got %+v", day3.Totals)
	}
}

func TestNormalizeMealPlanEmptyAndUnrecognized(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name string
		raw  any
	}{
		{"Nil", nil},
		{"EmptyObject", mustDecode(t, `{}`)},
		{"EmptyArray", mustDecode(t, `[]`)},
		{"String", "hello"},
		{"ArrayOfScalars", mustDecode(t, `[1, 2, 3]`)},
		{"ArrayMissingKeys", mustDecode(t, `[{"date": "Day 1"}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := n.MealPlan(tt.raw)
			if week == nil {
				t.Fatal("Expected an empty plan, got nil")
			}
			if len(week) != 0 {
				t.Errorf("Expected an empty plan, got %d days", len(week))
			}
		})
	}
}

const workoutDayOne = `{
	"day": "Day 1",
	"focus": "Upper Body",
	"exercises": [
		{"name": "Bench Press", "sets": 3, "reps": 10, "rest": "90 seconds", "equipment": "barbell", "instructions": "Press the bar."},
		{"name": "Pull-ups", "sets": 3, "reps": 8, "rest": "90 seconds", "equipment": "bodyweight", "instructions": "Pull up to the bar."}
	]
}`

func TestNormalizeWorkoutPlanShapeInvariance(t *testing.T) {
	n := NewNormalizer(nil)

	array := n.WorkoutPlan(mustDecode(t, `[`+workoutDayOne+`]`))
	wrapped := n.WorkoutPlan(mustDecode(t, `{"days": [`+workoutDayOne+`]}`))
	bucketed := n.WorkoutPlan(mustDecode(t, `{
		"Day 1": {"type": "Upper Body", "workout": [
			{"name": "Bench Press", "sets": 3, "reps": 10, "rest": "90 seconds", "equipment": "barbell", "instructions": "Press the bar."},
			{"name": "Pull-ups", "sets": 3, "reps": 8, "rest": "90 seconds", "equipment": "bodyweight", "instructions": "Pull up to the bar."}
		]}
	}`))

	if len(array) != 1 {
		t.Fatalf("Expected 1 day from array shape, got %d", len(array))
	}
	if !reflect.DeepEqual(array, wrapped) {
		t.Errorf("Array and wrapped shapes produced different plans:\n%+v\n%+v", array, wrapped)
	}
	if !reflect.DeepEqual(array, bucketed) {
		t.Errorf("Array and bucketed shapes produced different plans:\n%+v\n%+v", array, bucketed)
	}
	if array[0].Focus != "Upper Body" {
		t.Errorf("Expected focus 'Upper Body', got %q", array[0].Focus)
	}
	if len(array[0].Exercises) != 2 {
		t.Errorf("Expected 2 exercises, got %d", len(array[0].Exercises))
	}
}

func TestNormalizeWorkoutPlanCompletedAlwaysFalse(t *testing.T) {
	n := NewNormalizer(nil)

	// The source never carries completion state; a completed-like field
	// must be discarded on every tier.
	array := n.WorkoutPlan(mustDecode(t, `[{"day": "Day 1", "focus": "Legs", "exercises": [], "completed": true}]`))
	if len(array) != 1 || array[0].Completed {
		t.Error("Array shape: completed must be false after normalization")
	}

	bucketed := n.WorkoutPlan(mustDecode(t, `{"Day 1": {"type": "Legs", "workout": [], "completed": true}}`))
	if len(bucketed) != 1 || bucketed[0].Completed {
		t.Error("Bucketed shape: completed must be false after normalization")
	}
}

func TestNormalizeWorkoutPlanBucketDefaults(t *testing.T) {
	n := NewNormalizer(nil)

	week := n.WorkoutPlan(mustDecode(t, `{"Day 1": {}}`))
	if len(week) != 1 {
		t.Fatalf("Expected 1 day, got %d", len(week))
	}
	day := week[0]
	if day.Day != "Day 1" {
		t.Errorf("Expected day label 'Day 1', got %q", day.Day)
	}
	if day.Focus != "Unknown" {
		t.Errorf("Expected focus 'Unknown', got %q", day.Focus)
	}
	if day.Exercises == nil || len(day.Exercises) != 0 {
		t.Errorf("Expected empty (non-nil) exercises, got %#v", day.Exercises)
	}
	if day.Completed {
		t.Error("Expected completed to default to false")
	}
}

func TestNormalizeWorkoutPlanBucketOrder(t *testing.T) {
	n := NewNormalizer(nil)

	// Labels with two-digit numbers must not sort lexicographically.
	week := n.WorkoutPlan(mustDecode(t, `{
		"Day 10": {"type": "Cardio", "workout": []},
		"Day 2": {"type": "Legs", "workout": []},
		"Day 1": {"type": "Push", "workout": []}
	}`))
	if len(week) != 3 {
		t.Fatalf("Expected 3 days, got %d", len(week))
	}
	want := []string{"Day 1", "Day 2", "Day 10"}
	for i, label := range want {
		if week[i].Day != label {
			t.Errorf("Position %d: expected %q, got %q", i, label, week[i].Day)
		}
	}
}

func TestRestDay(t *testing.T) {
	tests := []struct {
		focus string
		want  bool
	}{
		{"Rest/Active Recovery", true},
		{"rest", true},
		{"Upper Body", false},
		{"Unknown", false},
	}
	for _, tt := range tests {
		day := WorkoutDay{Focus: tt.focus}
		if got := day.RestDay(); got != tt.want {
			t.Errorf("RestDay(%q) = %v, want %v", tt.focus, got, tt.want)
		}
	}
}
