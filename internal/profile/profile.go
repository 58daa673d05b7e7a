// Package profile defines the user profile attached to assistant requests.
package profile

// UserProfile matches the trainer service's UserProfileIn schema.
type UserProfile struct {
	Age                int      `json:"age"`
	Gender             string   `json:"gender"`
	HeightCM           float64  `json:"height_cm"`
	WeightKG           float64  `json:"weight_kg"`
	Level              string   `json:"level"`          // e.g. "beginner", "intermediate", "advanced"
	ActivityLevel      string   `json:"activity_level"` // e.g. "sedentary", "moderately active"
	AvailableEquipment []string `json:"available_equipment"`
	DaysPerWeek        int      `json:"days_per_week"`
	Goal               string   `json:"goal"`    // e.g. "muscle gain", "fat loss"
	Subgoal            string   `json:"subgoal"` // e.g. "hypertrophy"
	MealFrequency      int      `json:"meal_frequency,omitempty"`
}

// Default returns the demo profile used when no profile service is wired.
func Default() UserProfile {
	return UserProfile{
		Age:                21,
		Gender:             "male",
		HeightCM:           172,
		WeightKG:           63,
		Level:              "intermediate",
		ActivityLevel:      "moderately active",
		AvailableEquipment: []string{"bodyweight", "dumbbell", "barbell"},
		DaysPerWeek:        3,
		Goal:               "muscle gain",
		Subgoal:            "hypertrophy",
		MealFrequency:      3,
	}
}
