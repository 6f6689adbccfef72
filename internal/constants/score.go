package constants

// Score weights in points. They must sum to 100.
const (
	NutritionPoints = 40
	ActivityPoints  = 15
	WorkoutPoints   = 30
	HydrationPoints = 15

	// Calories above CaloriePenaltyThreshold * goal cost CaloriePenaltyRate
	// points per whole goal of excess.
	CaloriePenaltyThreshold = 1.1
	CaloriePenaltyRate      = 25.0

	MaxScore = 100
)

// Default goals used when none are configured.
const (
	DefaultGoalCalories = 2000
	DefaultGoalProtein  = 120
	DefaultGoalCarbs    = 250
	DefaultGoalFat      = 60
	DefaultGoalActivity = 30
	DefaultGoalWater    = 8
)

func init() {
	if NutritionPoints+ActivityPoints+WorkoutPoints+HydrationPoints != MaxScore {
		panic("score weights must sum to MaxScore")
	}
}
