package finance

// Category is the qualitative band of a credit score.
type Category string

const (
	CategoryExcellent Category = "Excellent"
	CategoryGood      Category = "Good"
	CategoryFair      Category = "Fair"
	CategoryPoor      Category = "Poor"
)

// ScoreCategory is a score's band with a display color hint.
type ScoreCategory struct {
	Category    Category `json:"category"`
	Color       string   `json:"color"`
	Description string   `json:"description"`
}

// Categorize bands a score. Each band includes its lower bound, so 750 is
// Excellent, 650 Good and 550 Fair.
func Categorize(score int) ScoreCategory {
	switch {
	case score >= 750:
		return ScoreCategory{Category: CategoryExcellent, Color: "green", Description: "Great credit profile, easy loan approvals"}
	case score >= 650:
		return ScoreCategory{Category: CategoryGood, Color: "blue", Description: "Good credit standing, favorable terms"}
	case score >= 550:
		return ScoreCategory{Category: CategoryFair, Color: "yellow", Description: "Needs improvement, may face higher rates"}
	default:
		return ScoreCategory{Category: CategoryPoor, Color: "red", Description: "Difficult to get loans, work on improving"}
	}
}
