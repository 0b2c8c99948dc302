package planner

import "mealprep/internal/nutrition"

// DayCheck is the result of comparing a day's meals with the daily targets.
type DayCheck struct {
	Recipes   []string
	Total     nutrition.Summary
	Target    nutrition.Summary
	Deviation nutrition.Summary
	OK        bool
}
