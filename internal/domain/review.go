package domain

import (
	"fmt"
	"strconv"
)

// ReviewSummary aggregates the ratings of a review list. Average is kept
// unrounded; only Display is rounded.
type ReviewSummary struct {
	Count   int
	Average float64
}

func Summarize(reviews []Review) ReviewSummary {
	if len(reviews) == 0 {
		return ReviewSummary{}
	}

	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}

	return ReviewSummary{
		Count:   len(reviews),
		Average: sum / float64(len(reviews)),
	}
}

// Display is the average with one decimal place, e.g. "4.0".
func (s ReviewSummary) Display() string {
	return fmt.Sprintf("%.1f", s.Average)
}

// StarWidth is the width of the filled star bar in percent.
func (s ReviewSummary) StarWidth() float64 {
	return StarWidth(s.Average)
}

// StarWidth converts a 0..5 rating into a 0..100 percentage.
func StarWidth(rating float64) float64 {
	return rating / 5 * 100
}

// FormatNumber prints a float the shortest way that round-trips, so 80 stays
// "80" and 86.666... keeps its digits.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
