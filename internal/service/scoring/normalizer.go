package scoring

import (
	"github.com/jwalitptl/oppe-api/internal/model"
)

// Outcome signals are a fixed ordinal mapping onto the 0-100 scale.
var outcomeSignals = map[model.CaseOutcome]float64{
	model.OutcomeExcellent:    100,
	model.OutcomeGood:         85,
	model.OutcomeAcceptable:   70,
	model.OutcomePoor:         40,
	model.OutcomeAdverseEvent: 10,
}

// NormalizeOutcome maps a case outcome onto [0,100]. The second return is
// false for an unrecognized outcome.
func NormalizeOutcome(outcome model.CaseOutcome) (float64, bool) {
	signal, ok := outcomeSignals[outcome]
	return signal, ok
}

// NormalizeRating rescales a 1-5 rating linearly onto [0,100].
func NormalizeRating(rating int) float64 {
	return float64(rating-1) / 4 * 100
}

// ReviewSignal is the review's contribution for one competency: the mean of
// the normalized sub-scores whose dimensions map to that competency, falling
// back to the overall rating when none of the mapped dimensions are present.
func ReviewSignal(review *model.Review, dimensions []model.ReviewDimension) float64 {
	var sum float64
	var n int
	for _, dim := range dimensions {
		if rating, ok := review.SubScore(dim); ok {
			sum += NormalizeRating(rating)
			n++
		}
	}
	if n == 0 {
		return NormalizeRating(review.Rating)
	}
	return sum / float64(n)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
