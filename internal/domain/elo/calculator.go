// Package elo implements the rating math for match settlement.
//
// All functions are pure: they neither read nor write persisted state,
// and none of them clamp results. Bounding the final rating is the
// caller's job via ClampRating.
package elo

import "math"

// Rating bounds and defaults shared by config validation and settlement.
const (
	MinRating            = 0.0
	MaxRating            = 10000.0
	DefaultInitialRating = 1000.0

	MinKFactor     = 0.0
	MaxKFactor     = 100.0
	DefaultKFactor = 24.0

	ratingScale = 400.0
)

// Actual score values for a pairwise comparison.
const (
	ScoreLoss = 0.0
	ScoreDraw = 0.5
	ScoreWin  = 1.0
)

// ExpectedScore returns the predicted win probability of a against b,
// derived from the rating difference. ExpectedScore(a,b) and
// ExpectedScore(b,a) always sum to 1.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/ratingScale))
}

// Delta returns the unbounded rating change for a party rated ratingA
// that scored actual against a party rated ratingB. actual is one of
// ScoreLoss, ScoreDraw, ScoreWin.
func Delta(ratingA, ratingB, actual, kFactor float64) float64 {
	return kFactor * (actual - ExpectedScore(ratingA, ratingB))
}

// AverageTeamRating returns the arithmetic mean of the members' ratings.
// Members missing from ratings count as defaultRating; an empty team
// rates defaultRating.
func AverageTeamRating(members []string, ratings map[string]float64, defaultRating float64) float64 {
	if len(members) == 0 {
		return defaultRating
	}
	var sum float64
	for _, id := range members {
		if r, ok := ratings[id]; ok {
			sum += r
		} else {
			sum += defaultRating
		}
	}
	return sum / float64(len(members))
}

// DistributeTeamDelta splits totalDelta into equal shares, one per
// member. An empty team yields an empty map, guarding the division.
func DistributeTeamDelta(members []string, totalDelta float64) map[string]float64 {
	shares := make(map[string]float64, len(members))
	if len(members) == 0 {
		return shares
	}
	perMember := totalDelta / float64(len(members))
	for _, id := range members {
		shares[id] = perMember
	}
	return shares
}

// ClampRating bounds a rating to [MinRating, MaxRating].
func ClampRating(rating float64) float64 {
	return math.Max(MinRating, math.Min(MaxRating, rating))
}
