package service

import (
	"cmp"
	"math"
	"slices"

	"movie-discovery-picker/internal/models"
)

const quizTopN = 15

// Score sets the heuristic match and vibe scores of c for the requested genres.
func Score(c *models.Candidate, requestedGenres []int) {
	var score float64

	if len(requestedGenres) > 0 {
		matched := 0
		for _, g := range requestedGenres {
			if slices.Contains(c.GenreIDs, g) {
				matched++
			}
		}
		score += float64(matched) / float64(len(requestedGenres)) * 30
	}

	switch c.Strategy {
	case models.StrategySeed:
		score += 40
	case models.StrategyUnderrated:
		score += 20
	}

	score += math.Min(c.VoteAverage*1.5+c.Popularity/1000, 20)

	c.MatchScore = score
	c.VibeScore = int(math.Round(math.Min(score+40, 98)))
}

// Rank scores every candidate and sorts by match score, highest first. Ties
// keep merge order.
func Rank(candidates []models.Candidate, requestedGenres []int) []models.Candidate {
	for i := range candidates {
		Score(&candidates[i], requestedGenres)
	}
	slices.SortStableFunc(candidates, func(a, b models.Candidate) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})
	return candidates
}
