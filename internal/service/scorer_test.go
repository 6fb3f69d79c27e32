package service

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-discovery-picker/internal/models"
)

func TestScoreComponents(t *testing.T) {
	tests := []struct {
		name      string
		candidate models.Candidate
		requested []int
		wantMatch float64
		wantVibe  int
	}{
		{
			name:      "seed with half genre overlap",
			candidate: models.Candidate{GenreIDs: []int{28, 12}, Strategy: models.StrategySeed, VoteAverage: 8, Popularity: 2000},
			requested: []int{28, 878},
			wantMatch: 15 + 40 + 14,
			wantVibe:  98,
		},
		{
			name:      "underrated without requested genres",
			candidate: models.Candidate{Strategy: models.StrategyUnderrated, VoteAverage: 4, Popularity: 500},
			wantMatch: 20 + 6.5,
			wantVibe:  67,
		},
		{
			name:      "quality is capped at 20",
			candidate: models.Candidate{Strategy: models.StrategyTrending, VoteAverage: 10, Popularity: 50000},
			requested: []int{35},
			wantMatch: 20,
			wantVibe:  60,
		},
		{
			name:      "full genre overlap from discover",
			candidate: models.Candidate{GenreIDs: []int{878, 28}, Strategy: models.StrategyDiscover},
			requested: []int{28, 878},
			wantMatch: 30,
			wantVibe:  70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.candidate
			Score(&c, tt.requested)
			assert.InDelta(t, tt.wantMatch, c.MatchScore, 1e-9)
			assert.Equal(t, tt.wantVibe, c.VibeScore)
		})
	}
}

func randomCandidate(rng *rand.Rand, id int) models.Candidate {
	strategies := []models.Strategy{models.StrategySeed, models.StrategyDiscover, models.StrategyUnderrated, models.StrategyTrending, models.StrategySearch}
	genres := []int{28, 12, 16, 35, 80, 18, 878}
	var ids []int
	for _, g := range genres {
		if rng.IntN(3) == 0 {
			ids = append(ids, g)
		}
	}
	return models.Candidate{
		ID:          id,
		GenreIDs:    ids,
		Strategy:    strategies[rng.IntN(len(strategies))],
		VoteAverage: rng.Float64() * 10,
		Popularity:  rng.Float64() * 5000,
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		c := randomCandidate(rng, i)
		a, b := c, c
		Score(&a, []int{28, 35})
		Score(&b, []int{28, 35})
		assert.Equal(t, a.MatchScore, b.MatchScore)
		assert.Equal(t, a.VibeScore, b.VibeScore)
	}
}

func TestVibeScoreBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		c := randomCandidate(rng, i)
		Score(&c, []int{28, 878, 18})
		require.GreaterOrEqual(t, c.MatchScore, 0.0)
		assert.GreaterOrEqual(t, c.VibeScore, 40)
		assert.LessOrEqual(t, c.VibeScore, 98)
	}
}

func TestRankTopNSortedNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	candidates := make([]models.Candidate, 60)
	for i := range candidates {
		candidates[i] = randomCandidate(rng, i)
	}

	top := truncate(Rank(candidates, []int{28, 878}), quizTopN)
	require.Len(t, top, quizTopN)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].MatchScore, top[i].MatchScore)
	}
}

func TestRankKeepsMergeOrderOnTies(t *testing.T) {
	candidates := []models.Candidate{
		{ID: 1, Strategy: models.StrategyTrending},
		{ID: 2, Strategy: models.StrategyTrending},
		{ID: 3, Strategy: models.StrategySeed},
	}
	got := Rank(candidates, nil)
	assert.Equal(t, []int{3, 1, 2}, []int{got[0].ID, got[1].ID, got[2].ID})
}
