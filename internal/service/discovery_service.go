package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"movie-discovery-picker/internal/llm"
	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/tmdb"
)

const (
	maxCastMembers     = 10
	maxRecommendations = 12
)

// DiscoveryService runs the recommendation pipelines and catalog lookups.
type DiscoveryService struct {
	catalog  Catalog
	gatherer *Gatherer
	expander *IntentExpander
	reranker *Reranker
}

// Options tunes the gatherer.
type Options struct {
	NetworkID       int
	StrategyTimeout time.Duration
}

// NewDiscoveryService wires the pipeline. completer and store may be nil;
// without a completer the prompt flow is unavailable and the quiz flow
// returns heuristic rankings only.
func NewDiscoveryService(catalog Catalog, completer llm.Completer, store GenreStore, opts Options) *DiscoveryService {
	s := &DiscoveryService{
		catalog:  catalog,
		gatherer: NewGatherer(catalog, opts.NetworkID, opts.StrategyTimeout),
	}
	if completer != nil {
		s.expander = NewIntentExpander(completer, store)
		s.reranker = NewReranker(completer)
	}
	return s
}

// QuizRecommendations gathers, scores and re-ranks candidates for quiz answers.
func (s *DiscoveryService) QuizRecommendations(ctx context.Context, answers models.QuizAnswers) (*models.RecommendationResponse, error) {
	if err := answers.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	batches, statuses, gatherErr := s.gatherer.Quiz(ctx, answers)
	candidates := truncate(Rank(Merge(batches), answers.Genres), quizTopN)

	resp := &models.RecommendationResponse{Results: candidates, Strategies: statuses}
	if gatherErr != nil {
		resp.Warnings = append(resp.Warnings, gatherErr.Error())
	}

	s.rerankInto(ctx, resp, RerankContext{
		Genres:  answers.Genres,
		Era:     answers.Era,
		Mood:    answers.Mood,
		Runtime: answers.Runtime,
		Seed:    answers.SeedMovieID,
	})

	slog.Info("quiz recommendations", "results", len(resp.Results), "ai_ranked", resp.AIRanked)
	return resp, nil
}

// PromptRecommendations expands prompt into an intent, gathers candidates for
// it and re-ranks them.
func (s *DiscoveryService) PromptRecommendations(ctx context.Context, prompt string) (*models.RecommendationResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	}
	if len([]rune(prompt)) > maxPromptLength {
		return nil, fmt.Errorf("%w: prompt exceeds %d characters", ErrInvalidRequest, maxPromptLength)
	}
	if s.expander == nil {
		return nil, ErrLLMUnavailable
	}

	intent, err := s.expander.Expand(ctx, prompt)
	if err != nil {
		return nil, err
	}
	genreIDs := s.expander.GenreIDs(ctx, intent.GenreNames)

	batches, statuses, gatherErr := s.gatherer.Prompt(ctx, intent, genreIDs)
	candidates := truncate(FilterRelevant(Merge(batches), intent.Keywords), maxPromptCandidates)
	for i := range candidates {
		Score(&candidates[i], genreIDs)
	}

	resp := &models.RecommendationResponse{Results: candidates, Intent: intent, Strategies: statuses}
	if gatherErr != nil {
		resp.Warnings = append(resp.Warnings, gatherErr.Error())
	}

	s.rerankInto(ctx, resp, RerankContext{Prompt: prompt})

	slog.Info("prompt recommendations", "results", len(resp.Results), "ai_ranked", resp.AIRanked)
	return resp, nil
}

// rerankInto replaces resp.Results with the AI ordering when it succeeds.
// Otherwise the heuristic order and scores stay and each entry gets the
// generic reason.
func (s *DiscoveryService) rerankInto(ctx context.Context, resp *models.RecommendationResponse, rc RerankContext) {
	if len(resp.Results) == 0 {
		return
	}
	if s.reranker != nil {
		result := s.reranker.Rerank(ctx, resp.Results, rc)
		if result.Reranked {
			resp.Results = result.Candidates
			resp.AIRanked = true
			return
		}
		resp.Warnings = append(resp.Warnings, "AI re-rank unavailable: "+result.Err.Error())
	}
	for i := range resp.Results {
		if resp.Results[i].MatchReason == "" {
			resp.Results[i].MatchReason = defaultMatchReason
		}
	}
}

// Search returns movie and series matches for query, unscored.
func (s *DiscoveryService) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}

	items, err := s.catalog.SearchMulti(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	// Movie and series ids are separate namespaces, so nothing is deduplicated.
	results := make([]models.Candidate, 0, len(items))
	for _, item := range items {
		if c, ok := normalize(item, ""); ok {
			results = append(results, c)
		}
	}
	return results, nil
}

// Details returns the full record of a title.
func (s *DiscoveryService) Details(ctx context.Context, media models.MediaType, id int) (*models.TitleDetail, error) {
	if _, ok := models.ParseMediaType(string(media)); !ok {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrInvalidRequest, media)
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid id %d", ErrInvalidRequest, id)
	}

	d, err := s.catalog.Detail(ctx, string(media), id)
	if err != nil {
		return nil, fmt.Errorf("detail fetch failed: %w", err)
	}
	return toTitleDetail(d, media), nil
}

func toTitleDetail(d *tmdb.Detail, media models.MediaType) *models.TitleDetail {
	detail := &models.TitleDetail{
		ID:          d.ID,
		MediaType:   media,
		Title:       d.Title,
		Tagline:     d.Tagline,
		Overview:    d.Overview,
		ReleaseDate: d.ReleaseDate,
		Runtime:     d.Runtime,
		VoteAverage: d.VoteAverage,
		Genres:      make([]string, 0, len(d.Genres)),
		Videos:      make([]models.Video, 0, len(d.Videos.Results)),
		Cast:        make([]models.CastMember, 0, maxCastMembers),
	}
	if detail.Title == "" {
		detail.Title = d.Name
	}
	if detail.ReleaseDate == "" {
		detail.ReleaseDate = d.FirstAirDate
	}
	if detail.Runtime == 0 && len(d.EpisodeRunTime) > 0 {
		detail.Runtime = d.EpisodeRunTime[0]
	}
	if d.PosterPath != "" {
		detail.PosterURL = models.TMDBImageBaseW500 + d.PosterPath
	}
	if d.BackdropPath != "" {
		detail.BackdropURL = models.TMDBImageBaseW780 + d.BackdropPath
	}
	for _, g := range d.Genres {
		detail.Genres = append(detail.Genres, g.Name)
	}
	for _, v := range d.Videos.Results {
		detail.Videos = append(detail.Videos, models.Video{Key: v.Key, Name: v.Name, Site: v.Site, Type: v.Type})
	}
	for i, c := range d.Credits.Cast {
		if i == maxCastMembers {
			break
		}
		detail.Cast = append(detail.Cast, models.CastMember{Name: c.Name, Character: c.Character, ProfilePath: c.ProfilePath})
	}

	// Recommendation records of a series omit media_type but carry first_air_date.
	detail.Recommendations = truncate(Merge([]Batch{{Items: d.Recommendations.Results}}), maxRecommendations)
	return detail
}
