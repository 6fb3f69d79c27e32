package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"movie-discovery-picker/internal/metrics"
	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/tmdb"
)

const (
	titleSearchLimit = 3
	querySearchLimit = 5
)

// moodKeywords maps a quiz mood onto TMDB keyword ids.
var moodKeywords = map[string]string{
	"light":     "6078,9717,35,10224,155030,10714,10183",
	"intense":   "9748,3007,9663,10349,15060,186253,10158",
	"relaxed":   "156470,9663,10183,10714,155030",
	"emotional": "10683,180547,10534,10714,15060,10158",
}

// Batch is the output of one strategy, in the order the catalog returned it.
type Batch struct {
	Strategy models.Strategy
	Items    []tmdb.Item
}

type strategyTask struct {
	name     string
	strategy models.Strategy
	limit    int
	run      func(ctx context.Context) ([]tmdb.Item, error)
}

// Gatherer fans a request out into concurrent catalog strategies.
type Gatherer struct {
	catalog   Catalog
	networkID int
	timeout   time.Duration
}

// NewGatherer creates a Gatherer. networkID 0 disables the platform filter;
// timeout bounds each strategy separately.
func NewGatherer(catalog Catalog, networkID int, timeout time.Duration) *Gatherer {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Gatherer{catalog: catalog, networkID: networkID, timeout: timeout}
}

// Quiz runs the seed, discover, underrated and trending strategies. answers
// must already be validated.
func (g *Gatherer) Quiz(ctx context.Context, answers models.QuizAnswers) ([]Batch, []models.StrategyStatus, error) {
	var tasks []strategyTask

	if answers.SeedMovieID != "" {
		media, id, err := models.ParseSeedKey(answers.SeedMovieID)
		if err == nil {
			tasks = append(tasks, strategyTask{
				name:     string(models.StrategySeed),
				strategy: models.StrategySeed,
				run: func(ctx context.Context) ([]tmdb.Item, error) {
					return g.catalog.Recommendations(ctx, string(media), id)
				},
			})
		}
	}

	base := url.Values{}
	if g.networkID > 0 {
		base.Set("with_networks", strconv.Itoa(g.networkID))
	}
	base.Set("sort_by", "popularity.desc")
	base.Set("vote_count.gte", "100")
	if len(answers.Genres) > 0 {
		base.Set("with_genres", joinIDs(answers.Genres))
	}
	setEra(base, answers.Era, models.MediaMovie)
	if keywords, ok := moodKeywords[answers.Mood]; ok {
		base.Set("with_keywords", keywords)
	}

	tasks = append(tasks, strategyTask{
		name:     string(models.StrategyDiscover),
		strategy: models.StrategyDiscover,
		run: func(ctx context.Context) ([]tmdb.Item, error) {
			return g.discoverRelaxed(ctx, base)
		},
	})

	underrated := cloneValues(base)
	underrated.Set("vote_average.gte", "7.5")
	underrated.Set("vote_count.lte", "1000")
	underrated.Set("vote_count.gte", "50")
	underrated.Set("sort_by", "vote_average.desc")
	tasks = append(tasks, strategyTask{
		name:     string(models.StrategyUnderrated),
		strategy: models.StrategyUnderrated,
		run: func(ctx context.Context) ([]tmdb.Item, error) {
			return g.catalog.Discover(ctx, string(models.MediaMovie), underrated)
		},
	})

	tasks = append(tasks, strategyTask{
		name:     string(models.StrategyTrending),
		strategy: models.StrategyTrending,
		run: func(ctx context.Context) ([]tmdb.Item, error) {
			return g.catalog.Trending(ctx, string(models.MediaMovie))
		},
	})

	return g.run(ctx, tasks)
}

// discoverRelaxed drops the mood keywords, then the era bounds, while the
// discover query keeps coming back empty.
func (g *Gatherer) discoverRelaxed(ctx context.Context, params url.Values) ([]tmdb.Item, error) {
	items, err := g.catalog.Discover(ctx, string(models.MediaMovie), params)
	if err != nil || len(items) > 0 {
		return items, err
	}

	relaxed := cloneValues(params)
	if relaxed.Has("with_keywords") {
		relaxed.Del("with_keywords")
		slog.Debug("discover empty, retrying without mood keywords")
		items, err = g.catalog.Discover(ctx, string(models.MediaMovie), relaxed)
		if err != nil || len(items) > 0 {
			return items, err
		}
	}

	if relaxed.Has("release_date.gte") || relaxed.Has("release_date.lte") {
		relaxed.Del("release_date.gte")
		relaxed.Del("release_date.lte")
		slog.Debug("discover empty, retrying without era bounds")
		return g.catalog.Discover(ctx, string(models.MediaMovie), relaxed)
	}
	return items, nil
}

// Prompt runs one search per representative title and per search query,
// then a discover query per catalog the intent asks for.
func (g *Gatherer) Prompt(ctx context.Context, intent *models.Intent, genreIDs []int) ([]Batch, []models.StrategyStatus, error) {
	var tasks []strategyTask

	for _, title := range intent.RepresentativeTitles {
		tasks = append(tasks, g.searchTask("title:"+title, title, titleSearchLimit))
	}
	for _, query := range intent.SearchQueries {
		tasks = append(tasks, g.searchTask("query:"+query, query, querySearchLimit))
	}

	media := []models.MediaType{models.MediaMovie}
	if intent.IncludeTV {
		media = append(media, models.MediaTV)
	}
	for _, m := range media {
		params := url.Values{}
		params.Set("sort_by", "popularity.desc")
		params.Set("vote_count.gte", "20")
		if len(genreIDs) > 0 {
			params.Set("with_genres", joinIDs(genreIDs))
		}
		setEra(params, intent.Era, m)

		tasks = append(tasks, strategyTask{
			name:     "discover:" + string(m),
			strategy: models.StrategyDiscover,
			run: func(ctx context.Context) ([]tmdb.Item, error) {
				return g.catalog.Discover(ctx, string(m), params)
			},
		})
	}

	return g.run(ctx, tasks)
}

func (g *Gatherer) searchTask(name, query string, limit int) strategyTask {
	return strategyTask{
		name:     name,
		strategy: models.StrategySearch,
		limit:    limit,
		run: func(ctx context.Context) ([]tmdb.Item, error) {
			return g.catalog.SearchMulti(ctx, query)
		},
	}
}

// run executes every task concurrently and joins. A failing task contributes
// an empty batch; the returned error is only ever ErrAllStrategiesFailed.
func (g *Gatherer) run(ctx context.Context, tasks []strategyTask) ([]Batch, []models.StrategyStatus, error) {
	batches := make([]Batch, len(tasks))
	statuses := make([]models.StrategyStatus, len(tasks))

	var eg errgroup.Group
	for i, task := range tasks {
		eg.Go(func() error {
			items, err := g.runTask(ctx, task)
			batches[i] = Batch{Strategy: task.strategy, Items: items}
			statuses[i] = models.StrategyStatus{Name: task.name, OK: err == nil, Count: len(items)}
			if err != nil {
				statuses[i].Error = err.Error()
			}
			return nil
		})
	}
	// Branches record their own failures in statuses and always return nil.
	_ = eg.Wait()

	for _, s := range statuses {
		if s.OK {
			return batches, statuses, nil
		}
	}
	if len(tasks) == 0 {
		return batches, statuses, nil
	}
	return batches, statuses, ErrAllStrategiesFailed
}

func (g *Gatherer) runTask(ctx context.Context, task strategyTask) ([]tmdb.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ctx, span := otel.Tracer("discovery").Start(ctx, "strategy."+string(task.strategy),
		trace.WithAttributes(attribute.String("strategy.name", task.name)))
	defer span.End()

	items, err := task.run(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("strategy timed out", "strategy", task.name, "timeout", g.timeout)
		} else {
			slog.Warn("strategy failed", "strategy", task.name, "error", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "strategy failed")
		metrics.StrategyResultsTotal.WithLabelValues(string(task.strategy), "error").Inc()
		return nil, err
	}

	if task.limit > 0 && len(items) > task.limit {
		items = items[:task.limit]
	}
	span.SetAttributes(attribute.Int("strategy.count", len(items)))
	metrics.StrategyResultsTotal.WithLabelValues(string(task.strategy), "ok").Inc()
	slog.Debug("strategy done", "strategy", task.name, "count", len(items))
	return items, nil
}

// setEra writes the era window onto discover params. Series are filtered by
// first air date.
func setEra(params url.Values, era models.Era, media models.MediaType) {
	field := "release_date"
	if media == models.MediaTV {
		field = "first_air_date"
	}
	r := era.Range()
	if r.From != "" {
		params.Set(field+".gte", r.From)
	}
	if r.To != "" {
		params.Set(field+".lte", r.To)
	}
}

// joinIDs joins ids with "|", TMDB's OR separator.
func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "|")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
