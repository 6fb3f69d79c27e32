package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/service"
	"movie-discovery-picker/internal/tmdb"
)

// Recommender is the recommendation and lookup surface used by the handler.
type Recommender interface {
	QuizRecommendations(ctx context.Context, answers models.QuizAnswers) (*models.RecommendationResponse, error)
	PromptRecommendations(ctx context.Context, prompt string) (*models.RecommendationResponse, error)
	Search(ctx context.Context, query string) ([]models.Candidate, error)
	Details(ctx context.Context, media models.MediaType, id int) (*models.TitleDetail, error)
}

// GenreCatalog lists and refreshes genres.
type GenreCatalog interface {
	List(ctx context.Context, media models.MediaType) ([]models.Genre, error)
	Sync(ctx context.Context) (int, error)
}

// DiscoveryHandler handles HTTP requests for recommendations, search and titles.
type DiscoveryHandler struct {
	svc    Recommender
	genres GenreCatalog
}

// NewDiscoveryHandler creates a new DiscoveryHandler.
func NewDiscoveryHandler(svc Recommender, genres GenreCatalog) *DiscoveryHandler {
	return &DiscoveryHandler{svc: svc, genres: genres}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *DiscoveryHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-discovery-picker",
	})
}

// QuizRecommendations returns recommendations for quiz answers.
// @Summary Recommendations from quiz answers
// @Tags recommendations
// @Accept json
// @Produce json
// @Param body body models.QuizAnswers true "Quiz answers"
// @Success 200 {object} models.RecommendationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/recommendations/quiz [post]
func (h *DiscoveryHandler) QuizRecommendations(c fiber.Ctx) error {
	var answers models.QuizAnswers
	if err := c.Bind().JSON(&answers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	resp, err := h.svc.QuizRecommendations(c.Context(), answers)
	if err != nil {
		return writeError(c, err, "failed to generate recommendations")
	}
	return c.JSON(resp)
}

// PromptRecommendations returns recommendations for a free-text prompt.
// @Summary Recommendations from a prompt
// @Tags recommendations
// @Accept json
// @Produce json
// @Param body body models.PromptRequest true "Prompt"
// @Success 200 {object} models.RecommendationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/recommendations/prompt [post]
func (h *DiscoveryHandler) PromptRecommendations(c fiber.Ctx) error {
	var req models.PromptRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	resp, err := h.svc.PromptRecommendations(c.Context(), req.Prompt)
	if err != nil {
		return writeError(c, err, "failed to generate recommendations")
	}
	return c.JSON(resp)
}

// Search returns movies and series matching q.
// @Summary Search titles
// @Tags titles
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/search [get]
func (h *DiscoveryHandler) Search(c fiber.Ctx) error {
	results, err := h.svc.Search(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, err, "search failed")
	}
	return c.JSON(fiber.Map{
		"results": results,
	})
}

// GetTitle returns the detail record of a movie or series.
// @Summary Get title detail
// @Tags titles
// @Produce json
// @Param type path string true "Media type" Enums(movie,tv)
// @Param id path int true "TMDB ID"
// @Success 200 {object} models.TitleDetail
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/titles/{type}/{id} [get]
func (h *DiscoveryHandler) GetTitle(c fiber.Ctx) error {
	media, ok := models.ParseMediaType(c.Params("type"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid media type",
		})
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid title ID",
		})
	}

	detail, err := h.svc.Details(c.Context(), media, id)
	if err != nil {
		return writeError(c, err, "failed to retrieve title details")
	}
	return c.JSON(detail)
}

// ListGenres returns the genre catalog.
// @Summary List genres
// @Tags genres
// @Produce json
// @Param media_type query string false "Media type" Enums(movie,tv)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/genres [get]
func (h *DiscoveryHandler) ListGenres(c fiber.Ctx) error {
	genres, err := h.genres.List(c.Context(), models.MediaType(c.Query("media_type")))
	if err != nil {
		return writeError(c, err, "failed to retrieve genres")
	}
	return c.JSON(fiber.Map{
		"genres": genres,
	})
}

// Quiz returns the quiz question tree.
// @Summary Quiz definition
// @Tags recommendations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/quiz [get]
func (h *DiscoveryHandler) Quiz(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"steps": models.MovieQuiz(),
	})
}

// SyncGenres pulls the genre lists from TMDB into the database.
// @Summary Sync genres from TMDB
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/admin/genres/sync [post]
func (h *DiscoveryHandler) SyncGenres(c fiber.Ctx) error {
	count, err := h.genres.Sync(c.Context())
	if err != nil {
		return writeError(c, err, "sync failed")
	}
	return c.JSON(fiber.Map{
		"message":       "sync completed",
		"genres_synced": count,
	})
}

// writeError maps service and upstream errors onto an HTTP status.
func writeError(c fiber.Ctx, err error, msg string) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "path", c.Path(), "status", status, "error", err)
	} else {
		slog.Debug(msg, "path", c.Path(), "status", status, "error", err)
	}

	body := ErrorResponse{Error: msg}
	switch status {
	case http.StatusNotFound:
		body.Error = "title not found"
	case http.StatusBadRequest, http.StatusServiceUnavailable:
		body.Error = err.Error()
	case http.StatusBadGateway:
		body.Error = msg + ": upstream unavailable"
	}
	return c.Status(status).JSON(body)
}

func statusFor(err error) int {
	var catalogErr *tmdb.CatalogError
	var parseErr *service.IntentParseError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrLLMUnavailable), errors.Is(err, service.ErrGenreStoreUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &parseErr), errors.Is(err, service.ErrLLMFailed), errors.Is(err, tmdb.ErrUnavailable):
		return fiber.StatusBadGateway
	case errors.As(err, &catalogErr):
		if catalogErr.Status == http.StatusNotFound {
			return fiber.StatusNotFound
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
