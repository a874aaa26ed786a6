// Package chi exposes the read-only HTTP surface: trending rankings,
// batch lookups and the tag map.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
	logpkg "github.com/charwatch/charwatch/internal/logger"
	trendinguc "github.com/charwatch/charwatch/internal/usecase/trending"
)

// maxLookupIDs caps one lookup request body.
const maxLookupIDs = 1000

// Trending serves ranked trending records.
type Trending interface {
	TopBots(ctx context.Context, opts trendinguc.Options) map[string]bot.Bot
}

// TagMapper builds the ID → tags lookup.
type TagMapper interface {
	TagMap(ctx context.Context) map[string][]string
}

// Lookup batch-resolves attributes for known character IDs.
type Lookup interface {
	Tags(ctx context.Context, ids []string) map[string][]string
	Ratings(ctx context.Context, ids []string) map[string]*float64
	CreatedAt(ctx context.Context, ids, collections []string) map[string]any
}

// Server handles the HTTP API.
type Server struct {
	trending  Trending
	tagmap    TagMapper
	lookup    Lookup
	createdAt []string
	logger    *zap.Logger
}

// NewServer creates an HTTP API server. createdAtCollections is the ordered
// collection list consulted for created_at lookups.
func NewServer(trending Trending, tagmap TagMapper, lookup Lookup, createdAtCollections []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		trending:  trending,
		tagmap:    tagmap,
		lookup:    lookup,
		createdAt: createdAtCollections,
		logger:    logger,
	}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/trending", s.getTrending)
		r.Get("/tagmap", s.getTagMap)
		r.Post("/lookup/tags", s.lookupTags)
		r.Post("/lookup/ratings", s.lookupRatings)
		r.Post("/lookup/created_at", s.lookupCreatedAt)
	})
}

// getTrending handles GET /api/v1/trending?mode=&max_pages=&use_cache=.
// Records come back as an array ordered by rank.
func (s *Server) getTrending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	m := mode.Mode(q.Get("mode"))
	if q.Get("mode") != "" && !m.IsValid() {
		writeError(w, http.StatusBadRequest, "mode must be filtered or unfiltered")
		return
	}

	maxPages := 0
	if raw := q.Get("max_pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "max_pages must be a positive integer")
			return
		}
		maxPages = n
	}

	useCache := false
	if raw := q.Get("use_cache"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "use_cache must be a boolean")
			return
		}
		useCache = b
	}

	records := s.trending.TopBots(r.Context(), trendinguc.Options{
		Mode:     m,
		MaxPages: maxPages,
		UseCache: useCache,
	})

	items := make([]bot.Bot, 0, len(records))
	for _, b := range records {
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })

	s.requestLogger(r).Debug("Served trending",
		zap.String("mode", m.String()),
		zap.Bool("use_cache", useCache),
		zap.Int("records", len(items)))
	writeJSON(w, http.StatusOK, trendingResponse{Items: items, Total: len(items)})
}

// getTagMap handles GET /api/v1/tagmap.
func (s *Server) getTagMap(w http.ResponseWriter, r *http.Request) {
	tags := s.tagmap.TagMap(r.Context())
	s.requestLogger(r).Debug("Served tag map", zap.Int("bots", len(tags)))
	writeJSON(w, http.StatusOK, tagMapResponse{Tags: tags, Total: len(tags)})
}

// lookupTags handles POST /api/v1/lookup/tags.
func (s *Server) lookupTags(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}
	out := s.lookup.Tags(r.Context(), ids)
	s.requestLogger(r).Debug("Served tag lookup",
		zap.Int("requested", len(ids)), zap.Int("resolved", len(out)))
	writeJSON(w, http.StatusOK, map[string]any{"tags": out})
}

// lookupRatings handles POST /api/v1/lookup/ratings.
func (s *Server) lookupRatings(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}
	out := s.lookup.Ratings(r.Context(), ids)
	s.requestLogger(r).Debug("Served rating lookup",
		zap.Int("requested", len(ids)), zap.Int("resolved", len(out)))
	writeJSON(w, http.StatusOK, map[string]any{"ratings": out})
}

// lookupCreatedAt handles POST /api/v1/lookup/created_at.
func (s *Server) lookupCreatedAt(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}
	out := s.lookup.CreatedAt(r.Context(), ids, s.createdAt)
	s.requestLogger(r).Debug("Served created_at lookup",
		zap.Int("requested", len(ids)), zap.Int("resolved", len(out)))
	writeJSON(w, http.StatusOK, map[string]any{"created_at": out})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger returns the request-scoped logger injected by the serving
// middleware, falling back to the server logger for direct mounts.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextDefault(r.Context(), s.logger)
}

type trendingResponse struct {
	Items []bot.Bot `json:"items"`
	Total int       `json:"total"`
}

type tagMapResponse struct {
	Tags  map[string][]string `json:"tags"`
	Total int                 `json:"total"`
}

type lookupRequest struct {
	IDs []string `json:"ids"`
}

// decodeIDs reads the lookup request body. On failure it writes the error
// response and returns ok=false.
func decodeIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return nil, false
	}
	if len(req.IDs) > maxLookupIDs {
		writeError(w, http.StatusBadRequest, "ids count must be at most "+strconv.Itoa(maxLookupIDs))
		return nil, false
	}
	return req.IDs, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
