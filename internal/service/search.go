// Package service holds the search and catalog use cases served over HTTP
// and Kafka.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/internal/ranking"
	"github.com/rizzani/grovi-sub000/internal/retrieval"
	"github.com/rizzani/grovi-sub000/pkg/pagination"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
	"github.com/rizzani/grovi-sub000/pkg/tracing"
)

const tracerName = "github.com/rizzani/grovi-sub000/internal/service"

// DefaultRetrievalTimeout bounds one candidate retrieval when the service is
// built with a non-positive timeout.
const DefaultRetrievalTimeout = 2 * time.Second

// SearchInput is one search request.
type SearchInput struct {
	Query       string
	Filters     domain.Filters
	Sort        domain.SortMode
	Preferences domain.UserPreferences
	Pagination  pagination.Options
}

// Analysis shows how a raw query is normalized and expanded for retrieval.
type Analysis struct {
	Raw        string   `json:"raw"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens"`
	Variants   []string `json:"variants"`
	Terms      []string `json:"terms"`
}

// SearchService retrieves candidate listings and ranks them.
type SearchService struct {
	retriever retrieval.Retriever
	ranker    *ranking.Ranker
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewSearchService creates a search service. Retrieval is capped at the
// ranker's candidate limit and bounded by timeout.
func NewSearchService(r retrieval.Retriever, ranker *ranking.Ranker, timeout time.Duration, logger *slog.Logger) *SearchService {
	if timeout <= 0 {
		timeout = DefaultRetrievalTimeout
	}
	return &SearchService{
		retriever: r,
		ranker:    ranker,
		timeout:   timeout,
		logger:    logger,
		tracer:    tracing.Tracer(tracerName),
	}
}

// Search returns one page of ranked results. Retrieval failures are logged
// and served as an empty page.
func (s *SearchService) Search(ctx context.Context, in SearchInput) pagination.Page[domain.RankedResult] {
	ctx, span := s.start(ctx, "search", in.Query)
	defer span.End()
	start := time.Now()

	req := s.rankRequest(ctx, in)
	page := s.ranker.Rank(req)

	span.SetAttributes(attribute.Int("search.total_results", page.TotalResults))
	s.finish(ctx, "search", start,
		slog.String("query", in.Query),
		slog.Int("candidates", len(req.Candidates)),
		slog.Int("total", page.TotalResults),
		slog.Int("page", page.CurrentPage),
	)
	return page
}

// Top returns at most limit ranked results without pagination metadata.
func (s *SearchService) Top(ctx context.Context, in SearchInput, limit int) []domain.RankedResult {
	ctx, span := s.start(ctx, "top", in.Query)
	defer span.End()
	start := time.Now()

	req := s.rankRequest(ctx, in)
	results := s.ranker.RankTop(req, limit)

	span.SetAttributes(attribute.Int("search.total_results", len(results)))
	s.finish(ctx, "top", start,
		slog.String("query", in.Query),
		slog.Int("candidates", len(req.Candidates)),
		slog.Int("limit", limit),
		slog.Int("total", len(results)),
	)
	return results
}

// Suggest returns autocomplete suggestions for prefix, drawn from the
// listings retrieval finds for it.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) []domain.Suggestion {
	ctx, span := s.start(ctx, "suggest", prefix)
	defer span.End()
	start := time.Now()

	candidates := s.candidates(ctx, prefix, domain.Filters{})
	suggestions := ranking.Suggest(prefix, candidates, limit)

	s.finish(ctx, "suggest", start,
		slog.String("prefix", prefix),
		slog.Int("candidates", len(candidates)),
		slog.Int("suggestions", len(suggestions)),
	)
	return suggestions
}

// Analyze reports the normalized form, tokens and retrieval variants of raw.
func (s *SearchService) Analyze(raw string) Analysis {
	searchRequests.WithLabelValues("analyze").Inc()
	q := retrieval.NewQuery(raw, domain.Filters{}, 0)
	return Analysis{
		Raw:        raw,
		Normalized: q.Normalized,
		Tokens:     textnorm.Tokenize(raw),
		Variants:   q.Variants,
		Terms:      q.Terms(),
	}
}

func (s *SearchService) rankRequest(ctx context.Context, in SearchInput) ranking.RankRequest {
	return ranking.RankRequest{
		Query:       in.Query,
		Candidates:  s.candidates(ctx, in.Query, in.Filters),
		Sort:        in.Sort,
		Preferences: in.Preferences,
		Pagination:  in.Pagination,
	}
}

// candidates fetches listings for raw under the retrieval timeout. It never
// fails: errors are logged and counted, and yield no candidates.
func (s *SearchService) candidates(ctx context.Context, raw string, filters domain.Filters) []domain.CandidateListing {
	q := retrieval.NewQuery(raw, filters, s.ranker.MaxCandidates())
	if q.IsEmpty() {
		return []domain.CandidateListing{}
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	listings, err := s.retriever.Retrieve(rctx, q)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		retrievalFailures.WithLabelValues(reason).Inc()
		trace.SpanFromContext(ctx).RecordError(err)
		s.logger.WarnContext(ctx, "candidate retrieval failed, serving empty results",
			slog.String("query", raw),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		return []domain.CandidateListing{}
	}

	candidateCount.Observe(float64(len(listings)))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("search.candidates", len(listings)))
	return listings
}

func (s *SearchService) start(ctx context.Context, op, query string) (context.Context, trace.Span) {
	searchRequests.WithLabelValues(op).Inc()
	return s.tracer.Start(ctx, "SearchService."+op,
		trace.WithAttributes(attribute.Int("search.query_length", len(query))),
	)
}

func (s *SearchService) finish(ctx context.Context, op string, start time.Time, attrs ...any) {
	elapsed := time.Since(start)
	searchDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	s.logger.DebugContext(ctx, op+" executed", append(attrs, slog.Duration("took", elapsed))...)
}
