package ranking

import (
	"github.com/rizzani/grovi-sub000/internal/domain"
	"github.com/rizzani/grovi-sub000/pkg/pagination"
	"github.com/rizzani/grovi-sub000/pkg/textnorm"
)

// DefaultMaxCandidates bounds the candidates scored per call when the
// Ranker is built with a non-positive limit.
const DefaultMaxCandidates = 5000

// RankRequest is the input to one ranking call. Candidates are expected to be
// already filtered by facets.
type RankRequest struct {
	Query       string
	Candidates  []domain.CandidateListing
	Sort        domain.SortMode
	Preferences domain.UserPreferences
	Pagination  pagination.Options
}

// Ranker runs the full pipeline: classify, score, dedupe, sort, paginate.
// A Ranker holds no mutable state.
type Ranker struct {
	maxCandidates int
}

// NewRanker creates a Ranker that scores at most maxCandidates listings per
// call. Candidates beyond the limit are ignored in input order.
func NewRanker(maxCandidates int) *Ranker {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Ranker{maxCandidates: maxCandidates}
}

// MaxCandidates returns the per-call candidate cap.
func (r *Ranker) MaxCandidates() int {
	return r.maxCandidates
}

// Rank returns the requested page of ranked results. An empty query yields
// an empty page.
func (r *Ranker) Rank(req RankRequest) pagination.Page[domain.RankedResult] {
	return pagination.Paginate(r.RankAll(req), req.Pagination)
}

// RankTop returns at most limit ranked results. A non-positive limit returns
// every ranked result.
func (r *Ranker) RankTop(req RankRequest, limit int) []domain.RankedResult {
	all := r.RankAll(req)
	if limit > 0 && len(all) > limit {
		return all[:limit]
	}
	return all
}

// RankAll scores every candidate, drops listings no tier matched, collapses
// duplicates and returns the full ordered list.
func (r *Ranker) RankAll(req RankRequest) []domain.RankedResult {
	q := textnorm.ParseQuery(req.Query)
	if q.IsEmpty() {
		return []domain.RankedResult{}
	}

	candidates := req.Candidates
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	scored := make([]domain.RankedResult, 0, len(candidates))
	for _, listing := range candidates {
		info := Classify(listing, q)
		if !info.Any() {
			continue
		}
		scored = append(scored, domain.RankedResult{
			Listing:     listing,
			Score:       Score(listing, info, req.Preferences),
			InStock:     listing.InStock,
			TitleLeads:  info.TitleLeads(),
			TitleLength: info.TitleLength,
		})
	}

	return Sort(Dedupe(scored), req.Sort)
}
