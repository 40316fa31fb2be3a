package service

import (
	"context"
	"strings"
	"time"

	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/pkg/ragapi"

	"github.com/patrickmn/go-cache"
)

// queryMode discriminates the three backend query variants. It is
// derived once from the input shape, then dispatched; never re-derived
// at call sites.
type queryMode int

const (
	// modeListAll lists every stored document (no filters, no question).
	modeListAll queryMode = iota
	// modeMetadataOnly narrows the listing by filters; still no ranking.
	modeMetadataOnly
	// modeSemantic runs ranked vector search; filters optionally narrow it.
	modeSemantic
)

type searchQuery struct {
	Mode     queryMode
	Filters  ragapi.FilterCriteria
	Question string
	K        int
}

// buildQuery is a pure function of (filters, question): a non-empty
// question always means semantic search; filters alone only narrow the
// static listing. This keeps expensive retrieval off the browse path.
func buildQuery(filters ragapi.FilterCriteria, question string, k int) searchQuery {
	q := strings.TrimSpace(question)
	switch {
	case q != "":
		return searchQuery{Mode: modeSemantic, Filters: filters, Question: q, K: k}
	case !filters.Empty():
		return searchQuery{Mode: modeMetadataOnly, Filters: filters}
	default:
		return searchQuery{Mode: modeListAll}
	}
}

// ISearchService turns metadata filters plus an optional question into
// the correct backend query and keeps the latest results. A successful
// search also marks its filters as "applied", which is what later
// questions inherit.
type ISearchService interface {
	Search(ctx context.Context, filters ragapi.FilterCriteria, question string) (*dto.SearchResponse, error)
	Results() []ragapi.SearchResult
	AppliedFilters() (ragapi.FilterCriteria, bool)
	MetadataOptions(ctx context.Context) (*ragapi.MetadataOptions, error)
	Status() (string, string)
}

type searchService struct {
	backend ragapi.Backend
	logger  logger.ILogger
	topK    int
	options *cache.Cache

	pane    pane
	results []ragapi.SearchResult
	applied ragapi.FilterCriteria
	hasRun  bool
}

const metadataCacheKey = "metadata_options"

func NewSearchService(backend ragapi.Backend, topK int, metadataTTL time.Duration, log logger.ILogger) ISearchService {
	return &searchService{
		backend: backend,
		logger:  log,
		topK:    topK,
		options: cache.New(metadataTTL, 2*metadataTTL),
	}
}

// Search is last-write-wins: overlapping submissions each get a
// generation, and only the newest outcome is committed, so a slow
// stale response can never overwrite fresher results.
func (s *searchService) Search(ctx context.Context, filters ragapi.FilterCriteria, question string) (*dto.SearchResponse, error) {
	gen := s.pane.begin()
	query := buildQuery(filters, question, s.topK)

	results, err := s.execute(ctx, query)

	committed := s.pane.finish(gen, err, func() {
		if err != nil {
			// A failed search shows an empty results list, not stale hits.
			s.results = nil
			return
		}
		s.results = results
		s.applied = query.Filters
		s.hasRun = true
	})
	if err != nil {
		return nil, err
	}
	if !committed {
		s.logger.Debug("Search", "Discarded superseded search response", map[string]interface{}{
			"generation": gen,
		})
	}

	return &dto.SearchResponse{
		Results:         results,
		UniqueDocuments: uniqueFilenames(results),
	}, nil
}

func (s *searchService) execute(ctx context.Context, query searchQuery) ([]ragapi.SearchResult, error) {
	switch query.Mode {
	case modeSemantic:
		return s.backend.Search(ctx, query.Question, query.K, query.Filters)
	case modeMetadataOnly:
		return s.listing(ctx, query.Filters)
	default:
		return s.listing(ctx, ragapi.FilterCriteria{})
	}
}

// listing wraps the documents endpoint as results with empty snippets.
func (s *searchService) listing(ctx context.Context, filters ragapi.FilterCriteria) ([]ragapi.SearchResult, error) {
	docs, err := s.backend.ListDocuments(ctx, filters)
	if err != nil {
		return nil, err
	}
	results := make([]ragapi.SearchResult, len(docs))
	for i, name := range docs {
		results[i] = ragapi.SearchResult{Filename: name}
	}
	return results, nil
}

func (s *searchService) Results() []ragapi.SearchResult {
	var snapshot []ragapi.SearchResult
	s.pane.do(func() {
		snapshot = append(snapshot, s.results...)
	})
	return snapshot
}

// AppliedFilters reports the filters of the last successful search and
// whether any search has been run at all. Filters merely selected in
// the dropdowns but never searched with are not "applied".
func (s *searchService) AppliedFilters() (ragapi.FilterCriteria, bool) {
	var filters ragapi.FilterCriteria
	var applied bool
	s.pane.do(func() {
		filters = s.applied
		applied = s.hasRun
	})
	return filters, applied
}

// MetadataOptions serves the valid filter values, cached so reopening a
// dropdown does not hammer the backend.
func (s *searchService) MetadataOptions(ctx context.Context) (*ragapi.MetadataOptions, error) {
	if cached, found := s.options.Get(metadataCacheKey); found {
		return cached.(*ragapi.MetadataOptions), nil
	}
	opts, err := s.backend.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	s.options.Set(metadataCacheKey, opts, cache.DefaultExpiration)
	return opts, nil
}

func (s *searchService) Status() (string, string) {
	return s.pane.status()
}

func uniqueFilenames(results []ragapi.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	var unique []string
	for _, r := range results {
		if _, ok := seen[r.Filename]; ok {
			continue
		}
		seen[r.Filename] = struct{}{}
		unique = append(unique, r.Filename)
	}
	return unique
}
