package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartfusion-dashboard/pkg/ragapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	filters := ragapi.FilterCriteria{Country: "Germany"}

	tests := []struct {
		name     string
		filters  ragapi.FilterCriteria
		question string
		wantMode queryMode
	}{
		{
			name:     "no filters no question lists everything",
			wantMode: modeListAll,
		},
		{
			name:     "filters only narrows the listing",
			filters:  filters,
			wantMode: modeMetadataOnly,
		},
		{
			name:     "question only runs semantic search",
			question: "what is the onboarding process?",
			wantMode: modeSemantic,
		},
		{
			name:     "question and filters run semantic search",
			filters:  filters,
			question: "what is the onboarding process?",
			wantMode: modeSemantic,
		},
		{
			name:     "whitespace question is no question",
			question: "   \t  ",
			wantMode: modeListAll,
		},
		{
			name:     "whitespace question with filters narrows the listing",
			filters:  filters,
			question: "   ",
			wantMode: modeMetadataOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.filters, tt.question, 5)
			assert.Equal(t, tt.wantMode, got.Mode)
		})
	}
}

func TestSearchSemanticUsesTopK(t *testing.T) {
	var gotK int
	var gotQuestion string
	backend := &fakeBackend{
		search: func(ctx context.Context, question string, k int, filters ragapi.FilterCriteria) ([]ragapi.SearchResult, error) {
			gotK = k
			gotQuestion = question
			return []ragapi.SearchResult{
				{Filename: "handbook.pdf", Snippet: "vacation policy"},
				{Filename: "handbook.pdf", Snippet: "sick leave"},
				{Filename: "faq.pdf", Snippet: "payroll"},
			}, nil
		},
	}
	svc := NewSearchService(backend, 5, time.Minute, nopLogger{})

	res, err := svc.Search(context.Background(), ragapi.FilterCriteria{}, "  leave policy  ")
	require.NoError(t, err)

	assert.Equal(t, 5, gotK)
	assert.Equal(t, "leave policy", gotQuestion)
	assert.Len(t, res.Results, 3)
	assert.Equal(t, []string{"handbook.pdf", "faq.pdf"}, res.UniqueDocuments)
}

func TestSearchFiltersOnlyListsDocuments(t *testing.T) {
	backend := &fakeBackend{
		listDocuments: func(ctx context.Context, filters ragapi.FilterCriteria) ([]string, error) {
			assert.Equal(t, "Germany", filters.Country)
			return []string{"a.pdf", "b.pdf"}, nil
		},
		search: func(ctx context.Context, question string, k int, filters ragapi.FilterCriteria) ([]ragapi.SearchResult, error) {
			t.Fatal("semantic search must not run for a filter-only query")
			return nil, nil
		},
	}
	svc := NewSearchService(backend, 5, time.Minute, nopLogger{})

	res, err := svc.Search(context.Background(), ragapi.FilterCriteria{Country: "Germany"}, "")
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Empty(t, res.Results[0].Snippet)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, res.UniqueDocuments)
}

func TestSearchFailureClearsResults(t *testing.T) {
	calls := 0
	backend := &fakeBackend{
		search: func(ctx context.Context, question string, k int, filters ragapi.FilterCriteria) ([]ragapi.SearchResult, error) {
			calls++
			if calls == 1 {
				return []ragapi.SearchResult{{Filename: "a.pdf"}}, nil
			}
			return nil, errors.New("backend down")
		},
	}
	svc := NewSearchService(backend, 5, time.Minute, nopLogger{})

	_, err := svc.Search(context.Background(), ragapi.FilterCriteria{}, "first")
	require.NoError(t, err)
	require.Len(t, svc.Results(), 1)

	_, err = svc.Search(context.Background(), ragapi.FilterCriteria{}, "second")
	require.Error(t, err)
	assert.Empty(t, svc.Results(), "a failed search must not keep stale hits")

	phase, msg := svc.Status()
	assert.Equal(t, "failed", phase)
	assert.Equal(t, "backend down", msg)
}

func TestAppliedFiltersRequireASuccessfulSearch(t *testing.T) {
	backend := &fakeBackend{
		listDocuments: func(ctx context.Context, filters ragapi.FilterCriteria) ([]string, error) {
			return []string{"a.pdf"}, nil
		},
	}
	svc := NewSearchService(backend, 5, time.Minute, nopLogger{})

	_, applied := svc.AppliedFilters()
	assert.False(t, applied, "nothing applied before any search")

	filters := ragapi.FilterCriteria{Country: "Germany", JobArea: "Engineering"}
	_, err := svc.Search(context.Background(), filters, "")
	require.NoError(t, err)

	got, applied := svc.AppliedFilters()
	assert.True(t, applied)
	assert.Equal(t, filters, got)
}

func TestMetadataOptionsAreCached(t *testing.T) {
	calls := 0
	backend := &fakeBackend{
		metadata: func(ctx context.Context) (*ragapi.MetadataOptions, error) {
			calls++
			return &ragapi.MetadataOptions{Countries: []string{"Germany", "India"}}, nil
		},
	}
	svc := NewSearchService(backend, 5, time.Minute, nopLogger{})

	first, err := svc.MetadataOptions(context.Background())
	require.NoError(t, err)
	second, err := svc.MetadataOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
}
