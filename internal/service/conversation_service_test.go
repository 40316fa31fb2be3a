package service

import (
	"context"
	"errors"
	"testing"

	"smartfusion-dashboard/pkg/ragapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFilters struct {
	filters ragapi.FilterCriteria
	applied bool
}

func (s stubFilters) AppliedFilters() (ragapi.FilterCriteria, bool) {
	return s.filters, s.applied
}

type stubAllowlist struct {
	names []string
}

func (s stubAllowlist) SelectedFilenames() []string {
	return s.names
}

func newConversationFixture(backend *fakeBackend, filters stubFilters, allowlist stubAllowlist) IConversationService {
	return NewConversationService(backend, filters, allowlist, newTestPublisher(), 5, nopLogger{})
}

func TestAskAppendsExactlyOneExchange(t *testing.T) {
	backend := &fakeBackend{
		answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
			return "42 days of leave", nil
		},
	}
	svc := newConversationFixture(backend, stubFilters{}, stubAllowlist{})

	exchange, err := svc.Ask(context.Background(), "  how much leave do I get?  ")
	require.NoError(t, err)
	require.NotNil(t, exchange)
	assert.Equal(t, "how much leave do I get?", exchange.Question)
	assert.Equal(t, "42 days of leave", exchange.Answer)

	transcript := svc.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, ragapi.Message{Role: ragapi.RoleUser, Content: "how much leave do I get?"}, transcript[0])
	assert.Equal(t, ragapi.Message{Role: ragapi.RoleAssistant, Content: "42 days of leave"}, transcript[1])
}

func TestAskSendsFullPriorTranscript(t *testing.T) {
	var lastRequest ragapi.AnswerRequest
	backend := &fakeBackend{
		answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
			lastRequest = req
			return "answer", nil
		},
	}
	svc := newConversationFixture(backend, stubFilters{}, stubAllowlist{})

	_, err := svc.Ask(context.Background(), "first question")
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), "second question")
	require.NoError(t, err)

	require.Len(t, lastRequest.Messages, 3)
	assert.Equal(t, "first question", lastRequest.Messages[0].Content)
	assert.Equal(t, "answer", lastRequest.Messages[1].Content)
	assert.Equal(t, "second question", lastRequest.Messages[2].Content)
	assert.Equal(t, 5, lastRequest.TopK)
}

func TestAskFailureLeavesNoRecord(t *testing.T) {
	backend := &fakeBackend{
		answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
			return "", errors.New("backend down")
		},
	}
	svc := newConversationFixture(backend, stubFilters{}, stubAllowlist{})
	svc.SetPendingInput("typed so far")

	_, err := svc.Ask(context.Background(), "doomed question")
	require.Error(t, err)

	assert.Empty(t, svc.Transcript(), "a failed exchange leaves no partial turn")
	assert.Equal(t, "typed so far", svc.PendingInput(), "failure keeps the pending input")

	history := svc.History()
	assert.Equal(t, "failed", history.Phase)
	assert.Equal(t, "backend down", history.Error)
}

func TestAskEmptyQuestionIsANoOp(t *testing.T) {
	backend := &fakeBackend{
		answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
			t.Fatal("empty input must not reach the backend")
			return "", nil
		},
	}
	svc := newConversationFixture(backend, stubFilters{}, stubAllowlist{})

	exchange, err := svc.Ask(context.Background(), "   \t ")
	require.NoError(t, err)
	assert.Nil(t, exchange)
	assert.Empty(t, svc.Transcript())
}

func TestAskSuccessClearsPendingInput(t *testing.T) {
	backend := &fakeBackend{
		answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
			return "done", nil
		},
	}
	svc := newConversationFixture(backend, stubFilters{}, stubAllowlist{})
	svc.SetPendingInput("spoken transcript")

	_, err := svc.Ask(context.Background(), "spoken transcript")
	require.NoError(t, err)
	assert.Empty(t, svc.PendingInput())
}

func TestAskFilterAndAllowlistScoping(t *testing.T) {
	filters := ragapi.FilterCriteria{Country: "Germany", SourceType: "report"}

	tests := []struct {
		name          string
		filters       stubFilters
		allowlist     stubAllowlist
		wantCountry   string
		wantFilenames []string
	}{
		{
			name:    "filters selected but never searched are excluded",
			filters: stubFilters{filters: filters, applied: false},
		},
		{
			name:        "applied filters are forwarded",
			filters:     stubFilters{filters: filters, applied: true},
			wantCountry: "Germany",
		},
		{
			name:      "applied but empty filters are omitted",
			filters:   stubFilters{filters: ragapi.FilterCriteria{}, applied: true},
			allowlist: stubAllowlist{},
		},
		{
			name:          "selection restricts to an allow-list",
			allowlist:     stubAllowlist{names: []string{"a.pdf", "b.pdf"}},
			wantFilenames: []string{"a.pdf", "b.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ragapi.AnswerRequest
			backend := &fakeBackend{
				answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
					got = req
					return "ok", nil
				},
			}
			svc := newConversationFixture(backend, tt.filters, tt.allowlist)

			_, err := svc.Ask(context.Background(), "question")
			require.NoError(t, err)

			assert.Equal(t, tt.wantCountry, got.Country)
			assert.Equal(t, tt.wantFilenames, got.Filenames)
		})
	}
}

func TestAskRejectsOverlappingQuestion(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{
		answer: func(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
			close(started)
			<-release
			return "slow answer", nil
		},
	}
	svc := newConversationFixture(backend, stubFilters{}, stubAllowlist{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Ask(context.Background(), "slow question")
		done <- err
	}()
	<-started

	_, err := svc.Ask(context.Background(), "impatient question")
	assert.ErrorIs(t, err, ErrQuestionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, svc.Transcript(), 2, "only the first question is recorded")
}
