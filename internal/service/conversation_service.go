package service

import (
	"context"
	"strings"
	"sync"

	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/pkg/events"
	"smartfusion-dashboard/pkg/ragapi"
)

// filterSource exposes the filters the user has confirmed via a search
// action. Owned by the search controller.
type filterSource interface {
	AppliedFilters() (ragapi.FilterCriteria, bool)
}

// allowlistSource exposes the documents multi-selected in the registry
// view. Owned by the registry.
type allowlistSource interface {
	SelectedFilenames() []string
}

// IConversationService owns the chat transcript: an append-only,
// ordered sequence where every entry corresponds to an exchange the
// backend actually completed. It also owns the pending question input,
// which voice capture may overwrite.
type IConversationService interface {
	Ask(ctx context.Context, question string) (*dto.ExchangeResponse, error)
	Transcript() []ragapi.Message
	PendingInput() string
	SetPendingInput(text string)
	History() dto.ChatHistoryResponse
}

type conversationService struct {
	backend   ragapi.Backend
	filters   filterSource
	allowlist allowlistSource
	publisher *events.Publisher
	logger    logger.ILogger
	topK      int

	pane       pane
	transcript []ragapi.Message

	pendingMu sync.Mutex
	pending   string
}

func NewConversationService(
	backend ragapi.Backend,
	filters filterSource,
	allowlist allowlistSource,
	publisher *events.Publisher,
	topK int,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		backend:   backend,
		filters:   filters,
		allowlist: allowlist,
		publisher: publisher,
		topK:      topK,
		logger:    log,
	}
}

// Ask sends the full prior transcript plus the new user turn. On
// success exactly one user turn and one assistant turn are appended, in
// that order; a failed exchange leaves no record. Empty or
// whitespace-only input is a no-op: no call, no mutation.
func (s *conversationService) Ask(ctx context.Context, question string) (*dto.ExchangeResponse, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, nil
	}

	gen, ok := s.pane.tryBegin()
	if !ok {
		return nil, ErrQuestionInFlight
	}

	request := s.buildRequest(q)
	answer, err := s.backend.Answer(ctx, request)

	s.pane.finish(gen, err, func() {
		if err != nil {
			return
		}
		s.transcript = append(s.transcript,
			ragapi.Message{Role: ragapi.RoleUser, Content: q},
			ragapi.Message{Role: ragapi.RoleAssistant, Content: answer},
		)
	})
	if err != nil {
		return nil, err
	}

	s.SetPendingInput("")

	var turns int
	s.pane.do(func() { turns = len(s.transcript) })
	if err := s.publisher.Publish(ctx, events.NewTranscriptAppended(turns)); err != nil {
		s.logger.Warn("Conversation", "Failed to publish transcript event", map[string]interface{}{"error": err.Error()})
	}

	return &dto.ExchangeResponse{Question: q, Answer: answer}, nil
}

func (s *conversationService) buildRequest(question string) ragapi.AnswerRequest {
	request := ragapi.AnswerRequest{
		TopK: s.topK,
	}

	s.pane.do(func() {
		request.Messages = make([]ragapi.Message, 0, len(s.transcript)+1)
		request.Messages = append(request.Messages, s.transcript...)
	})
	request.Messages = append(request.Messages, ragapi.Message{Role: ragapi.RoleUser, Content: question})

	// Filters shape retrieval only once confirmed via a search action;
	// values merely selected in the dropdowns are excluded.
	if filters, applied := s.filters.AppliedFilters(); applied && !filters.Empty() {
		request.Country = filters.Country
		request.JobArea = filters.JobArea
		request.SourceType = filters.SourceType
	}

	if selected := s.allowlist.SelectedFilenames(); len(selected) > 0 {
		request.Filenames = selected
	}

	return request
}

func (s *conversationService) Transcript() []ragapi.Message {
	var snapshot []ragapi.Message
	s.pane.do(func() {
		snapshot = append(snapshot, s.transcript...)
	})
	return snapshot
}

func (s *conversationService) PendingInput() string {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.pending
}

// SetPendingInput replaces the pending question text. Voice capture
// feeds transcripts through here; it never touches the transcript.
func (s *conversationService) SetPendingInput(text string) {
	s.pendingMu.Lock()
	s.pending = text
	s.pendingMu.Unlock()
}

func (s *conversationService) History() dto.ChatHistoryResponse {
	phaseName, errMsg := s.pane.status()
	return dto.ChatHistoryResponse{
		Messages: s.Transcript(),
		Pending:  s.PendingInput(),
		Phase:    phaseName,
		Error:    errMsg,
	}
}
