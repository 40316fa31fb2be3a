package service

import (
	"context"
	"sort"
	"sync"

	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/pkg/events"
	"smartfusion-dashboard/pkg/ragapi"
)

// IRegistryService owns the authoritative list of stored documents as
// last fetched from the backend. It is the one piece of state more than
// one controller mutates, so the policy is refresh-wholesale: every
// mutation re-fetches the full listing, never patches it.
type IRegistryService interface {
	Refresh(ctx context.Context) ([]string, error)
	Documents() []string
	Remove(ctx context.Context, filename string, confirmed bool) error
	SetSelection(filenames []string)
	SelectedFilenames() []string
}

type registryService struct {
	backend   ragapi.Backend
	publisher *events.Publisher
	logger    logger.ILogger

	mu       sync.Mutex
	docs     []string
	selected map[string]struct{}
}

func NewRegistryService(backend ragapi.Backend, publisher *events.Publisher, log logger.ILogger) IRegistryService {
	return &registryService{
		backend:   backend,
		publisher: publisher,
		logger:    log,
		selected:  make(map[string]struct{}),
	}
}

// Refresh replaces the in-memory listing with the backend's current
// one, in the backend's order. The selection is pruned to names that
// still exist; nothing is ever merged locally.
func (s *registryService) Refresh(ctx context.Context) ([]string, error) {
	docs, err := s.backend.ListDocuments(ctx, ragapi.FilterCriteria{})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docs = docs
	known := make(map[string]struct{}, len(docs))
	for _, name := range docs {
		known[name] = struct{}{}
	}
	for name := range s.selected {
		if _, ok := known[name]; !ok {
			delete(s.selected, name)
		}
	}
	snapshot := make([]string, len(docs))
	copy(snapshot, docs)
	s.mu.Unlock()

	return snapshot, nil
}

func (s *registryService) Documents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]string, len(s.docs))
	copy(snapshot, s.docs)
	return snapshot
}

// Remove deletes one document and its derived chunks, then refreshes.
// The confirmed flag carries the view's interactive confirmation; a
// failed delete leaves the registry exactly as it was.
func (s *registryService) Remove(ctx context.Context, filename string, confirmed bool) error {
	if filename == "" {
		return serverutils.NewValidationError("filename is required")
	}
	if !confirmed {
		return serverutils.NewValidationError("deletion requires confirmation")
	}

	if err := s.backend.DeleteDocument(ctx, filename); err != nil {
		return err
	}

	s.logger.Info("Registry", "Document deleted", map[string]interface{}{"filename": filename})
	if err := s.publisher.Publish(ctx, events.NewDocumentDeleted(filename)); err != nil {
		s.logger.Warn("Registry", "Failed to publish delete event", map[string]interface{}{"error": err.Error()})
	}

	_, err := s.Refresh(ctx)
	return err
}

// SetSelection replaces the multi-select allow-list used to scope
// questions to specific documents.
func (s *registryService) SetSelection(filenames []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{}, len(filenames))
	for _, name := range filenames {
		s.selected[name] = struct{}{}
	}
}

func (s *registryService) SelectedFilenames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.selected))
	for name := range s.selected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
