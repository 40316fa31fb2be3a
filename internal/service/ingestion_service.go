package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"smartfusion-dashboard/internal/config"
	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/pkg/events"
	"smartfusion-dashboard/pkg/ragapi"
)

// FileUpload is one staged local file.
type FileUpload struct {
	Name string
	Data []byte
}

// Submission is the upload pane's input: either staged files or a link
// in the text field, plus the metadata assigned at ingestion time.
type Submission struct {
	Files      []FileUpload
	Text       string
	Country    string
	JobArea    string
	SourceType string
}

// IIngestionService submits documents to the backend one at a time and
// folds successes into the document registry.
type IIngestionService interface {
	Submit(ctx context.Context, sub Submission) error
	Status() dto.IngestionStatus
}

type ingestionService struct {
	backend   ragapi.Backend
	registry  IRegistryService
	publisher *events.Publisher
	logger    logger.ILogger
	defaults  config.IngestConfig

	pane   pane
	recent []string
}

func NewIngestionService(
	backend ragapi.Backend,
	registry IRegistryService,
	publisher *events.Publisher,
	defaults config.IngestConfig,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		backend:   backend,
		registry:  registry,
		publisher: publisher,
		defaults:  defaults,
		logger:    log,
	}
}

// Submit runs the whole upload flow: files take precedence, otherwise
// the text field must hold an absolute HTTP(S) URL. Files go up
// sequentially and the first failure aborts the rest of the batch;
// files the backend already accepted stay ingested (ingestion is not
// transactional). Only a fully successful submission refreshes the
// registry.
func (s *ingestionService) Submit(ctx context.Context, sub Submission) error {
	gen, ok := s.pane.tryBegin()
	if !ok {
		return ErrSubmissionInFlight
	}

	var submitted []string
	err := s.submit(ctx, sub, &submitted)

	s.pane.finish(gen, err, func() {
		s.recent = append(s.recent, submitted...)
	})
	return err
}

func (s *ingestionService) submit(ctx context.Context, sub Submission, submitted *[]string) error {
	switch {
	case len(sub.Files) > 0:
		if len(sub.Files) > s.defaults.MaxFiles {
			return serverutils.NewValidationError(
				fmt.Sprintf("at most %d files per submission", s.defaults.MaxFiles))
		}
		// One at a time, in order. Deterministic partial failure: stop
		// at the first rejected file, do not submit the remainder.
		for _, file := range sub.Files {
			ingest := ragapi.IngestFileRequest{
				Filename:    file.Name,
				Data:        file.Data,
				Country:     sub.Country,
				JobArea:     sub.JobArea,
				SourceType:  sub.SourceType,
				TargetGroup: s.defaults.TargetGroup,
				Owner:       s.defaults.Owner,
			}
			if err := s.backend.IngestFile(ctx, ingest); err != nil {
				s.logger.Error("Ingestion", "File rejected", map[string]interface{}{
					"filename": file.Name, "error": err.Error(),
				})
				return err
			}
		}
		for _, file := range sub.Files {
			*submitted = append(*submitted, file.Name)
		}

	case isAbsoluteHTTPURL(sub.Text):
		link := strings.TrimSpace(sub.Text)
		ingest := ragapi.IngestURLRequest{
			URL:     link,
			Country: sub.Country,
			JobArea: sub.JobArea,
			// Web pages are always stored as html regardless of the
			// selected source type.
			SourceType:  "html",
			TargetGroup: s.defaults.TargetGroup,
			Owner:       s.defaults.Owner,
		}
		if err := s.backend.IngestURL(ctx, ingest); err != nil {
			return err
		}
		*submitted = append(*submitted, link)

	default:
		return serverutils.NewValidationError(
			"select a file or enter a valid URL (starting with http:// or https://)")
	}

	s.logger.Info("Ingestion", "Submission accepted", map[string]interface{}{"names": *submitted})
	if err := s.publisher.Publish(ctx, events.NewDocumentIngested(*submitted)); err != nil {
		s.logger.Warn("Ingestion", "Failed to publish ingest event", map[string]interface{}{"error": err.Error()})
	}

	if _, err := s.registry.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh registry after ingest: %w", err)
	}
	return nil
}

func (s *ingestionService) Status() dto.IngestionStatus {
	phaseName, errMsg := s.pane.status()
	status := dto.IngestionStatus{
		InFlight: phaseName == "in_flight",
		Error:    errMsg,
	}
	s.pane.do(func() {
		status.RecentlySubmitted = append([]string(nil), s.recent...)
	})
	return status
}

func isAbsoluteHTTPURL(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}
