package service

import (
	"context"

	"smartfusion-dashboard/pkg/events"
	"smartfusion-dashboard/pkg/ragapi"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// fakeBackend lets each test wire just the endpoints it cares about.
// Unwired endpoints return zero values.
type fakeBackend struct {
	listDocuments  func(ctx context.Context, filters ragapi.FilterCriteria) ([]string, error)
	deleteDocument func(ctx context.Context, filename string) error
	ingestFile     func(ctx context.Context, req ragapi.IngestFileRequest) error
	ingestURL      func(ctx context.Context, req ragapi.IngestURLRequest) error
	search         func(ctx context.Context, question string, k int, filters ragapi.FilterCriteria) ([]ragapi.SearchResult, error)
	metadata       func(ctx context.Context) (*ragapi.MetadataOptions, error)
	answer         func(ctx context.Context, req ragapi.AnswerRequest) (string, error)
	transcribe     func(ctx context.Context, clip []byte) (string, error)
	synthesize     func(ctx context.Context, text string) ([]byte, error)
}

var _ ragapi.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) ListDocuments(ctx context.Context, filters ragapi.FilterCriteria) ([]string, error) {
	if f.listDocuments == nil {
		return nil, nil
	}
	return f.listDocuments(ctx, filters)
}

func (f *fakeBackend) DeleteDocument(ctx context.Context, filename string) error {
	if f.deleteDocument == nil {
		return nil
	}
	return f.deleteDocument(ctx, filename)
}

func (f *fakeBackend) IngestFile(ctx context.Context, req ragapi.IngestFileRequest) error {
	if f.ingestFile == nil {
		return nil
	}
	return f.ingestFile(ctx, req)
}

func (f *fakeBackend) IngestURL(ctx context.Context, req ragapi.IngestURLRequest) error {
	if f.ingestURL == nil {
		return nil
	}
	return f.ingestURL(ctx, req)
}

func (f *fakeBackend) Search(ctx context.Context, question string, k int, filters ragapi.FilterCriteria) ([]ragapi.SearchResult, error) {
	if f.search == nil {
		return nil, nil
	}
	return f.search(ctx, question, k, filters)
}

func (f *fakeBackend) Metadata(ctx context.Context) (*ragapi.MetadataOptions, error) {
	if f.metadata == nil {
		return &ragapi.MetadataOptions{}, nil
	}
	return f.metadata(ctx)
}

func (f *fakeBackend) Answer(ctx context.Context, req ragapi.AnswerRequest) (string, error) {
	if f.answer == nil {
		return "", nil
	}
	return f.answer(ctx, req)
}

func (f *fakeBackend) Transcribe(ctx context.Context, clip []byte) (string, error) {
	if f.transcribe == nil {
		return "", nil
	}
	return f.transcribe(ctx, clip)
}

func (f *fakeBackend) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if f.synthesize == nil {
		return nil, nil
	}
	return f.synthesize(ctx, text)
}

// nopLogger keeps service tests quiet.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestPublisher() *events.Publisher {
	return events.NewPublisher(gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}))
}
