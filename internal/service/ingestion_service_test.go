package service

import (
	"context"
	"errors"
	"testing"

	"smartfusion-dashboard/internal/config"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/pkg/ragapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngestDefaults() config.IngestConfig {
	return config.IngestConfig{TargetGroup: "Students", Owner: "Ketan", MaxFiles: 5}
}

func newIngestionFixture(backend *fakeBackend) (IIngestionService, IRegistryService) {
	registry := NewRegistryService(backend, newTestPublisher(), nopLogger{})
	return NewIngestionService(backend, registry, newTestPublisher(), testIngestDefaults(), nopLogger{}), registry
}

func TestSubmitFilesSequentiallyStopsOnFirstFailure(t *testing.T) {
	var uploaded []string
	backend := &fakeBackend{
		ingestFile: func(ctx context.Context, req ragapi.IngestFileRequest) error {
			if req.Filename == "bad.pdf" {
				return errors.New("unsupported format")
			}
			uploaded = append(uploaded, req.Filename)
			return nil
		},
	}
	svc, _ := newIngestionFixture(backend)

	sub := Submission{
		Files: []FileUpload{
			{Name: "a.pdf", Data: []byte("a")},
			{Name: "bad.pdf", Data: []byte("b")},
			{Name: "c.pdf", Data: []byte("c")},
		},
		Country: "Germany", JobArea: "Engineering", SourceType: "report",
	}
	err := svc.Submit(context.Background(), sub)

	require.Error(t, err)
	assert.Equal(t, []string{"a.pdf"}, uploaded, "files after the failure must not be submitted")
	status := svc.Status()
	assert.False(t, status.InFlight)
	assert.Empty(t, status.RecentlySubmitted)
	assert.NotEmpty(t, status.Error)
}

func TestSubmitFilesCarriesMetadataAndDefaults(t *testing.T) {
	backend := &fakeBackend{
		ingestFile: func(ctx context.Context, req ragapi.IngestFileRequest) error {
			assert.Equal(t, "Germany", req.Country)
			assert.Equal(t, "Engineering", req.JobArea)
			assert.Equal(t, "report", req.SourceType)
			assert.Equal(t, "Students", req.TargetGroup)
			assert.Equal(t, "Ketan", req.Owner)
			return nil
		},
		listDocuments: func(ctx context.Context, filters ragapi.FilterCriteria) ([]string, error) {
			return []string{"a.pdf"}, nil
		},
	}
	svc, registry := newIngestionFixture(backend)

	err := svc.Submit(context.Background(), Submission{
		Files:   []FileUpload{{Name: "a.pdf", Data: []byte("a")}},
		Country: "Germany", JobArea: "Engineering", SourceType: "report",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.pdf"}, registry.Documents(), "success refreshes the registry")
	assert.Equal(t, []string{"a.pdf"}, svc.Status().RecentlySubmitted)
}

func TestSubmitRejectsOverMaxFiles(t *testing.T) {
	backend := &fakeBackend{
		ingestFile: func(ctx context.Context, req ragapi.IngestFileRequest) error {
			t.Fatal("no file should reach the backend")
			return nil
		},
	}
	svc, _ := newIngestionFixture(backend)

	files := make([]FileUpload, 6)
	for i := range files {
		files[i] = FileUpload{Name: "f.pdf", Data: []byte("x")}
	}
	err := svc.Submit(context.Background(), Submission{Files: files, Country: "DE", JobArea: "HR", SourceType: "report"})

	var validationErr *serverutils.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitURLForcesHTMLSourceType(t *testing.T) {
	var got ragapi.IngestURLRequest
	backend := &fakeBackend{
		ingestURL: func(ctx context.Context, req ragapi.IngestURLRequest) error {
			got = req
			return nil
		},
	}
	svc, _ := newIngestionFixture(backend)

	err := svc.Submit(context.Background(), Submission{
		Text:    "  https://example.com/handbook  ",
		Country: "Germany", JobArea: "HR", SourceType: "report",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/handbook", got.URL)
	assert.Equal(t, "html", got.SourceType, "web pages are always stored as html")
}

func TestSubmitWithoutFilesOrURLFailsValidation(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "plain words", text: "not a link"},
		{name: "relative url", text: "/docs/handbook"},
		{name: "missing host", text: "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newIngestionFixture(&fakeBackend{})
			err := svc.Submit(context.Background(), Submission{Text: tt.text, Country: "DE", JobArea: "HR", SourceType: "report"})

			var validationErr *serverutils.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestSubmitRejectsOverlappingSubmission(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{
		ingestFile: func(ctx context.Context, req ragapi.IngestFileRequest) error {
			close(started)
			<-release
			return nil
		},
	}
	svc, _ := newIngestionFixture(backend)

	done := make(chan error, 1)
	go func() {
		done <- svc.Submit(context.Background(), Submission{
			Files:   []FileUpload{{Name: "slow.pdf", Data: []byte("x")}},
			Country: "DE", JobArea: "HR", SourceType: "report",
		})
	}()
	<-started

	err := svc.Submit(context.Background(), Submission{
		Files:   []FileUpload{{Name: "second.pdf", Data: []byte("y")}},
		Country: "DE", JobArea: "HR", SourceType: "report",
	})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
}
