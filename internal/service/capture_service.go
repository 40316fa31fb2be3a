package service

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/pkg/audio"
	"smartfusion-dashboard/pkg/ragapi"
)

// pendingSink receives the transcript of a finished recording. The
// capture controller only ever feeds the pending input; submitting the
// question stays a separate, user-confirmed action.
type pendingSink interface {
	SetPendingInput(text string)
}

// ICaptureService is a two-state machine (Idle, Recording) driven by a
// single toggle. At most one recording session exists; the toggle
// itself encodes which transition applies.
type ICaptureService interface {
	Toggle(ctx context.Context) (recording bool, err error)
	Recording() bool
	LastError() string
}

type captureService struct {
	backend ragapi.Backend
	source  audio.Source
	sink    pendingSink
	logger  logger.ILogger

	mu      sync.Mutex
	session *recordingSession
	lastErr error
}

// recordingSession owns the open stream and accumulates chunks until
// the stream closes. It is destroyed on stop, success or error alike.
type recordingSession struct {
	stream audio.Stream
	done   chan struct{}
	chunks [][]byte
}

func (r *recordingSession) drain() {
	for chunk := range r.stream.Chunks() {
		r.chunks = append(r.chunks, chunk)
	}
	close(r.done)
}

func NewCaptureService(backend ragapi.Backend, source audio.Source, sink pendingSink, log logger.ILogger) ICaptureService {
	return &captureService{
		backend: backend,
		source:  source,
		sink:    sink,
		logger:  log,
	}
}

// Toggle starts a session when idle, stops and transcribes when
// recording. Returns whether a recording is active after the call.
func (s *captureService) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.session == nil {
		stream, err := s.source.Open(ctx)
		if err != nil {
			// Device unavailable: stay Idle.
			wrapped := fmt.Errorf("acquire audio input: %w", err)
			s.lastErr = wrapped
			s.mu.Unlock()
			return false, wrapped
		}
		session := &recordingSession{stream: stream, done: make(chan struct{})}
		s.session = session
		s.lastErr = nil
		s.mu.Unlock()

		go session.drain()
		s.logger.Info("Capture", "Recording started", nil)
		return true, nil
	}

	// Stop: the session is gone from this point on, whatever happens to
	// the transcription below.
	session := s.session
	s.session = nil
	s.mu.Unlock()

	session.stream.Close()
	<-session.done
	clip := bytes.Join(session.chunks, nil)
	s.logger.Info("Capture", "Recording stopped", map[string]interface{}{"bytes": len(clip)})

	if len(clip) == 0 {
		err := serverutils.NewValidationError("no audio captured")
		s.setLastError(err)
		return false, err
	}

	transcript, err := s.backend.Transcribe(ctx, clip)
	if err != nil {
		// The previous pending-question text stays as it was.
		s.setLastError(err)
		return false, err
	}

	s.sink.SetPendingInput(transcript)
	s.setLastError(nil)
	return false, nil
}

func (s *captureService) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

func (s *captureService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		return ""
	}
	return s.lastErr.Error()
}

func (s *captureService) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
