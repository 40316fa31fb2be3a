package service

import (
	"context"
	"strings"
	"sync"

	"smartfusion-dashboard/internal/pkg/logger"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/pkg/audio"
	"smartfusion-dashboard/pkg/ragapi"
)

// IPlaybackService manages at most one synthesized-speech session
// system-wide. Toggling while anything is active (playing or still
// fetching) always means "stop", regardless of which message the
// toggle was for.
type IPlaybackService interface {
	Toggle(ctx context.Context, text string) (started bool, err error)
	Active() bool
	LastError() string
}

type playbackService struct {
	backend ragapi.Backend
	player  audio.Player
	logger  logger.ILogger

	mu       sync.Mutex
	session  audio.Playback
	fetchGen uint64
	fetching bool
	lastErr  error
}

func NewPlaybackService(backend ragapi.Backend, player audio.Player, log logger.ILogger) IPlaybackService {
	return &playbackService{
		backend: backend,
		player:  player,
		logger:  log,
	}
}

// Toggle stops the active session if there is one; otherwise it fetches
// synthesized audio for the text and starts playback. Sessions are
// never queued or layered.
func (s *playbackService) Toggle(ctx context.Context, text string) (bool, error) {
	s.mu.Lock()

	if s.session != nil {
		session := s.session
		s.session = nil
		s.mu.Unlock()
		session.Stop()
		s.logger.Info("Playback", "Session stopped", nil)
		return false, nil
	}

	if s.fetching {
		// A fetch counts as the active session: supersede it so its
		// result is discarded when it lands.
		s.fetchGen++
		s.fetching = false
		s.mu.Unlock()
		return false, nil
	}

	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return false, serverutils.NewValidationError("nothing to play")
	}

	s.fetchGen++
	gen := s.fetchGen
	s.fetching = true
	s.mu.Unlock()

	clip, err := s.backend.Synthesize(ctx, text)

	s.mu.Lock()
	if gen != s.fetchGen {
		// Superseded while fetching; drop the clip on the floor.
		s.mu.Unlock()
		return false, nil
	}
	s.fetching = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return false, err
	}

	playback, err := s.player.Play(clip)
	if err != nil {
		// Never leave a non-playing session object alive.
		s.session = nil
		s.lastErr = err
		s.mu.Unlock()
		return false, err
	}
	s.session = playback
	s.lastErr = nil
	s.mu.Unlock()

	// Natural completion clears the session so the next toggle starts fresh.
	go func() {
		<-playback.Done()
		s.mu.Lock()
		if s.session == playback {
			s.session = nil
		}
		s.mu.Unlock()
	}()

	s.logger.Info("Playback", "Session started", map[string]interface{}{"bytes": len(clip)})
	return true, nil
}

func (s *playbackService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil || s.fetching
}

func (s *playbackService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		return ""
	}
	return s.lastErr.Error()
}
