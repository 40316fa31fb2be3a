package audio

import (
	"sync"
)

// ClipPlayer is a Player for the browser-rendered dashboard: Play
// stages the clip, the view fetches it once via Take, and serving it
// counts as natural completion. Stop discards the staged clip.
type ClipPlayer struct {
	mu      sync.Mutex
	session *clipPlayback
}

func NewClipPlayer() *ClipPlayer {
	return &ClipPlayer{}
}

func (p *ClipPlayer) Play(clip []byte) (Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	session := &clipPlayback{
		clip:  clip,
		done:  make(chan struct{}),
		owner: p,
	}
	p.session = session
	return session, nil
}

// Take returns the staged clip and marks the session complete. Second
// call (or call with nothing staged) returns false.
func (p *ClipPlayer) Take() ([]byte, bool) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()
	if session == nil {
		return nil, false
	}
	return session.take()
}

func (p *ClipPlayer) release(session *clipPlayback) {
	p.mu.Lock()
	if p.session == session {
		p.session = nil
	}
	p.mu.Unlock()
}

type clipPlayback struct {
	mu    sync.Mutex
	clip  []byte
	done  chan struct{}
	ended bool
	owner *ClipPlayer
}

func (c *clipPlayback) take() ([]byte, bool) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return nil, false
	}
	clip := c.clip
	c.finishLocked()
	c.mu.Unlock()
	c.owner.release(c)
	return clip, true
}

func (c *clipPlayback) Stop() {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.finishLocked()
	c.mu.Unlock()
	c.owner.release(c)
}

func (c *clipPlayback) Done() <-chan struct{} {
	return c.done
}

func (c *clipPlayback) finishLocked() {
	c.ended = true
	c.clip = nil
	close(c.done)
}
