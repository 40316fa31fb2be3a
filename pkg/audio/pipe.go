package audio

import (
	"context"
	"sync"
)

// PipeSource is a Source fed from outside the process: the view layer
// pushes recorded chunks into it while the capture controller drains
// them. It enforces the single-open-stream rule itself, so callers get
// ErrDeviceBusy instead of a second session.
type PipeSource struct {
	mu      sync.Mutex
	current *pipeStream
}

func NewPipeSource() *PipeSource {
	return &PipeSource{}
}

func (s *PipeSource) Open(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return nil, ErrDeviceBusy
	}
	stream := &pipeStream{
		chunks: make(chan []byte, 64),
		owner:  s,
	}
	s.current = stream
	return stream, nil
}

// Push hands one recorded chunk to the open stream. Fails with
// ErrStreamClosed when no recording session is active.
func (s *PipeSource) Push(chunk []byte) error {
	s.mu.Lock()
	stream := s.current
	s.mu.Unlock()
	if stream == nil {
		return ErrStreamClosed
	}
	return stream.push(chunk)
}

func (s *PipeSource) release(stream *pipeStream) {
	s.mu.Lock()
	if s.current == stream {
		s.current = nil
	}
	s.mu.Unlock()
}

type pipeStream struct {
	mu     sync.Mutex
	chunks chan []byte
	closed bool
	owner  *PipeSource
}

func (p *pipeStream) Chunks() <-chan []byte {
	return p.chunks
}

func (p *pipeStream) push(chunk []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrStreamClosed
	}
	// Copy: the caller may reuse its buffer.
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	select {
	case p.chunks <- buf:
		return nil
	default:
		// Consumer stalled; drop rather than block the view layer.
		return nil
	}
}

func (p *pipeStream) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.chunks)
	p.mu.Unlock()

	p.owner.release(p)
	return nil
}
