// Package audio is the device boundary between the capture/playback
// controllers and whatever actually produces or consumes sound. The
// dashboard's browser records and plays the audio; this package only
// models the exclusive-ownership semantics the controllers need.
package audio

import (
	"context"
	"errors"
)

var (
	// ErrDeviceBusy means a second stream was requested while one is open.
	ErrDeviceBusy = errors.New("audio: input device already in use")
	// ErrStreamClosed means a chunk arrived after the stream was stopped.
	ErrStreamClosed = errors.New("audio: stream closed")
)

// Stream is one live recording session. Chunks() yields raw audio
// chunks in capture order until Close releases the device.
type Stream interface {
	Chunks() <-chan []byte
	Close() error
}

// Source acquires the audio input device. At most one open Stream per
// Source; Open fails with ErrDeviceBusy while one is alive.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Playback is one active synthesized-speech session.
type Playback interface {
	// Stop discards the session immediately.
	Stop()
	// Done is closed when playback finishes, naturally or via Stop.
	Done() <-chan struct{}
}

// Player starts playback of one fetched clip.
type Player interface {
	Play(clip []byte) (Playback, error)
}
