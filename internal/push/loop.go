// Package push drives one browser push channel: it owns a daemon session,
// sends a full projection on connect and again after every change the
// channel cares about, and stops for good on the first failure.
package push

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"

	"mpdgoweb/internal/daemon"
)

// Channel selects which projection a loop serves.
type Channel int

const (
	StatusChannel Channel = iota
	PlaylistChannel
)

func (c Channel) String() string {
	if c == PlaylistChannel {
		return "playlist"
	}
	return "status"
}

// Qualifies reports whether a change in s requires a resend on c.
func (c Channel) Qualifies(s daemon.Subsystem) bool {
	switch s {
	case daemon.SubsystemPlayer, daemon.SubsystemQueue:
		return true
	case daemon.SubsystemOptions:
		return c == PlaylistChannel
	}
	return false
}

// State is a loop's lifecycle position. Closed is terminal.
type State int32

const (
	Connecting State = iota
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	default:
		return "closed"
	}
}

// Sender delivers one rendered frame to the browser.
type Sender interface {
	Send(ctx context.Context, frame []byte) error
}

var ErrStreamEnded = errors.New("event stream ended")

// Loop is one push channel. Run it once; it does not reconnect.
type Loop struct {
	ID      string
	Channel Channel
	Dialer  daemon.Dialer
	Sender  Sender
	Verbose bool

	state atomic.Int32
}

func NewLoop(ch Channel, d daemon.Dialer, s Sender) *Loop {
	return &Loop{ID: uuid.NewString(), Channel: ch, Dialer: d, Sender: s}
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
	if l.Verbose {
		log.Printf("[push %s] %s: %s", l.ID, l.Channel, s)
	}
}

// Run connects, streams until the session, the sender or ctx ends, and
// returns why it stopped. A failed connect returns before anything is sent.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(Connecting)
	defer l.setState(Closed)

	s, err := l.Dialer.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && l.Verbose {
			log.Printf("[push %s] session close: %v", l.ID, cerr)
		}
	}()

	l.setState(Streaming)
	if err := l.push(ctx, s); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.Events():
			if !ok {
				return ErrStreamEnded
			}
			if ev.Kind == daemon.StreamClosed {
				return fmt.Errorf("%w: %v", ErrStreamEnded, ev.Reason)
			}
			if !l.Channel.Qualifies(ev.Subsystem) {
				continue
			}
			if l.Verbose {
				log.Printf("[push %s] %s changed", l.ID, ev.Subsystem)
			}
			if err := l.push(ctx, s); err != nil {
				return err
			}
		}
	}
} // func (l *Loop) Run

// push recomputes the projection from scratch and sends it.
func (l *Loop) push(ctx context.Context, s *daemon.Session) error {
	var (
		frame []byte
		err   error
	)
	switch l.Channel {
	case PlaylistChannel:
		songs, perr := s.Playlist()
		if perr != nil {
			return perr
		}
		frame, err = RenderPlaylist(songs)
	default:
		st, perr := s.Status()
		if perr != nil {
			return perr
		}
		frame, err = RenderStatus(st)
	}
	if err != nil {
		return err
	}
	if err := l.Sender.Send(ctx, frame); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}
