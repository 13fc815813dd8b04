package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpdgoweb/internal/daemon/daemontest"
)

func TestParseSubsystem(t *testing.T) {
	assert.Equal(t, SubsystemQueue, ParseSubsystem("playlist"))
	assert.Equal(t, SubsystemPlayer, ParseSubsystem("player"))
	assert.Equal(t, SubsystemOptions, ParseSubsystem("options"))
	assert.Equal(t, SubsystemOther, ParseSubsystem("bogus"))
	assert.Equal(t, "queue", SubsystemQueue.String())
	assert.Equal(t, "mixer", SubsystemMixer.String())
}

func recv(t *testing.T, ch <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestBridgeForwardsThenCloses(t *testing.T) {
	names := make(chan string)
	errs := make(chan error)
	out := make(chan Event)
	done := make(chan struct{})
	go bridge(names, errs, out, done)

	names <- "player"
	ev, ok := recv(t, out)
	require.True(t, ok)
	assert.Equal(t, changed(SubsystemPlayer), ev)

	names <- "playlist"
	ev, _ = recv(t, out)
	assert.Equal(t, SubsystemQueue, ev.Subsystem)

	boom := errors.New("EOF")
	errs <- boom
	ev, ok = recv(t, out)
	require.True(t, ok)
	assert.Equal(t, StreamClosed, ev.Kind)
	assert.ErrorIs(t, ev.Reason, boom)

	_, ok = recv(t, out)
	assert.False(t, ok)
}

func TestBridgeWatcherChannelClosed(t *testing.T) {
	names := make(chan string)
	out := make(chan Event)
	go bridge(names, make(chan error), out, make(chan struct{}))

	close(names)
	ev, ok := recv(t, out)
	require.True(t, ok)
	assert.Equal(t, StreamClosed, ev.Kind)
	assert.ErrorIs(t, ev.Reason, errWatcherClosed)
}

func TestBridgeStopsOnDone(t *testing.T) {
	names := make(chan string, 1)
	out := make(chan Event)
	done := make(chan struct{})
	go bridge(names, make(chan error), out, done)

	names <- "player"
	close(done)

	// either the pending event was dropped or delivered; the channel must close
	for {
		_, ok := recv(t, out)
		if !ok {
			return
		}
	}
}

func TestSessionCloseOnce(t *testing.T) {
	d := daemontest.New()
	calls := 0
	s := NewSession(d, nil, func() error {
		calls++
		return d.Close()
	})

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, calls)
	assert.True(t, d.Closed())

	plain := NewSession(daemontest.New(), nil, nil)
	require.NoError(t, plain.Close())
}

func TestNetworkFor(t *testing.T) {
	assert.Equal(t, "unix", networkFor("/run/mpd/socket"))
	assert.Equal(t, "unix", networkFor("@mpd"))
	assert.Equal(t, "tcp", networkFor("localhost:6600"))
}

func TestConnectRefused(t *testing.T) {
	c := NewConnector("127.0.0.1:1", "")

	_, err := c.Connect(testContext(t))

	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "127.0.0.1:1", cerr.Addr)
}

type stubDialer struct {
	d   *daemontest.Daemon
	err error
}

func (s stubDialer) Connect(context.Context) (*Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return NewSession(s.d, nil, nil), nil
}

func TestDoClosesSession(t *testing.T) {
	d := daemontest.New(library()...)

	var artists []string
	err := Do(testContext(t), stubDialer{d: d}, func(s *Session) error {
		var err error
		artists, err = s.Artists("")
		return err
	})

	require.NoError(t, err)
	assert.Len(t, artists, 2)
	assert.True(t, d.Closed())
}

func TestDoConnectFailure(t *testing.T) {
	want := &ConnectionError{Addr: "x", Err: errors.New("refused")}
	called := false

	err := Do(testContext(t), stubDialer{err: want}, func(*Session) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, want)
	assert.False(t, called)
}

func TestArtSource(t *testing.T) {
	d := daemontest.New(library()...)
	d.SetArt("b/x/01.flac", []byte{1, 2, 3})

	art, err := ArtSource{Dialer: stubDialer{d: d}}.AlbumArt(testContext(t), "beta band", "X")

	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, art)
	assert.True(t, d.Closed())
}
