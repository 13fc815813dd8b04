package push

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpdgoweb/internal/daemon"
	"mpdgoweb/internal/daemon/daemontest"
)

type fakeDialer struct {
	d      *daemontest.Daemon
	events chan daemon.Event
	err    error
}

func (f *fakeDialer) Connect(context.Context) (*daemon.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return daemon.NewSession(f.d, f.events, nil), nil
}

type fakeSender struct {
	mu     sync.Mutex
	frames chan []byte
	err    error
}

func newSender() *fakeSender {
	return &fakeSender{frames: make(chan []byte, 16)}
}

func (f *fakeSender) Send(ctx context.Context, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames <- frame
	return nil
}

func (f *fakeSender) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func next(t *testing.T, ch <-chan []byte) map[string]any {
	t.Helper()
	select {
	case b := <-ch:
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no frame")
		return nil
	}
}

func noFrame(t *testing.T, ch <-chan []byte) {
	t.Helper()
	select {
	case b := <-ch:
		t.Fatalf("unexpected frame %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func fixture() *daemontest.Daemon {
	d := daemontest.New(
		daemontest.Track{File: "1.flac", Title: "One", Artist: "A", Album: "B", Track: "1"},
		daemontest.Track{File: "2.flac", Title: "Two", Artist: "A", Album: "B", Track: "2"},
	)
	d.Enqueue("1.flac", "2.flac")
	d.SetPlayback("play", 0)
	return d
}

func start(t *testing.T, l *Loop) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
		return nil
	}
}

func TestChannelQualifies(t *testing.T) {
	assert.True(t, StatusChannel.Qualifies(daemon.SubsystemPlayer))
	assert.True(t, StatusChannel.Qualifies(daemon.SubsystemQueue))
	assert.False(t, StatusChannel.Qualifies(daemon.SubsystemOptions))
	assert.False(t, StatusChannel.Qualifies(daemon.SubsystemMixer))

	assert.True(t, PlaylistChannel.Qualifies(daemon.SubsystemPlayer))
	assert.True(t, PlaylistChannel.Qualifies(daemon.SubsystemQueue))
	assert.True(t, PlaylistChannel.Qualifies(daemon.SubsystemOptions))
	assert.False(t, PlaylistChannel.Qualifies(daemon.SubsystemDatabase))
}

func TestStatusLoopPushesOnQualifyingChanges(t *testing.T) {
	d := fixture()
	events := make(chan daemon.Event)
	sender := newSender()
	l := NewLoop(StatusChannel, &fakeDialer{d: d, events: events}, sender)
	done := start(t, l)

	first := next(t, sender.frames)
	assert.Equal(t, "status", first["type"])
	assert.Equal(t, "One", first["status"].(map[string]any)["title"])
	assert.Equal(t, Streaming, l.State())

	d.SetPlayback("play", 1)
	events <- daemon.Event{Kind: daemon.SubsystemChanged, Subsystem: daemon.SubsystemMixer}
	noFrame(t, sender.frames)

	events <- daemon.Event{Kind: daemon.SubsystemChanged, Subsystem: daemon.SubsystemPlayer}
	second := next(t, sender.frames)
	assert.Equal(t, "Two", second["status"].(map[string]any)["title"])

	events <- daemon.Event{Kind: daemon.StreamClosed, Reason: errors.New("EOF")}
	err := wait(t, done)
	assert.ErrorIs(t, err, ErrStreamEnded)
	assert.Equal(t, Closed, l.State())
	assert.True(t, d.Closed())
}

func TestPlaylistLoopPushesOnOptions(t *testing.T) {
	d := fixture()
	events := make(chan daemon.Event)
	sender := newSender()
	done := start(t, NewLoop(PlaylistChannel, &fakeDialer{d: d, events: events}, sender))

	first := next(t, sender.frames)
	assert.Equal(t, "playlist", first["type"])
	assert.Len(t, first["songs"], 2)

	events <- daemon.Event{Kind: daemon.SubsystemChanged, Subsystem: daemon.SubsystemOptions}
	next(t, sender.frames)

	close(events)
	assert.ErrorIs(t, wait(t, done), ErrStreamEnded)
}

func TestConnectFailureClosesSilently(t *testing.T) {
	sender := newSender()
	want := &daemon.ConnectionError{Addr: "x", Err: errors.New("refused")}
	l := NewLoop(StatusChannel, &fakeDialer{err: want}, sender)

	err := l.Run(context.Background())

	assert.ErrorIs(t, err, want)
	assert.Equal(t, Closed, l.State())
	noFrame(t, sender.frames)
}

func TestSendFailureCloses(t *testing.T) {
	d := fixture()
	events := make(chan daemon.Event)
	sender := newSender()
	done := start(t, NewLoop(StatusChannel, &fakeDialer{d: d, events: events}, sender))
	next(t, sender.frames)

	sender.fail(errors.New("browser gone"))
	events <- daemon.Event{Kind: daemon.SubsystemChanged, Subsystem: daemon.SubsystemQueue}

	err := wait(t, done)
	assert.ErrorContains(t, err, "browser gone")
	assert.True(t, d.Closed())
}

func TestInitialSendFailureCloses(t *testing.T) {
	sender := newSender()
	sender.fail(errors.New("nope"))

	err := NewLoop(StatusChannel, &fakeDialer{d: fixture(), events: make(chan daemon.Event)}, sender).
		Run(context.Background())

	assert.ErrorContains(t, err, "nope")
}

func TestProjectionFailureCloses(t *testing.T) {
	d := fixture()
	d.Err = errors.New("ACK [5@0] {} unknown command")

	err := NewLoop(PlaylistChannel, &fakeDialer{d: d, events: make(chan daemon.Event)}, newSender()).
		Run(context.Background())

	var perr *daemon.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestContextCancelCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := newSender()
	l := NewLoop(StatusChannel, &fakeDialer{d: fixture(), events: make(chan daemon.Event)}, sender)
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	next(t, sender.frames)

	cancel()

	assert.ErrorIs(t, wait(t, done), context.Canceled)
}

func TestRenderStatusRejectsNaN(t *testing.T) {
	nan := math.NaN()

	_, err := RenderStatus(&daemon.Status{Elapsed: &nan})

	var rerr *RenderError
	assert.ErrorAs(t, err, &rerr)
}

func TestRenderPlaylistEmptyIsArray(t *testing.T) {
	b, err := RenderPlaylist(nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"playlist","songs":[]}`, string(b))
}
