package daemon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpdgoweb/internal/daemon/daemontest"
)

func TestStatusStoppedEmptyQueue(t *testing.T) {
	s := newTestSession(daemontest.New(library()...))

	st, err := s.Status()
	require.NoError(t, err)

	assert.Nil(t, st.Title)
	assert.Nil(t, st.Artist)
	assert.Nil(t, st.Album)
	assert.Equal(t, Stopped, st.PlayState)
	assert.False(t, st.HasNext)
	assert.False(t, st.HasPrev)
	assert.False(t, st.HasSong)
	assert.Nil(t, st.Elapsed)
	assert.Nil(t, st.Duration)
}

func TestStatusPlaying(t *testing.T) {
	d := daemontest.New(library()...)
	d.Enqueue("a/b2/01.flac", "a/b2/02.flac", "a/b2/03.flac")

	tests := []struct {
		name     string
		state    string
		pos      int
		hasNext  bool
		hasPrev  bool
		expected PlayState
	}{
		{"first", "play", 0, true, true, Playing},
		{"middle", "play", 1, true, true, Playing},
		{"last", "play", 2, false, true, Playing},
		{"paused middle", "pause", 1, true, true, Paused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.SetPlayback(tt.state, tt.pos)
			st, err := newTestSession(d).Status()
			require.NoError(t, err)

			assert.Equal(t, tt.expected, st.PlayState)
			assert.True(t, st.HasSong)
			assert.Equal(t, tt.hasNext, st.HasNext)
			assert.Equal(t, tt.hasPrev, st.HasPrev)
			require.NotNil(t, st.Artist)
			assert.Equal(t, "Alpha", *st.Artist)
			require.NotNil(t, st.Elapsed)
			assert.InDelta(t, 12.5, *st.Elapsed, 0.001)
		})
	}
}

func TestStatusStoppedNeverHasNextOrPrev(t *testing.T) {
	files := []string{"a/b2/01.flac", "a/b2/02.flac", "a/b2/03.flac", "a/b1/01.flac", "a/b0/01.flac", "b/x/01.flac"}

	for n := 0; n <= len(files); n++ {
		d := daemontest.New(library()...)
		d.Enqueue(files[:n]...)
		for pos := -1; pos < n; pos++ {
			d.SetPlayback("stop", pos)
			st, err := newTestSession(d).Status()
			require.NoError(t, err)
			assert.False(t, st.HasNext, "len=%d pos=%d", n, pos)
			assert.False(t, st.HasPrev, "len=%d pos=%d", n, pos)
			assert.Equal(t, pos >= 0, st.HasSong, "len=%d pos=%d", n, pos)
		}
	}
}

func TestStatusOptions(t *testing.T) {
	d := daemontest.New(library()...)
	d.SetOptions(true, false, "oneshot")

	st, err := newTestSession(d).Status()
	require.NoError(t, err)
	assert.True(t, st.Repeat)
	assert.False(t, st.Random)
	assert.Equal(t, SingleOneshot, st.SingleMode)
	assert.False(t, st.UpdatingDB)

	_, err = newTestSession(d).UpdateDB()
	require.NoError(t, err)
	st, err = newTestSession(d).Status()
	require.NoError(t, err)
	assert.True(t, st.UpdatingDB)
}

func TestStatusMalformedState(t *testing.T) {
	_, err := projectStatus(Attrs{"state": "spinning"}, Attrs{})

	require.Error(t, err)
}

func TestStatusDaemonFailure(t *testing.T) {
	d := daemontest.New()
	d.Err = errors.New("broken pipe")

	_, err := newTestSession(d).Status()

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "status", perr.Op)
}

func TestStatusBadPosition(t *testing.T) {
	_, err := projectStatus(
		Attrs{"state": "play", "song": "x", "playlistlength": "3"},
		Attrs{"Title": "t"},
	)

	require.Error(t, err)
}
