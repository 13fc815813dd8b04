package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpdgoweb/internal/daemon/daemontest"
)

func TestPlaylistOrderAndIDs(t *testing.T) {
	d := daemontest.New(library()...)
	ids := d.Enqueue("b/x/01.flac", "a/b2/01.flac")

	songs, err := newTestSession(d).Playlist()
	require.NoError(t, err)

	require.Len(t, songs, 2)
	assert.Equal(t, SongInQueue{ID: ids[0], Title: "Lone", Artist: "beta band"}, songs[0])
	assert.Equal(t, SongInQueue{ID: ids[1], Title: "First", Artist: "Alpha"}, songs[1])
}

func TestPlaylistPlayingFlag(t *testing.T) {
	files := []string{"a/b2/01.flac", "a/b2/02.flac", "a/b2/03.flac"}

	for _, state := range []string{"play", "pause", "stop"} {
		for n := 0; n <= len(files); n++ {
			for pos := -1; pos < n; pos++ {
				d := daemontest.New(library()...)
				d.Enqueue(files[:n]...)
				d.SetPlayback(state, pos)

				songs, err := newTestSession(d).Playlist()
				require.NoError(t, err)

				playing := 0
				for i, s := range songs {
					if s.Playing {
						playing++
						assert.Equal(t, pos, i)
					}
				}
				want := 0
				if state != "stop" && pos >= 0 {
					want = 1
				}
				assert.Equal(t, want, playing, "state=%s len=%d pos=%d", state, n, pos)
			}
		}
	}
}

func TestPlaylistEmpty(t *testing.T) {
	songs, err := newTestSession(daemontest.New()).Playlist()

	require.NoError(t, err)
	assert.Empty(t, songs)
	assert.NotNil(t, songs)
}
