package daemon

import (
	"mpdgoweb/internal/daemon/daemontest"
)

var _ Conn = (*daemontest.Daemon)(nil)

// library is shared by the projection, library and control tests. Tracks
// are deliberately listed out of track order.
func library() []daemontest.Track {
	return []daemontest.Track{
		{File: "a/b2/03.flac", Title: "Third", Artist: "Alpha", Album: "Second", Track: "3/3", Date: "2004-05-01"},
		{File: "a/b2/01.flac", Title: "First", Artist: "Alpha", Album: "Second", Track: "1/3", Date: "2004"},
		{File: "a/b2/02.flac", Title: "Second", Artist: "Alpha", Album: "Second", Track: "2/3", Date: "2004"},
		{File: "a/b1/01.flac", Title: "Opener", Artist: "Alpha", Album: "First", Track: "1", Date: "1999"},
		{File: "a/b0/01.flac", Title: "Demo", Artist: "Alpha", Album: "Demos"},
		{File: "b/x/01.flac", Title: "Lone", Artist: "beta band", Album: "X", Track: "1", Date: "2010"},
	}
}

func newTestSession(d *daemontest.Daemon) *Session {
	return NewSession(d, make(chan Event), nil)
}
