package daemon

import (
	gompd "github.com/fhs/gompd/v2/mpd"
)

// Attrs is one MPD response object (status fields, song tags, ...).
type Attrs = gompd.Attrs

// Conn is the command side of a daemon connection: the raw queries and
// commands the dashboard issues. The gompd client satisfies it through
// gompdConn; tests use the stub in daemontest.
type Conn interface {
	// StatusAndCurrentSong runs status and currentsong in one command list.
	StatusAndCurrentSong() (status, song Attrs, err error)
	// QueueAndStatus returns the full queue and the status that names its
	// current song.
	QueueAndStatus() (queue []Attrs, status Attrs, err error)
	Status() (Attrs, error)
	Stats() (Attrs, error)

	List(args ...string) ([]string, error)
	Find(args ...string) ([]Attrs, error)
	AlbumArt(uri string) ([]byte, error)

	Play(pos int) error
	PlayID(id int) error
	Pause(pause bool) error
	Previous() error
	Next() error
	Repeat(repeat bool) error
	Random(random bool) error
	Update(uri string) (int, error)

	Clear() error
	DeleteID(id int) error
	Add(uri string) error
	// AddIDs appends every uri in one command list and returns the new ids.
	AddIDs(uris []string) ([]int, error)
	// ClearAndAddID clears the queue and appends uri in one command list.
	ClearAndAddID(uri string) (int, error)

	Close() error
}

// gompdConn adapts *gompd.Client to Conn. Single commands pass straight
// through via embedding; batched operations use gompd command lists.
type gompdConn struct {
	*gompd.Client
}

var _ Conn = gompdConn{}

func (c gompdConn) StatusAndCurrentSong() (Attrs, Attrs, error) {
	cl := c.BeginCommandList()
	st := cl.Status()
	cs := cl.CurrentSong()
	if err := cl.End(); err != nil {
		return nil, nil, err
	}
	status, err := st.Value()
	if err != nil {
		return nil, nil, err
	}
	song, err := cs.Value()
	if err != nil {
		return nil, nil, err
	}
	return status, song, nil
}

// QueueAndStatus reads the queue between two status calls. gompd command
// lists cannot carry playlistinfo, so the queue version from status is
// compared across the read instead.
func (c gompdConn) QueueAndStatus() ([]Attrs, Attrs, error) {
	return readQueue(c.Client)
}

type queueReader interface {
	Status() (Attrs, error)
	PlaylistInfo(start, end int) ([]Attrs, error)
}

// readQueue returns the queue with a status of the same queue version. If
// the queue changes mid-read it retries once; a queue that keeps changing
// raises further idle events and the caller recomputes anyway.
func readQueue(r queueReader) ([]Attrs, Attrs, error) {
	before, err := r.Status()
	if err != nil {
		return nil, nil, err
	}

	var (
		queue  []Attrs
		status Attrs
	)
	for attempt := 0; attempt < 2; attempt++ {
		if queue, err = r.PlaylistInfo(-1, -1); err != nil {
			return nil, nil, err
		}
		if status, err = r.Status(); err != nil {
			return nil, nil, err
		}
		if status["playlist"] == before["playlist"] {
			break
		}
		before = status
	}
	return queue, status, nil
} // func readQueue

func (c gompdConn) AddIDs(uris []string) ([]int, error) {
	if len(uris) == 0 {
		return nil, nil
	}
	cl := c.BeginCommandList()
	promised := make([]*gompd.PromisedID, 0, len(uris))
	for _, uri := range uris {
		promised = append(promised, cl.AddID(uri, -1))
	}
	if err := cl.End(); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(promised))
	for _, p := range promised {
		id, err := p.Value()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c gompdConn) ClearAndAddID(uri string) (int, error) {
	cl := c.BeginCommandList()
	cl.Clear()
	promised := cl.AddID(uri, -1)
	if err := cl.End(); err != nil {
		return 0, err
	}
	return promised.Value()
}
