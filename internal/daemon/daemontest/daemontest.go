// Package daemontest provides a deterministic in-memory MPD stand-in that
// satisfies daemon.Conn, for tests of the projection, library, control,
// art and HTTP layers.
package daemontest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gompd "github.com/fhs/gompd/v2/mpd"
)

// Track is one library entry.
type Track struct {
	File   string
	Title  string
	Artist string
	Album  string
	Track  string
	Disc   string
	Date   string
}

func (t Track) attrs() gompd.Attrs {
	a := gompd.Attrs{"file": t.File}
	set := func(k, v string) {
		if v != "" {
			a[k] = v
		}
	}
	set("Title", t.Title)
	set("Artist", t.Artist)
	set("Album", t.Album)
	set("Track", t.Track)
	set("Disc", t.Disc)
	set("Date", t.Date)
	return a
}

type queued struct {
	id    int
	track Track
}

// ErrNoArt mirrors the daemon's ACK for a song without artwork.
var ErrNoArt = errors.New("ACK [50@0] {albumart} No file exists")

// Daemon is the stub. The zero value is not usable; call New.
type Daemon struct {
	mu sync.Mutex

	library []Track
	art     map[string][]byte

	queue    []queued
	nextID   int
	current  int
	state    string
	repeat   bool
	random   bool
	single   string
	updating bool
	elapsed  string

	// Err, when set, fails every call.
	Err error

	calls  []string
	closed bool
}

// New returns a stopped daemon with an empty queue over the given library.
func New(library ...Track) *Daemon {
	return &Daemon{
		library: library,
		art:     map[string][]byte{},
		nextID:  1,
		current: -1,
		state:   "stop",
		single:  "0",
		elapsed: "12.500",
	}
}

// SetArt stores artwork for a library file.
func (d *Daemon) SetArt(file string, art []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.art[file] = art
}

// Enqueue appends library files to the queue and returns their ids.
func (d *Daemon) Enqueue(files ...string) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]int, 0, len(files))
	for _, f := range files {
		id, err := d.addLocked(f)
		if err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

// SetPlayback forces state ("play", "pause", "stop") and current queue
// position (-1 for none).
func (d *Daemon) SetPlayback(state string, pos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	d.current = pos
}

// SetOptions forces repeat, random and single ("0", "1", "oneshot").
func (d *Daemon) SetOptions(repeat, random bool, single string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.repeat, d.random, d.single = repeat, random, single
}

// Calls returns the commands issued so far, in order.
func (d *Daemon) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Closed reports whether Close was called.
func (d *Daemon) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Daemon) begin(call string) error {
	d.calls = append(d.calls, call)
	return d.Err
}

func (d *Daemon) lookup(file string) (Track, bool) {
	for _, t := range d.library {
		if t.File == file {
			return t, true
		}
	}
	return Track{}, false
}

func (d *Daemon) addLocked(file string) (int, error) {
	t, ok := d.lookup(file)
	if !ok {
		return 0, fmt.Errorf("ACK [50@0] {addid} No such directory: %s", file)
	}
	id := d.nextID
	d.nextID++
	d.queue = append(d.queue, queued{id: id, track: t})
	return id, nil
}

func (d *Daemon) statusLocked() gompd.Attrs {
	a := gompd.Attrs{
		"state":          d.state,
		"repeat":         btoa(d.repeat),
		"random":         btoa(d.random),
		"single":         d.single,
		"consume":        "0",
		"playlistlength": strconv.Itoa(len(d.queue)),
	}
	if d.current >= 0 && d.current < len(d.queue) {
		a["song"] = strconv.Itoa(d.current)
		a["songid"] = strconv.Itoa(d.queue[d.current].id)
		if d.state != "stop" {
			a["elapsed"] = d.elapsed
			a["duration"] = "200.000"
		}
	}
	if d.updating {
		a["updating_db"] = "1"
	}
	return a
}

func (d *Daemon) currentSongLocked() gompd.Attrs {
	if d.current < 0 || d.current >= len(d.queue) {
		return gompd.Attrs{}
	}
	return d.entryAttrs(d.current)
}

func (d *Daemon) entryAttrs(pos int) gompd.Attrs {
	q := d.queue[pos]
	a := q.track.attrs()
	a["Pos"] = strconv.Itoa(pos)
	a["Id"] = strconv.Itoa(q.id)
	return a
}

func (d *Daemon) StatusAndCurrentSong() (gompd.Attrs, gompd.Attrs, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("command_list status currentsong"); err != nil {
		return nil, nil, err
	}
	return d.statusLocked(), d.currentSongLocked(), nil
}

func (d *Daemon) QueueAndStatus() ([]gompd.Attrs, gompd.Attrs, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("playlistinfo status"); err != nil {
		return nil, nil, err
	}
	queue := make([]gompd.Attrs, 0, len(d.queue))
	for i := range d.queue {
		queue = append(queue, d.entryAttrs(i))
	}
	return queue, d.statusLocked(), nil
}

func (d *Daemon) Status() (gompd.Attrs, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("status"); err != nil {
		return nil, err
	}
	return d.statusLocked(), nil
}

func (d *Daemon) Stats() (gompd.Attrs, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("stats"); err != nil {
		return nil, err
	}
	artists, albums := map[string]bool{}, map[string]bool{}
	for _, t := range d.library {
		artists[t.Artist] = true
		albums[t.Artist+"\x00"+t.Album] = true
	}
	return gompd.Attrs{
		"artists":     strconv.Itoa(len(artists)),
		"albums":      strconv.Itoa(len(albums)),
		"songs":       strconv.Itoa(len(d.library)),
		"uptime":      "60",
		"playtime":    "30",
		"db_playtime": "1000",
		"db_update":   "1700000000",
	}, nil
}

// tagOf resolves a protocol tag name against a track.
func tagOf(t Track, name string) string {
	switch strings.ToLower(name) {
	case "artist":
		return t.Artist
	case "album":
		return t.Album
	case "title":
		return t.Title
	case "date":
		return t.Date
	case "file":
		return t.File
	}
	return ""
}

func matches(t Track, filter []string) bool {
	for i := 0; i+1 < len(filter); i += 2 {
		if tagOf(t, filter[i]) != filter[i+1] {
			return false
		}
	}
	return true
}

// List supports "list <tag> [<tag> <value>]...".
func (d *Daemon) List(args ...string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("list " + strings.Join(args, " ")); err != nil {
		return nil, err
	}
	if len(args) == 0 || len(args)%2 == 0 {
		return nil, fmt.Errorf("ACK [2@0] {list} incorrect arguments")
	}
	seen := map[string]bool{}
	out := []string{}
	for _, t := range d.library {
		if !matches(t, args[1:]) {
			continue
		}
		v := tagOf(t, args[0])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// Find supports "find <tag> <value> [<tag> <value>]...", returning tracks
// in library order.
func (d *Daemon) Find(args ...string) ([]gompd.Attrs, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("find " + strings.Join(args, " ")); err != nil {
		return nil, err
	}
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("ACK [2@0] {find} incorrect arguments")
	}
	out := []gompd.Attrs{}
	for _, t := range d.library {
		if matches(t, args) {
			out = append(out, t.attrs())
		}
	}
	return out, nil
}

func (d *Daemon) AlbumArt(uri string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("albumart " + uri); err != nil {
		return nil, err
	}
	art, ok := d.art[uri]
	if !ok {
		return nil, ErrNoArt
	}
	return append([]byte(nil), art...), nil
}

func (d *Daemon) Play(pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("play " + strconv.Itoa(pos)); err != nil {
		return err
	}
	if pos < 0 {
		if d.current < 0 {
			if len(d.queue) == 0 {
				return nil
			}
			d.current = 0
		}
	} else {
		if pos >= len(d.queue) {
			return fmt.Errorf("ACK [2@0] {play} Bad song index")
		}
		d.current = pos
	}
	d.state = "play"
	return nil
}

func (d *Daemon) PlayID(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("playid " + strconv.Itoa(id)); err != nil {
		return err
	}
	for i, q := range d.queue {
		if q.id == id {
			d.current = i
			d.state = "play"
			return nil
		}
	}
	return fmt.Errorf("ACK [50@0] {playid} No such song")
}

func (d *Daemon) Pause(pause bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("pause " + btoa(pause)); err != nil {
		return err
	}
	switch {
	case d.state == "stop":
	case pause:
		d.state = "pause"
	default:
		d.state = "play"
	}
	return nil
}

func (d *Daemon) Previous() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("previous"); err != nil {
		return err
	}
	if d.state != "stop" && d.current > 0 {
		d.current--
	}
	return nil
}

func (d *Daemon) Next() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("next"); err != nil {
		return err
	}
	if d.state == "stop" {
		return nil
	}
	if d.current+1 < len(d.queue) {
		d.current++
	} else {
		d.state = "stop"
		d.current = -1
	}
	return nil
}

func (d *Daemon) Repeat(repeat bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("repeat " + btoa(repeat)); err != nil {
		return err
	}
	d.repeat = repeat
	return nil
}

func (d *Daemon) Random(random bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("random " + btoa(random)); err != nil {
		return err
	}
	d.random = random
	return nil
}

func (d *Daemon) Update(uri string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("update " + uri); err != nil {
		return 0, err
	}
	d.updating = true
	return 1, nil
}

func (d *Daemon) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("clear"); err != nil {
		return err
	}
	d.clearLocked()
	return nil
}

func (d *Daemon) clearLocked() {
	d.queue = nil
	d.current = -1
	d.state = "stop"
}

func (d *Daemon) DeleteID(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("deleteid " + strconv.Itoa(id)); err != nil {
		return err
	}
	for i, q := range d.queue {
		if q.id != id {
			continue
		}
		d.queue = append(d.queue[:i], d.queue[i+1:]...)
		switch {
		case i == d.current:
			d.current = -1
			d.state = "stop"
		case i < d.current:
			d.current--
		}
		return nil
	}
	return fmt.Errorf("ACK [50@0] {deleteid} No such song")
}

func (d *Daemon) Add(uri string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("add " + uri); err != nil {
		return err
	}
	_, err := d.addLocked(uri)
	return err
}

func (d *Daemon) AddIDs(uris []string) ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("command_list addid x" + strconv.Itoa(len(uris))); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(uris))
	for _, u := range uris {
		id, err := d.addLocked(u)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *Daemon) ClearAndAddID(uri string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("command_list clear addid " + uri); err != nil {
		return 0, err
	}
	d.clearLocked()
	return d.addLocked(uri)
}

func (d *Daemon) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func btoa(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
