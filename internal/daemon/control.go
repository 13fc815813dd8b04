package daemon

import (
	"fmt"
	"strconv"
)

// Play resumes playback at the current position.
func (s *Session) Play() error {
	return protocolErr("play", s.conn.Play(-1))
}

// PlaySong starts playback of the queue entry with the given id.
func (s *Session) PlaySong(id int) error {
	return protocolErr("playid", s.conn.PlayID(id))
}

func (s *Session) Pause(pause bool) error {
	return protocolErr("pause", s.conn.Pause(pause))
}

func (s *Session) Previous() error {
	return protocolErr("previous", s.conn.Previous())
}

func (s *Session) Next() error {
	return protocolErr("next", s.conn.Next())
}

func (s *Session) ClearQueue() error {
	return protocolErr("clear", s.conn.Clear())
}

func (s *Session) RemoveFromQueue(id int) error {
	return protocolErr("deleteid", s.conn.DeleteID(id))
}

// ToggleRepeat flips the repeat option from its current value.
func (s *Session) ToggleRepeat() error {
	st, err := s.conn.Status()
	if err != nil {
		return protocolErr("status", err)
	}
	return protocolErr("repeat", s.conn.Repeat(st["repeat"] != "1"))
}

// ToggleRandom flips the random option from its current value.
func (s *Session) ToggleRandom() error {
	st, err := s.conn.Status()
	if err != nil {
		return protocolErr("status", err)
	}
	return protocolErr("random", s.conn.Random(st["random"] != "1"))
}

// AppendSong adds url to the end of the queue.
func (s *Session) AppendSong(url string) error {
	return protocolErr("add", s.conn.Add(url))
}

// AppendAlbum adds every track of the album, in track order, in one
// command list.
func (s *Session) AppendAlbum(artist, album string) error {
	_, err := s.appendAlbum(artist, album)
	return err
}

func (s *Session) appendAlbum(artist, album string) ([]int, error) {
	songs, err := s.Songs(artist, album)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(songs))
	for _, song := range songs {
		uris = append(uris, song.URL)
	}
	ids, err := s.conn.AddIDs(uris)
	if err != nil {
		return nil, protocolErr("addid", err)
	}
	return ids, nil
}

// PlayAlbum replaces the queue with the album and plays its first track.
func (s *Session) PlayAlbum(artist, album string) error {
	if err := s.ClearQueue(); err != nil {
		return err
	}
	ids, err := s.appendAlbum(artist, album)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return s.PlaySong(ids[0])
}

// PlaySongByURL replaces the queue with url and plays it.
func (s *Session) PlaySongByURL(url string) error {
	id, err := s.conn.ClearAndAddID(url)
	if err != nil {
		return protocolErr("addid", err)
	}
	return s.PlaySong(id)
}

// UpdateDB starts a database rescan and returns its job id.
func (s *Session) UpdateDB() (int, error) {
	job, err := s.conn.Update("")
	if err != nil {
		return 0, protocolErr("update", err)
	}
	return job, nil
}

// Stats is the daemon's library and uptime summary.
type Stats struct {
	Artists    int `json:"artists"`
	Albums     int `json:"albums"`
	Songs      int `json:"songs"`
	Uptime     int `json:"uptime"`
	Playtime   int `json:"playtime"`
	DBPlaytime int `json:"db_playtime"`
	DBUpdate   int `json:"db_update"`
}

func (s *Session) Stats() (*Stats, error) {
	raw, err := s.conn.Stats()
	if err != nil {
		return nil, protocolErr("stats", err)
	}

	st := &Stats{}
	fields := []struct {
		key string
		dst *int
	}{
		{"artists", &st.Artists},
		{"albums", &st.Albums},
		{"songs", &st.Songs},
		{"uptime", &st.Uptime},
		{"playtime", &st.Playtime},
		{"db_playtime", &st.DBPlaytime},
		{"db_update", &st.DBUpdate},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, protocolErr("stats", fmt.Errorf("bad %s %q", f.key, v))
		}
		*f.dst = n
	}
	return st, nil
} // func (s *Session) Stats

// AlbumArt returns the raw artwork for the album's first track, or nil if
// the album has no tracks or the daemon holds no art for it.
func (s *Session) AlbumArt(artist, album string) ([]byte, error) {
	songs, err := s.Songs(artist, album)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, nil
	}
	art, err := s.conn.AlbumArt(songs[0].URL)
	if err != nil {
		return nil, protocolErr("albumart", err)
	}
	return art, nil
}
