package daemon

import (
	"fmt"
	"strconv"
)

// PlayState is the daemon's playback state.
type PlayState int

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (p PlayState) String() string {
	switch p {
	case Playing:
		return "play"
	case Paused:
		return "pause"
	default:
		return "stop"
	}
}

func (p PlayState) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func parsePlayState(s string) (PlayState, error) {
	switch s {
	case "play":
		return Playing, nil
	case "pause":
		return Paused, nil
	case "stop":
		return Stopped, nil
	}
	return Stopped, fmt.Errorf("unknown play state %q", s)
}

// SingleMode is the daemon's single-track setting.
type SingleMode int

const (
	SingleDisabled SingleMode = iota
	SingleEnabled
	SingleOneshot
)

func (m SingleMode) String() string {
	switch m {
	case SingleEnabled:
		return "enabled"
	case SingleOneshot:
		return "oneshot"
	default:
		return "disabled"
	}
}

func (m SingleMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func parseSingleMode(s string) (SingleMode, error) {
	switch s {
	case "", "0":
		return SingleDisabled, nil
	case "1":
		return SingleEnabled, nil
	case "oneshot":
		return SingleOneshot, nil
	}
	return SingleDisabled, fmt.Errorf("unknown single mode %q", s)
}

// Status is the player view model pushed on the status channel.
type Status struct {
	Title      *string    `json:"title"`
	Artist     *string    `json:"artist"`
	Album      *string    `json:"album"`
	PlayState  PlayState  `json:"state"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
	HasSong    bool       `json:"has_song"`
	SingleMode SingleMode `json:"single"`
	Repeat     bool       `json:"repeat"`
	Random     bool       `json:"random"`
	UpdatingDB bool       `json:"updating_db"`
	Elapsed    *float64   `json:"elapsed"`
	Duration   *float64   `json:"duration"`
}

// Status reads status and the current song in one command list so the two
// cannot straddle a mutation.
func (s *Session) Status() (*Status, error) {
	raw, song, err := s.conn.StatusAndCurrentSong()
	if err != nil {
		return nil, protocolErr("status", err)
	}
	st, err := projectStatus(raw, song)
	if err != nil {
		return nil, protocolErr("status", err)
	}
	return st, nil
}

func projectStatus(raw, song Attrs) (*Status, error) {
	state, err := parsePlayState(raw["state"])
	if err != nil {
		return nil, err
	}
	single, err := parseSingleMode(raw["single"])
	if err != nil {
		return nil, err
	}

	st := &Status{
		PlayState:  state,
		SingleMode: single,
		Repeat:     raw["repeat"] == "1",
		Random:     raw["random"] == "1",
		UpdatingDB: raw["updating_db"] != "",
	}

	// song is only meaningful when status names a current position
	pos, hasSong := raw["song"]
	st.HasSong = hasSong && len(song) > 0

	if st.HasSong {
		st.Title = tag(song, "Title")
		st.Artist = tag(song, "Artist")
		st.Album = tag(song, "Album")
	}

	if state != Stopped {
		st.HasPrev = st.HasSong
		if st.HasSong {
			p, err := strconv.Atoi(pos)
			if err != nil {
				return nil, fmt.Errorf("bad song position %q", pos)
			}
			length, err := strconv.Atoi(raw["playlistlength"])
			if err != nil {
				return nil, fmt.Errorf("bad playlistlength %q", raw["playlistlength"])
			}
			st.HasNext = p+1 < length
		}
	}

	if st.Elapsed, err = optFloat(raw, "elapsed"); err != nil {
		return nil, err
	}
	if st.Duration, err = optFloat(raw, "duration"); err != nil {
		return nil, err
	}
	return st, nil
} // func projectStatus

func tag(song Attrs, key string) *string {
	v, ok := song[key]
	if !ok {
		return nil
	}
	return &v
}

func optFloat(raw Attrs, key string) (*float64, error) {
	v, ok := raw[key]
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q", key, v)
	}
	return &f, nil
}
