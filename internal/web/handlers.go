package web

import (
	"net/http"

	"mpdgoweb/internal/daemon"
)

func (s *Server) artists(w http.ResponseWriter, r *http.Request) {
	var names []string
	err := daemon.Do(r.Context(), s.Dialer, func(m *daemon.Session) (err error) {
		names, err = m.Artists(r.URL.Query().Get("q"))
		return err
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, names)
}

func (s *Server) albums(w http.ResponseWriter, r *http.Request) {
	artist, ok := param(w, r, "artist")
	if !ok {
		return
	}
	var albums []daemon.Album
	err := daemon.Do(r.Context(), s.Dialer, func(m *daemon.Session) (err error) {
		albums, err = m.Albums(artist)
		return err
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, albums)
}

func (s *Server) songs(w http.ResponseWriter, r *http.Request) {
	artist, ok := param(w, r, "artist")
	if !ok {
		return
	}
	album, ok := param(w, r, "album")
	if !ok {
		return
	}
	var songs []daemon.Song
	err := daemon.Do(r.Context(), s.Dialer, func(m *daemon.Session) (err error) {
		songs, err = m.Songs(artist, album)
		return err
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, songs)
}

// art always answers with image bytes; the cache substitutes the
// placeholder for anything it cannot fetch.
func (s *Server) art(w http.ResponseWriter, r *http.Request) {
	artist, ok := param(w, r, "artist")
	if !ok {
		return
	}
	album, ok := param(w, r, "album")
	if !ok {
		return
	}
	img := s.Art.GetOrFetch(r.Context(), artist, album)
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Header().Set("Cache-Control", "max-age=3600")
	_, _ = w.Write(img)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	var st *daemon.Stats
	err := daemon.Do(r.Context(), s.Dialer, func(m *daemon.Session) (err error) {
		st, err = m.Stats()
		return err
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, st)
}

// control adapts a parameterless session command to a handler.
func (s *Server) control(fn func(*daemon.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := daemon.Do(r.Context(), s.Dialer, fn); err != nil {
			fail(w, err)
		}
	}
}

// play resumes playback, or starts the queue entry named by song_id.
func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("song_id") == "" {
		s.control((*daemon.Session).Play)(w, r)
		return
	}
	id, ok := idParam(w, r, "song_id")
	if !ok {
		return
	}
	s.control(func(m *daemon.Session) error { return m.PlaySong(id) })(w, r)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "song_id")
	if !ok {
		return
	}
	s.control(func(m *daemon.Session) error { return m.RemoveFromQueue(id) })(w, r)
}

func (s *Server) withURL(fn func(*daemon.Session, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, ok := param(w, r, "url")
		if !ok {
			return
		}
		s.control(func(m *daemon.Session) error { return fn(m, url) })(w, r)
	}
}

func (s *Server) withAlbum(fn func(*daemon.Session, string, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artist, ok := param(w, r, "artist")
		if !ok {
			return
		}
		album, ok := param(w, r, "album")
		if !ok {
			return
		}
		s.control(func(m *daemon.Session) error { return fn(m, artist, album) })(w, r)
	}
}

func (s *Server) updateDB(w http.ResponseWriter, r *http.Request) {
	var job int
	err := daemon.Do(r.Context(), s.Dialer, func(m *daemon.Session) (err error) {
		job, err = m.UpdateDB()
		return err
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, map[string]int{"job": job})
}
