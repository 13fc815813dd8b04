// Package web is the browser-facing HTTP surface: library reads, control
// commands, album art, the two push channels and the static front end.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mpdgoweb/internal/artcache"
	"mpdgoweb/internal/daemon"
	"mpdgoweb/internal/push"
)

// Server holds what handlers share. Build it explicitly and pass it to
// NewRouter; there is no package-level state.
type Server struct {
	Dialer  daemon.Dialer
	Art     *artcache.Cache
	Assets  string
	Verbose bool
}

// NewRouter wires every route onto a chi router.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.index)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.Assets))))

	r.Route("/library", func(r chi.Router) {
		r.Get("/artists", s.artists)
		r.Get("/albums", s.albums)
		r.Get("/songs", s.songs)
	})
	r.Get("/art", s.art)
	r.Get("/stats", s.stats)

	r.Get("/status", s.pushChannel(push.StatusChannel))

	r.Route("/control", func(r chi.Router) {
		r.Get("/play", s.play)
		r.Get("/pause", s.control(func(m *daemon.Session) error { return m.Pause(true) }))
		r.Get("/unpause", s.control(func(m *daemon.Session) error { return m.Pause(false) }))
		r.Get("/prev", s.control((*daemon.Session).Previous))
		r.Get("/next", s.control((*daemon.Session).Next))
		r.Get("/repeat", s.control((*daemon.Session).ToggleRepeat))
		r.Get("/random", s.control((*daemon.Session).ToggleRandom))
		r.Get("/update", s.updateDB)
	})

	r.Route("/playlist", func(r chi.Router) {
		r.Get("/songs", s.pushChannel(push.PlaylistChannel))
		r.Get("/clear", s.control((*daemon.Session).ClearQueue))
		r.Get("/remove", s.remove)
		r.Get("/append/song", s.withURL((*daemon.Session).AppendSong))
		r.Get("/append/album", s.withAlbum((*daemon.Session).AppendAlbum))
		r.Get("/play/song", s.withURL((*daemon.Session).PlaySongByURL))
		r.Get("/play/album", s.withAlbum((*daemon.Session).PlayAlbum))
	})

	return r
} // func NewRouter

// index checks the daemon is reachable before handing out the page.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	err := daemon.Do(r.Context(), s.Dialer, func(*daemon.Session) error { return nil })
	var cerr *daemon.ConnectionError
	switch {
	case errors.As(err, &cerr):
		http.Error(w, cerr.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		fail(w, err)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.Assets, "index.html"))
}

// fail answers 500 with the error text.
func fail(w http.ResponseWriter, err error) {
	log.Printf("[web] %v", err)
	http.Error(w, fmt.Sprintf("Something went wrong: %v", err), http.StatusInternalServerError)
}

func badRequest(w http.ResponseWriter, format string, a ...any) {
	http.Error(w, fmt.Sprintf(format, a...), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[web] write json: %v", err)
	}
}

// param returns a required query parameter, answering 400 when it is
// missing.
func param(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		badRequest(w, "missing %s", name)
		return "", false
	}
	return v, true
}

// idParam reads a queue id. Ids are never negative; gompd would send a
// bare playid for -1 and resume playback instead of failing.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, ok := param(w, r, name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		badRequest(w, "bad %s %q", name, v)
		return 0, false
	}
	return n, true
}
