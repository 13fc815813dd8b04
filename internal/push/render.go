package push

import (
	"encoding/json"
	"fmt"

	"mpdgoweb/internal/daemon"
)

// RenderError reports a view model that could not be serialised. It ends
// only the push that produced it.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

type statusFrame struct {
	Type   string         `json:"type"`
	Status *daemon.Status `json:"status"`
}

type playlistFrame struct {
	Type  string               `json:"type"`
	Songs []daemon.SongInQueue `json:"songs"`
}

func RenderStatus(st *daemon.Status) ([]byte, error) {
	return render(statusFrame{Type: "status", Status: st})
}

func RenderPlaylist(songs []daemon.SongInQueue) ([]byte, error) {
	if songs == nil {
		songs = []daemon.SongInQueue{}
	}
	return render(playlistFrame{Type: "playlist", Songs: songs})
}

func render(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	return b, nil
}
