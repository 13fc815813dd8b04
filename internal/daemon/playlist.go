package daemon

import (
	"fmt"
	"strconv"
)

// SongInQueue is one queue entry as pushed on the playlist channel.
type SongInQueue struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Playing bool   `json:"playing"`
}

// Playlist returns the queue in daemon order with the current song marked.
// Nothing is marked while playback is stopped.
func (s *Session) Playlist() ([]SongInQueue, error) {
	queue, status, err := s.conn.QueueAndStatus()
	if err != nil {
		return nil, protocolErr("playlist", err)
	}

	current := -1
	if id, ok := status["songid"]; ok && status["state"] != "stop" {
		if current, err = strconv.Atoi(id); err != nil {
			return nil, protocolErr("playlist", fmt.Errorf("bad songid %q", id))
		}
	}

	songs := make([]SongInQueue, 0, len(queue))
	for _, attrs := range queue {
		id, err := strconv.Atoi(attrs["Id"])
		if err != nil {
			return nil, protocolErr("playlist", fmt.Errorf("bad queue id %q", attrs["Id"]))
		}
		songs = append(songs, SongInQueue{
			ID:      id,
			Title:   attrs["Title"],
			Artist:  attrs["Artist"],
			Playing: id == current,
		})
	}
	return songs, nil
} // func (s *Session) Playlist
