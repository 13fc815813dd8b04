package daemon

import (
	"context"
	"log"
)

// Dialer opens sessions. *Connector is the production implementation.
type Dialer interface {
	Connect(ctx context.Context) (*Session, error)
}

// Do runs fn on a short-lived session and closes it afterwards. Control
// and library requests each use their own session; none is shared with a
// push loop.
func Do(ctx context.Context, d Dialer, fn func(*Session) error) error {
	s, err := d.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.Printf("[daemon] session close: %v", cerr)
		}
	}()
	return fn(s)
} // func Do

var _ Dialer = (*Connector)(nil)

// ArtSource fetches raw album art over one-shot sessions.
type ArtSource struct {
	Dialer Dialer
}

func (a ArtSource) AlbumArt(ctx context.Context, artist, album string) ([]byte, error) {
	var art []byte
	err := Do(ctx, a.Dialer, func(s *Session) error {
		var err error
		art, err = s.AlbumArt(artist, album)
		return err
	})
	return art, err
}
