package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"mpdgoweb/internal/daemon"
	"mpdgoweb/internal/push"
)

// wsSender writes push frames as websocket text messages.
type wsSender struct {
	conn *websocket.Conn
}

func (s wsSender) Send(ctx context.Context, frame []byte) error {
	return s.conn.Write(ctx, websocket.MessageText, frame)
}

// pushChannel upgrades the request and runs one push loop on it until the
// browser leaves or the loop fails.
func (s *Server) pushChannel(ch push.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // allow any origin
		})
		if err != nil {
			log.Printf("[web] ws accept failed: %v", err)
			return
		}
		defer conn.CloseNow()

		// The browser never sends; CloseRead cancels ctx once it goes away.
		ctx := conn.CloseRead(r.Context())

		loop := push.NewLoop(ch, s.Dialer, wsSender{conn})
		loop.Verbose = s.Verbose
		if s.Verbose {
			log.Printf("[web] %s channel %s opened from %s", ch, loop.ID, r.RemoteAddr)
		}

		err = loop.Run(ctx)

		var cerr *daemon.ConnectionError
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			conn.Close(websocket.StatusNormalClosure, "")
		case errors.As(err, &cerr):
			if s.Verbose {
				log.Printf("[web] %s channel %s: %v", ch, loop.ID, err)
			}
			conn.CloseNow()
		default:
			log.Printf("[web] %s channel %s: %v", ch, loop.ID, err)
			conn.Close(websocket.StatusInternalError, "push ended")
		}
	}
} // func (s *Server) pushChannel
