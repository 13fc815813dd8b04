package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	gompd "github.com/fhs/gompd/v2/mpd"
)

const greetingTimeout = 5 * time.Second

var (
	errWatcherClosed = errors.New("watcher closed")
	errNoGreeting    = errors.New("no mpd greeting")
)

// Connector opens sessions against one daemon address. Network is "tcp"
// or "unix"; an Addr with a leading '/' or '@' selects "unix" when Network
// is empty.
type Connector struct {
	Network  string
	Addr     string
	Password string
	Verbose  bool
}

// NewConnector builds a Connector for addr, inferring the network.
func NewConnector(addr, password string) *Connector {
	return &Connector{Network: networkFor(addr), Addr: addr, Password: password}
}

func networkFor(addr string) string {
	if strings.HasPrefix(addr, "/") || strings.HasPrefix(addr, "@") {
		return "unix"
	}
	return "tcp"
}

// Connect dials a command connection and an idle watcher. The watcher
// subscribes to every subsystem; consumers pick what they care about.
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	network := c.Network
	if network == "" {
		network = networkFor(c.Addr)
	}

	if err := probe(ctx, network, c.Addr); err != nil {
		return nil, &ConnectionError{Addr: c.Addr, Err: err}
	}

	client, err := gompd.DialAuthenticated(network, c.Addr, c.Password)
	if err != nil {
		// a rejected password still hands back the open client
		if client != nil {
			client.Close()
		}
		return nil, &ConnectionError{Addr: c.Addr, Err: err}
	}

	w, err := gompd.NewWatcher(network, c.Addr, c.Password)
	if err != nil {
		client.Close()
		return nil, &ConnectionError{Addr: c.Addr, Err: err}
	}
	if c.Verbose {
		log.Printf("[daemon] session open: %s %s", network, c.Addr)
	}

	events := make(chan Event)
	done := make(chan struct{})
	go bridge(w.Event, w.Error, events, done)

	s := NewSession(gompdConn{client}, events, func() error {
		close(done)
		// drain so the watcher goroutine can observe its shutdown
		go func() {
			for range w.Event {
			}
		}()
		go func() {
			for range w.Error {
			}
		}()
		werr := w.Close()
		cerr := client.Close()
		return errors.Join(werr, cerr)
	})
	return s, nil
} // func (c *Connector) Connect

// probe honours ctx for the TCP/unix dial and checks the greeting; gompd's
// own dial has no context and slices the greeting without a length check.
func probe(ctx context.Context, network, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(greetingTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read greeting: %w", err)
	}
	if !strings.HasPrefix(line, "OK MPD ") {
		return fmt.Errorf("%w: %q", errNoGreeting, strings.TrimSpace(line))
	}
	return nil
} // func probe

// Session is one command connection plus its change feed. A session is
// owned by a single goroutine and is not safe for concurrent use.
type Session struct {
	conn      Conn
	events    <-chan Event
	closeFn   func() error
	closeOnce sync.Once
	closeErr  error
}

// NewSession wraps an existing connection and event feed. closeFn, if
// non-nil, runs once on Close instead of conn.Close and must release conn
// itself.
func NewSession(conn Conn, events <-chan Event, closeFn func() error) *Session {
	return &Session{conn: conn, events: events, closeFn: closeFn}
}

// Events returns the session's change feed. It yields SubsystemChanged
// events until a final StreamClosed, then is closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Close releases the session. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.closeFn != nil {
			s.closeErr = s.closeFn()
			return
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
