package daemon

// Subsystem is an MPD idle category.
type Subsystem int

const (
	SubsystemOther Subsystem = iota
	SubsystemDatabase
	SubsystemUpdate
	SubsystemStoredPlaylist
	SubsystemQueue
	SubsystemPlayer
	SubsystemMixer
	SubsystemOutput
	SubsystemOptions
	SubsystemPartition
	SubsystemSticker
	SubsystemSubscription
	SubsystemMessage
	SubsystemNeighbor
	SubsystemMount
)

// idle names as reported by MPD; the queue is reported as "playlist".
var subsystemNames = map[string]Subsystem{
	"database":        SubsystemDatabase,
	"update":          SubsystemUpdate,
	"stored_playlist": SubsystemStoredPlaylist,
	"playlist":        SubsystemQueue,
	"player":          SubsystemPlayer,
	"mixer":           SubsystemMixer,
	"output":          SubsystemOutput,
	"options":         SubsystemOptions,
	"partition":       SubsystemPartition,
	"sticker":         SubsystemSticker,
	"subscription":    SubsystemSubscription,
	"message":         SubsystemMessage,
	"neighbor":        SubsystemNeighbor,
	"mount":           SubsystemMount,
}

// ParseSubsystem maps an idle name to a Subsystem. Unknown names map to
// SubsystemOther.
func ParseSubsystem(name string) Subsystem {
	if s, ok := subsystemNames[name]; ok {
		return s
	}
	return SubsystemOther
}

func (s Subsystem) String() string {
	if s == SubsystemQueue {
		return "queue"
	}
	for name, v := range subsystemNames {
		if v == s {
			return name
		}
	}
	return "other"
}

// EventKind discriminates Event.
type EventKind int

const (
	SubsystemChanged EventKind = iota
	StreamClosed
)

// Event is one notification from a session's change feed. Reason is set
// only for StreamClosed.
type Event struct {
	Kind      EventKind
	Subsystem Subsystem
	Reason    error
}

func changed(s Subsystem) Event {
	return Event{Kind: SubsystemChanged, Subsystem: s}
}

func closed(reason error) Event {
	return Event{Kind: StreamClosed, Reason: reason}
}

// bridge forwards watcher output onto out until the watcher fails, its
// event channel closes, or done is closed. A terminal StreamClosed is
// delivered unless done wins first. out is closed on return.
func bridge(names <-chan string, errs <-chan error, out chan<- Event, done <-chan struct{}) {
	defer close(out)

	send := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-done:
			return false
		}
	}

	for {
		select {
		case <-done:
			return
		case name, ok := <-names:
			if !ok {
				send(closed(errWatcherClosed))
				return
			}
			if !send(changed(ParseSubsystem(name))) {
				return
			}
		case err, ok := <-errs:
			if !ok {
				err = errWatcherClosed
			}
			send(closed(err))
			return
		}
	}
} // func bridge
