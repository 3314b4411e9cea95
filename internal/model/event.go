package model

type EventKind string

const (
	EventCreated  EventKind = "CREATE"
	EventModified EventKind = "WRITE"
	EventRemoved  EventKind = "REMOVE"
	EventRenamed  EventKind = "RENAME"
	EventMetadata EventKind = "CHMOD"
	EventRescan   EventKind = "RESCAN"
	EventError    EventKind = "ERROR"
)

type WatchEvent struct {
	Kind  EventKind
	Path  string
	IsDir bool
	Err   error
}

// PathOf reports the path the event refers to. Rescan events never carry
// one and error events only sometimes do.
func (e WatchEvent) PathOf() (string, bool) {
	if e.Kind == EventRescan || e.Path == "" {
		return "", false
	}
	return e.Path, true
}
