package lithotop

import (
	"slices"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string
	Level   Level
	Message string
	Created time.Time
}

// Notifications keeps transient messages that expire after a fixed TTL
type Notifications struct {
	store *gocache.Cache
}

func NewNotifications(ttl time.Duration) *Notifications {
	return &Notifications{store: gocache.New(ttl, ttl)}
}

func (n *Notifications) Push(level Level, message string) Notification {
	note := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Created: time.Now(),
	}
	n.store.SetDefault(note.ID, note)
	return note
}

// Active returns unexpired notifications, oldest first
func (n *Notifications) Active() []Notification {
	items := n.store.Items()
	notes := make([]Notification, 0, len(items))
	for _, item := range items {
		if note, ok := item.Object.(Notification); ok {
			notes = append(notes, note)
		}
	}
	slices.SortFunc(notes, func(a, b Notification) int {
		return a.Created.Compare(b.Created)
	})
	return notes
}

// Dismiss removes every notification
func (n *Notifications) Dismiss() {
	n.store.Flush()
}
