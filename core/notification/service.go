package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRetention caps the list when no explicit retention is configured.
const DefaultRetention = 200

type Service struct {
	mutex         sync.RWMutex
	notifications []Notification // most recent first
	toaster       Toaster
	retention     int
}

func NewService(toaster Toaster, retention int) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{
		notifications: make([]Notification, 0, retention),
		toaster:       toaster,
		retention:     retention,
	}
}

// Show records a new unread notification (most recent first) and fires the
// transient toast side-effect. The oldest entries are dropped past retention.
func (svc *Service) Show(title, message string, typ Type) Notification {
	notif := Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Read:      false,
		Timestamp: time.Now().UTC(),
	}

	svc.mutex.Lock()
	svc.notifications = append([]Notification{notif}, svc.notifications...)
	if len(svc.notifications) > svc.retention {
		svc.notifications = svc.notifications[:svc.retention]
	}
	svc.mutex.Unlock()

	if svc.toaster != nil {
		svc.toaster.Show(Toast{Message: title, Description: message, Type: typ})
	}
	return notif
}

// All returns a snapshot of the current notifications, most recent first.
func (svc *Service) All() []Notification {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	all := make([]Notification, len(svc.notifications))
	copy(all, svc.notifications)
	return all
}

// UnreadCount is recomputed on every call; it is never cached.
func (svc *Service) UnreadCount() int {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	var count int
	for _, notif := range svc.notifications {
		if !notif.Read {
			count++
		}
	}
	return count
}

// MarkAsRead flips a single entry to read. Unknown ids are a no-op.
func (svc *Service) MarkAsRead(id string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for i := range svc.notifications {
		if svc.notifications[i].ID == id {
			svc.notifications[i].Read = true
			return
		}
	}
}

// MarkAllAsRead flips every entry to read.
func (svc *Service) MarkAllAsRead() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for i := range svc.notifications {
		svc.notifications[i].Read = true
	}
}

// Clear discards the entire collection irreversibly.
func (svc *Service) Clear() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.notifications = svc.notifications[:0]
}
