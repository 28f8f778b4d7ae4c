package notification

import "time"

// Type classifies a notification for presentation purposes.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is an ephemeral, in-memory entry; it is never persisted.
// Read is a one-way transition: once read, an entry never becomes unread again.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// Toast is the transient payload handed to the presentation surface.
type Toast struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
}

// Toaster is any surface that can display a Toast transiently.
type Toaster interface {
	Show(toast Toast)
}
