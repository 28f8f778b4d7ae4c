package core

// Logger is any leveled logger the app reports through. Implementations may
// attach extra args (errors, maps, the acting user) to each entry.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
