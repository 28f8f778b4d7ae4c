package logsvc

import (
	"log"

	"github.com/trezcool/registro/core"
)

// ConsoleLogger logs to the standard logger only; used in DEV/TEST mode and
// as the test seam.
type ConsoleLogger struct {
	std      *log.Logger
	disabled bool
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) *ConsoleLogger {
	return &ConsoleLogger{std: std}
}

func (l *ConsoleLogger) Enable(enabled bool) {
	l.disabled = !enabled
}

func (l *ConsoleLogger) print(level, msg string, args []interface{}) {
	if l.disabled {
		return
	}
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l *ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
