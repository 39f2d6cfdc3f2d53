package logsvc

import (
	"log"

	"github.com/mkulima/kilimo/core"
)

// StdLogger writes to the standard library logger only; for development
// and tests where remote error reporting is disabled.
type StdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func (l StdLogger) log(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l StdLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }

func (l StdLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		args = append(args, err)
	}
	l.log("ERROR", msg, args)
}

func (l StdLogger) Fatal(msg string, err error, args ...interface{}) {
	if err != nil {
		args = append(args, err)
	}
	l.log("FATAL", msg, args)
	l.std.Fatal(msg)
}
