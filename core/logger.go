package core

// Logger is any service that can log leveled messages.
// Error/Fatal take the causing error first; extra args are reported as-is.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
	Fatal(msg string, err error, args ...interface{})
}
