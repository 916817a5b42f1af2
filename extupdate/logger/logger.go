package logger

// Logger is the logging contract used throughout the library; the application installs a concrete
// implementation with extupdate.SetLogger.
type Logger interface {
	Errorf(format string, args ...interface{})
	Error(args ...interface{})
	Warnf(format string, args ...interface{})
	Warn(args ...interface{})
	Infof(format string, args ...interface{})
	Info(args ...interface{})
	Debugf(format string, args ...interface{})
	Debug(args ...interface{})
}

// Nester is implemented by loggers that can derive a logger adding fixed fields to every entry.
type Nester interface {
	Nested(fields map[string]interface{}) Logger
}
