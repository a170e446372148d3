package log

import (
	"fmt"
	"log"
	"os"
	"strings"
)

type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

const DefaultLevel = InfoLevel

var levelNames = [...]string{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
}

// ParseLevel maps a level name (case-insensitive) to its Level.
// Unknown names fall back to DefaultLevel.
func ParseLevel(name string) Level {
	for l, n := range levelNames {
		if strings.EqualFold(name, n) {
			return Level(l)
		}
	}
	return DefaultLevel
}

type Logger struct {
	level  Level
	logger *log.Logger
}

var DefaultLogger = NewLogger()

// NewLogger builds a leveled logger writing to stderr. The threshold is
// taken from the LOG_LEVEL environment variable.
func NewLogger() *Logger {
	return &Logger{
		level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime),
	}
}

func (l *Logger) Log(level Level, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.logger.Printf(levelNames[level]+": "+format, v...)
}

func Trace(format string, v ...interface{}) {
	DefaultLogger.Log(TraceLevel, format, v...)
}

func Debug(format string, v ...interface{}) {
	DefaultLogger.Log(DebugLevel, format, v...)
}

func Info(format string, v ...interface{}) {
	DefaultLogger.Log(InfoLevel, format, v...)
}

func Warn(format string, v ...interface{}) {
	DefaultLogger.Log(WarnLevel, format, v...)
}

func Error(format string, v ...interface{}) error {
	DefaultLogger.Log(ErrorLevel, format, v...)
	return fmt.Errorf(format, v...)
}
