package config

import (
	"os"

	"github.com/labstack/gommon/log"
)

// NewLogger returns a named leveled logger writing to stderr.
func NewLogger(name, level string) *log.Logger {
	l := log.New(name)
	l.SetOutput(os.Stderr)
	l.SetHeader("${time_rfc3339} ${level} ${prefix}")
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps a LOG_LEVEL value to a gommon level. Unknown values mean
// info.
func ParseLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
