// Package util holds small shared helpers.
package util

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger from a level string.
// "off" or "none" silences output entirely; unknown levels fall back to info.
func SetupLogger(level string) {
	switch strings.ToLower(level) {
	case "off", "none":
		log.SetOutput(io.Discard)
		return
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}
