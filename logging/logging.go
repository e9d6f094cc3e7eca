// Package logging builds the application logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options holds logging configuration.
type Options struct {
	Level      string
	Format     string // text, json
	File       string // empty disables the rotating file
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
}

// NewLogger creates a logrus logger writing to stderr and, when configured, to a
// rotating log file.
func NewLogger(opts Options) *logrus.Logger {
	logger := logrus.New()

	if opts.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	writers := []io.Writer{os.Stderr}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			logger.WithError(err).Warn("Failed to create log directory, file logging disabled")
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    opts.MaxSize,
				MaxBackups: opts.MaxBackups,
				MaxAge:     opts.MaxAge,
				Compress:   true,
			})
		}
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger
}
