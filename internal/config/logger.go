package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
)

// Log rotation limits for the LOG_FILE sink.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 7
	logMaxAgeDays = 28
)

// NewLogger builds the JSON slog logger used by every binary.
//
// Output always goes to w. When file is set, a copy goes to a size-rotated
// file as well; the returned closer releases it. An unknown level falls back
// to info.
func NewLogger(w io.Writer, level, file string) (*slog.Logger, io.Closer) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	var closer io.Closer = nopCloser{}
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(w, rotating)
		closer = rotating
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})), closer
}

// StdoutLogger is NewLogger writing to os.Stdout.
func StdoutLogger(level, file string) (*slog.Logger, io.Closer) {
	return NewLogger(os.Stdout, level, file)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
