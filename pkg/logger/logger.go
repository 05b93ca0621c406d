// Package logger configures the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a text logger at logLevel writing to logFile and installs it
// as the slog default. "stdout" or an empty file name log to standard output
// without timestamps; a file that cannot be opened falls back to stdout.
func Setup(logLevel string, logFile string) *slog.Logger {
	var logWriter io.Writer = os.Stdout
	var handlerOptions = &slog.HandlerOptions{Level: getLogLevel(logLevel)}
	var openErr error

	if logFile != "" && logFile != "stdout" {
		file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path provided via config.
		if err != nil {
			openErr = err
		} else {
			logWriter = file
		}
	}
	if logWriter == os.Stdout {
		// Configure handler to remove the time key if writing to stdout
		handlerOptions.ReplaceAttr = func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		}
	}

	logger := slog.New(slog.NewTextHandler(logWriter, handlerOptions))
	slog.SetDefault(logger)
	if openErr != nil {
		logger.Error("failed to open log file, logging to stdout", "file", logFile, "error", openErr)
	}
	return logger
}

func getLogLevel(logLevel string) slog.Level {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return level
}
