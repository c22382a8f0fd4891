// Package logger creates the program logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rusq/dlog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rusq/tgcleaner/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the logger that writes to stderr and, if the log file is
// configured, to the rotating log file.  The returned closer must be closed
// when the logger is no longer needed.
func New(cfg config.LogConfig, debug bool) (*dlog.Logger, io.Closer, error) {
	w, c, err := writer(os.Stderr, cfg)
	if err != nil {
		return nil, nil, err
	}
	return dlog.New(w, "", dlog.Flags(), debug), c, nil
}

func writer(term io.Writer, cfg config.LogConfig) (io.Writer, io.Closer, error) {
	if cfg.File == "" {
		return term, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	lj := rotating(cfg)
	return io.MultiWriter(term, lj), lj, nil
}

func rotating(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}
