// Package logging points the standard logger at stderr and, optionally, a
// size-rotated file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/scrypster/docgraph/internal/config"
)

// Setup configures the standard logger from cfg and returns a closer for
// the log file. With no file configured the closer is a no-op.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	log.SetFlags(log.LstdFlags)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	rotator := NewRotator(cfg)
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator, nil
}

// NewRotator builds the rotating file writer for cfg.
func NewRotator(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
