// Package utils provides utility functions for the application.
package utils

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions controls where application logs are written and how log
// files are rotated.
type LoggerOptions struct {
	Output     string // stdout, file, both
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// SetupLogger routes the standard logger through lumberjack rotation when
// file output is requested. Returns a closer for the rotated sink.
func SetupLogger(opts LoggerOptions) io.Closer {
	if opts.Output != "file" && opts.Output != "both" {
		return nil
	}
	if opts.FilePath == "" {
		opts.FilePath = "logs/seva.log"
	}

	rotated := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	if opts.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	} else {
		log.SetOutput(rotated)
	}
	return rotated
}
