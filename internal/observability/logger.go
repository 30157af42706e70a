// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability sets up structured logging and HTTP request
// metrics for the stanbol server and CLI.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the global zerolog logger. Output is human readable
// on a console unless jsonOutput is set; level falls back to info when it
// does not parse.
func InitLogger(app, level string, jsonOutput bool) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	if jsonOutput {
		out = os.Stderr
	}
	return initLogger(out, app, level)
}

func initLogger(out io.Writer, app, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
