// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

func init() {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
}

// New returns a JSON logger on stderr at info level. Stdout is left to
// command output and the MCP stdio transport.
func New(serviceName string) zerolog.Logger {
	return NewWithWriter(os.Stderr, serviceName, "info", false)
}

// NewWithWriter returns a logger writing to w. An unknown level falls back to
// info. pretty selects zerolog's console format.
func NewWithWriter(w io.Writer, serviceName, level string, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
