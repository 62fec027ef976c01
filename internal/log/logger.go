package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Production gets plain JSON lines at info
// level; everything else gets the colored console writer at debug level.
func New(environment, service string) zerolog.Logger {
	return NewWithWriter(os.Stdout, environment, service)
}

func NewWithWriter(w io.Writer, environment, service string) zerolog.Logger {
	var output io.Writer = w
	if environment != "production" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Str("service", service).
		Logger()

	if environment != "production" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return logger
}
