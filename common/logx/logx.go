// Package logx wraps zerolog behind a small package-level API so callers
// never carry a logger instance around.
package logx

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment selects the output format and default level.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Init configures the global logger. Development uses a console writer at
// debug level; production emits JSON at info level.
func Init(env Environment) {
	if env == Production {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event { return log.Debug() }

func Info() *zerolog.Event { return log.Info() }

func Warn() *zerolog.Event { return log.Warn() }

func Error() *zerolog.Event { return log.Error() }

func Fatal() *zerolog.Event { return log.Fatal() }
