package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a logger derived from the global logger, tagged with a
// component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
