package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger returns the process logger tagged with app.
func InitLogger(app string) zerolog.Logger {
	return log.Logger.With().Str("app", app).Logger()
}
