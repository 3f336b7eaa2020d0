// Package testlog routes test output through the shared zerolog setup.
package testlog

import (
	"testing"

	"github.com/danmuck/pine/internal/logging"
	"github.com/rs/zerolog/log"
)

// Start configures test logging once and marks the start of t.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Debug().Str("test", t.Name()).Msg("test.start")
}
