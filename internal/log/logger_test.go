package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("development", ""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("production", ""))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("production", "WARN"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("development", "error"))
}

func TestNewWritesEnvironment(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "production", "info")
	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), "ready")
	assert.Contains(t, buf.String(), "production")
}
