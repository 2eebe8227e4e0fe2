package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, v := range []Verbosity{"", DebugVerbosity, InfoVerbosity, ErrorVerbosity} {
		logger, err := NewLogger(&Config{LogVerbosity: v})
		require.NoError(t, err, "verbosity %q", v)
		assert.NotNil(t, logger)
		logger.Debug("debug message", "key", "value")
	}
}

func TestNewLoggerRejectsUnknownVerbosity(t *testing.T) {
	_, err := NewLogger(&Config{LogVerbosity: "chatty"})
	assert.Error(t, err)
}
