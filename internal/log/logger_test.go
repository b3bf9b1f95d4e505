package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		debug bool
	}{
		{name: "dev defaults to debug", env: "dev", debug: true},
		{name: "prod defaults to info", env: "prod", debug: false},
		{name: "override", env: "dev", level: "warn", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.env, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zap.DebugLevel))
		})
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := NewSugar("dev", "loud")
	assert.Error(t, err)
}
