package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "warn", Format: "json"}, "foodhub-api", &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("item_id", "A").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "foodhub-api", entry["app"])
	assert.Equal(t, "A", entry["item_id"])
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	_ = newLogger(LoggerConfig{Level: "loud", Format: "console"}, "foodhub-api", &buf)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
