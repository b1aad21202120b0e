package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", "json", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("dropped")
	log.Warn().Str("code", "GP-1").Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, Service, line["service"])
	assert.Equal(t, "GP-1", line["code"])
}

func TestInitWithWriter_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("verbose", "json", &buf)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
