package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("component", "posting").Msg("entry posted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "entry posted", line["message"])
	assert.Equal(t, "posting", line["component"])
	assert.NotEmpty(t, line["time"])
}

func TestForTenant(t *testing.T) {
	var buf bytes.Buffer
	log := ForTenant(NewWithWriter(&buf), "greenhill")

	log.Warn().Msg("flush failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "greenhill", line["tenant_id"])
}
