package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", "json", &buf)

	log.WithField("component", "roster").WithField("season", "2025REG").Info("built")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "built", line["msg"])
	assert.Equal(t, "roster", line["component"])
	assert.Equal(t, "2025REG", line["season"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().WithField("component", "x").Info("dropped")
	})
}

func TestNewWithOutput_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("chatty", "text", &buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid LOG_LEVEL")
}

