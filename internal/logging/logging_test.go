package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/config"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("session", "abc").Info("store created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store created", entry["msg"])
	assert.Equal(t, "abc", entry["session"])
}

func TestBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)
}
