package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(InfoLevel, "production", &buf).WithFields(map[string]interface{}{"component": "recipes"})

	log.Info("recipe created", map[string]interface{}{"recipe_id": "r1"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "recipe created", entry["message"])
	assert.Equal(t, "recipes", entry["component"])
	assert.Equal(t, "r1", entry["recipe_id"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(WarnLevel, "production", &buf)

	log.Info("dropped", nil)
	assert.Zero(t, buf.Len())

	log.Warn("kept", nil)
	assert.Contains(t, buf.String(), "kept")
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(InfoLevel, "production", &buf)
	_ = parent.WithFields(map[string]interface{}{"child": true})

	parent.Info("parent", nil)
	assert.NotContains(t, buf.String(), "child")
}
