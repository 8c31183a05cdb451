package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provkit/provkit/pkg/extract"
	"github.com/provkit/provkit/pkg/registry"
)

func TestHookRegisters(t *testing.T) {
	h, err := registry.Lookup("github.com/provkit/provkit/providers/http.Hook")
	require.NoError(t, err)
	assert.Equal(t, "http", h.ConnectionType())
}

func TestExtractedMetadata(t *testing.T) {
	meta, err := extract.Extract(&Hook{})
	require.NoError(t, err)

	assert.Equal(t, "http", meta.ConnectionType)
	require.Len(t, meta.ConnFields, 2)

	apiKey := meta.ConnFields["api_key"]
	assert.Equal(t, "API Key", apiKey.Label)
	assert.Equal(t, "password", apiKey.Schema.Format)

	timeout := meta.ConnFields["timeout"]
	assert.Equal(t, "Request Timeout", timeout.Label)
	assert.Equal(t, 60, timeout.Schema.Default)

	require.NotNil(t, meta.Behavior)
	assert.Equal(t, []string{"extra"}, meta.Behavior.HiddenFields)
	assert.Equal(t, "https://api.example.com", meta.Behavior.Placeholders["host"])
}
