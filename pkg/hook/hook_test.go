package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single word", input: "schema", expected: "Schema"},
		{name: "snake case", input: "api_key", expected: "Api Key"},
		{name: "dashes", input: "account-id", expected: "Account Id"},
		{name: "mixed separators", input: "ssl_mode-override", expected: "Ssl Mode Override"},
		{name: "uppercase input lowered", input: "API_KEY", expected: "Api Key"},
		{name: "leading separator", input: "_extra", expected: "Extra"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Label(tt.input))
		})
	}
}

func TestFieldBehaviorIsZero(t *testing.T) {
	assert.True(t, FieldBehavior{}.IsZero())
	assert.False(t, FieldBehavior{HiddenFields: []string{"extra"}}.IsZero())
	assert.False(t, FieldBehavior{Relabeling: map[string]string{"host": "Registry URL"}}.IsZero())
	assert.False(t, FieldBehavior{Placeholders: map[string]string{"port": "5432"}}.IsZero())
}

func TestFieldSchemaIsZero(t *testing.T) {
	assert.True(t, FieldSchema{}.IsZero())
	assert.False(t, FieldSchema{Type: "string"}.IsZero())

	min := 1.0
	assert.False(t, FieldSchema{Minimum: &min}.IsZero())
	assert.False(t, FieldSchema{Default: "prefer"}.IsZero())
}

func TestFieldBehaviorYAMLRoundTrip(t *testing.T) {
	in := FieldBehavior{
		HiddenFields: []string{"schema", "extra"},
		Relabeling:   map[string]string{"host": "Registry URL"},
		Placeholders: map[string]string{"port": "5432"},
	}

	raw, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out FieldBehavior
	require.NoError(t, yaml.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	// Placeholder values stay strings even when they look numeric.
	assert.Contains(t, string(raw), `port: "5432"`)
}
