package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provkit/provkit/pkg/extract"
	"github.com/provkit/provkit/pkg/hook"
)

func TestGenerateOptionsValidate(t *testing.T) {
	tests := []struct {
		name          string
		opts          *generateOptions
		expectedError string
	}{
		{
			name: "provider fragments",
			opts: &generateOptions{Provider: "postgres"},
		},
		{
			name: "hook class fragment",
			opts: &generateOptions{HookClass: "example.com/hooks.Hook"},
		},
		{
			name: "provider update",
			opts: &generateOptions{Provider: "postgres", UpdateYAML: true},
		},
		{
			name: "fragments to file",
			opts: &generateOptions{Provider: "postgres", Output: "out.yaml"},
		},
		{
			name:          "update without provider",
			opts:          &generateOptions{HookClass: "example.com/hooks.Hook", UpdateYAML: true},
			expectedError: "--update-yaml requires --provider",
		},
		{
			name:          "update with output",
			opts:          &generateOptions{Provider: "postgres", UpdateYAML: true, Output: "out.yaml"},
			expectedError: "--update-yaml and --output are mutually exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.expectedError)
			}
		})
	}
}

func TestWriteFragmentsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.yaml")
	metas := []extract.HookMetadata{{
		Class:          "example.com/hooks/docker.Hook",
		ConnectionType: "docker",
		Behavior:       &hook.FieldBehavior{HiddenFields: []string{"schema"}},
	}}

	require.NoError(t, writeFragments(path, metas))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `# example.com/hooks/docker.Hook (connection-type: docker)
ui-field-behaviour:
  hidden-fields:
    - schema
`, string(data))
}
