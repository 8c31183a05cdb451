package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provkit/provkit/pkg/hook"
	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/registry"
)

type bareHook struct{}

func (bareHook) ConnectionType() string { return "bare" }

type registryHook struct{}

func (registryHook) ConnectionType() string { return "docker" }

func (registryHook) UIFieldBehavior() hook.FieldBehavior {
	return hook.FieldBehavior{
		HiddenFields: []string{"schema", "extra"},
		Relabeling:   map[string]string{"host": "Registry URL"},
	}
}

type formHook struct {
	fields map[string]hook.FormField
}

func (formHook) ConnectionType() string { return "form" }

func (h formHook) ConnectionFormFields() map[string]hook.FormField { return h.fields }

type emptyBehaviorHook struct{}

func (emptyBehaviorHook) ConnectionType() string { return "empty" }

func (emptyBehaviorHook) UIFieldBehavior() hook.FieldBehavior { return hook.FieldBehavior{} }

type namelessHook struct{}

func (namelessHook) ConnectionType() string { return "" }

type panickyHook struct{}

func (panickyHook) ConnectionType() string { return "panicky" }

func (panickyHook) ConnectionFormFields() map[string]hook.FormField {
	panic("widget construction requires a live flask app")
}

func TestExtractBehaviorOnly(t *testing.T) {
	meta, err := Extract(registryHook{})
	require.NoError(t, err)

	assert.Equal(t, "github.com/provkit/provkit/pkg/extract.registryHook", meta.Class)
	assert.Equal(t, "docker", meta.ConnectionType)
	assert.Nil(t, meta.ConnFields)
	require.NotNil(t, meta.Behavior)
	assert.Equal(t, []string{"schema", "extra"}, meta.Behavior.HiddenFields)
	assert.Equal(t, map[string]string{"host": "Registry URL"}, meta.Behavior.Relabeling)
	assert.Empty(t, meta.Behavior.Placeholders)
	assert.False(t, meta.Empty())
}

func TestExtractNormalizesFormFields(t *testing.T) {
	h := formHook{fields: map[string]hook.FormField{
		"extra__form__api_key": {
			Secret: true,
			Schema: hook.FieldSchema{Type: "string"},
		},
		"region": {
			Label:       "AWS Region",
			Description: "Region the account lives in",
			Schema:      hook.FieldSchema{Type: "string"},
		},
		"timeout": {
			Default: 30,
			Schema:  hook.FieldSchema{Type: "integer", Title: "Request Timeout"},
		},
		"ssl_mode": {
			Schema: hook.FieldSchema{Type: "string", Enum: []string{"disable", "prefer", "require"}, Default: "prefer"},
		},
	}}

	meta, err := Extract(h)
	require.NoError(t, err)
	require.Len(t, meta.ConnFields, 4)

	apiKey := meta.ConnFields["api_key"]
	assert.Equal(t, "Api Key", apiKey.Label, "prefix is stripped before the label fallback")
	assert.Equal(t, "password", apiKey.Schema.Format, "secret fields force the password format")

	region := meta.ConnFields["region"]
	assert.Equal(t, "AWS Region", region.Label)
	assert.Equal(t, "Region the account lives in", region.Description)

	timeout := meta.ConnFields["timeout"]
	assert.Equal(t, "Request Timeout", timeout.Label, "schema title becomes the label")
	assert.Empty(t, timeout.Schema.Title, "the title moves out of the schema")
	assert.Equal(t, 30, timeout.Schema.Default, "field defaults land in the schema")

	sslMode := meta.ConnFields["ssl_mode"]
	assert.Equal(t, "Ssl Mode", sslMode.Label)
	assert.Equal(t, "prefer", sslMode.Schema.Default, "schema defaults are kept as-is")
}

func TestExtractSecretKeepsExplicitFormat(t *testing.T) {
	h := formHook{fields: map[string]hook.FormField{
		"token": {Secret: true, Schema: hook.FieldSchema{Type: "string", Format: "uuid"}},
	}}
	meta, err := Extract(h)
	require.NoError(t, err)
	assert.Equal(t, "uuid", meta.ConnFields["token"].Schema.Format)
}

func TestExtractWithoutCapabilities(t *testing.T) {
	meta, err := Extract(bareHook{})
	require.NoError(t, err)
	assert.True(t, meta.Empty())
	assert.Equal(t, "bare", meta.ConnectionType)
}

func TestExtractEmptyBehaviorYieldsNoSection(t *testing.T) {
	meta, err := Extract(emptyBehaviorHook{})
	require.NoError(t, err)
	assert.Nil(t, meta.Behavior)
	assert.True(t, meta.Empty())
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name     string
		h        hook.Hook
		contains string
	}{
		{
			name:     "empty connection type",
			h:        namelessHook{},
			contains: "empty connection type",
		},
		{
			name:     "prefix without field name",
			h:        formHook{fields: map[string]hook.FormField{"extra__form": {}}},
			contains: "extra__ prefix",
		},
		{
			name:     "empty field name",
			h:        formHook{fields: map[string]hook.FormField{"": {}}},
			contains: "empty field name",
		},
		{
			name: "duplicate after prefix strip",
			h: formHook{fields: map[string]hook.FormField{
				"extra__form__host": {},
				"host":              {},
			}},
			contains: "duplicate field",
		},
		{
			name:     "panicking capability",
			h:        panickyHook{},
			contains: "panicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.h)
			require.Error(t, err)

			var extractionErr *ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.NotEmpty(t, extractionErr.Class)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestExtractorHook(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registryHook{}))
	e := New(reg)
	ctx := context.Background()

	meta, err := e.Hook(ctx, "github.com/provkit/provkit/pkg/extract.registryHook")
	require.NoError(t, err)
	assert.Equal(t, "docker", meta.ConnectionType)

	_, err = e.Hook(ctx, "example.com/nope.Hook")
	require.Error(t, err)
	assert.True(t, registry.IsNotFound(err))
}

func writeManifest(t *testing.T, root, provider, content string) {
	t.Helper()
	dir := filepath.Join(root, provider)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "provider.yaml"), []byte(content), 0o644))
}

func TestExtractorProvider(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registryHook{}))
	e := New(reg)
	ctx := context.Background()
	root := t.TempDir()

	writeManifest(t, root, "docker", `package-name: provkit-provider-docker
name: docker
connection-types:
  - connection-type: docker
    hook-class-name: github.com/provkit/provkit/pkg/extract.registryHook
  - connection-type: docker-swarm
    hook-class-name: example.com/gone.SwarmHook
`)

	metas, err := e.Provider(ctx, root, "docker")
	require.Error(t, err, "the unresolvable hook class must surface")
	assert.True(t, registry.IsNotFound(err))
	require.Len(t, metas, 1, "resolvable hooks still extract")
	assert.Equal(t, "docker", metas[0].ConnectionType)
}

func TestExtractorProviderWithoutConnectionTypes(t *testing.T) {
	e := New(registry.New())
	root := t.TempDir()
	writeManifest(t, root, "bare", "package-name: provkit-provider-bare\nname: bare\n")

	_, err := e.Provider(context.Background(), root, "bare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no connection types")
}

func TestExtractorProviderNotFound(t *testing.T) {
	e := New(registry.New())
	_, err := e.Provider(context.Background(), t.TempDir(), "ghost")
	require.Error(t, err)
	assert.True(t, manifest.IsNotFound(err))
}

func TestEntries(t *testing.T) {
	behavior := &hook.FieldBehavior{HiddenFields: []string{"extra"}}
	entries := Entries([]HookMetadata{
		{Class: "a.Hook", Behavior: behavior},
		{Class: "b.Hook", ConnFields: map[string]manifest.ConnField{"host": {Label: "Host"}}},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, behavior, entries["a.Hook"].Behavior)
	assert.Equal(t, "Host", entries["b.Hook"].ConnFields["host"].Label)
}
