package check

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

type pgHook struct{}

func (pgHook) ConnectionType() string { return "postgres" }

func (pgHook) UIFieldBehavior() hook.FieldBehavior {
	return hook.FieldBehavior{Placeholders: map[string]string{"port": "5432"}}
}

type flakyHook struct{}

func (flakyHook) ConnectionType() string { return "flaky" }

func (flakyHook) ConnectionFormFields() map[string]hook.FormField {
	panic("connection pool not initialised")
}

const pgClass = "github.com/provkit/provkit/pkg/check.pgHook"

func newChecker(t *testing.T) *Checker {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(pgHook{}))
	require.NoError(t, reg.Register(flakyHook{}))
	c, err := New(reg)
	require.NoError(t, err)
	return c
}

func seedManifest(t *testing.T, root, provider, content string) {
	t.Helper()
	dir := filepath.Join(root, provider)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(content), 0o644))
}

const cleanPostgres = `package-name: provkit-provider-postgres
name: postgres
connection-types:
  - connection-type: postgres
    hook-class-name: github.com/provkit/provkit/pkg/check.pgHook
    ui-field-behaviour:
      placeholders:
        port: "5432"
`

func TestProviderClean(t *testing.T) {
	root := t.TempDir()
	seedManifest(t, root, "postgres", cleanPostgres)

	report, err := newChecker(t).Provider(context.Background(), root, "postgres")
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.Providers)
	assert.Equal(t, 1, report.Hooks)
}

func TestProviderNotFound(t *testing.T) {
	_, err := newChecker(t).Provider(context.Background(), t.TempDir(), "postgres")
	require.Error(t, err)
	assert.True(t, manifest.IsNotFound(err))
}

func TestProviderUnresolvableHook(t *testing.T) {
	root := t.TempDir()
	seedManifest(t, root, "postgres", `package-name: provkit-provider-postgres
name: postgres
connection-types:
  - connection-type: postgres
    hook-class-name: github.com/provkit/provkit/pkg/check.goneHook
`)

	report, err := newChecker(t).Provider(context.Background(), root, "postgres")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, KindUnresolvable, f.Kind)
	assert.Equal(t, "github.com/provkit/provkit/pkg/check.goneHook", f.Class)
	assert.Equal(t, "postgres", f.Provider)
}

func TestProviderDrift(t *testing.T) {
	root := t.TempDir()
	seedManifest(t, root, "postgres", `package-name: provkit-provider-postgres
name: postgres
connection-types:
  - connection-type: postgres
    hook-class-name: github.com/provkit/provkit/pkg/check.pgHook
    ui-field-behaviour:
      placeholders:
        port: "9999"
`)

	report, err := newChecker(t).Provider(context.Background(), root, "postgres")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, KindDrift, f.Kind)
	assert.Contains(t, f.Detail, "regenerate")
}

func TestProviderMissingDeclaredSectionsIsDrift(t *testing.T) {
	root := t.TempDir()
	seedManifest(t, root, "postgres", `package-name: provkit-provider-postgres
name: postgres
connection-types:
  - connection-type: postgres
    hook-class-name: github.com/provkit/provkit/pkg/check.pgHook
`)

	report, err := newChecker(t).Provider(context.Background(), root, "postgres")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, KindDrift, report.Findings[0].Kind)
}

func TestProviderInvalidShape(t *testing.T) {
	// An unknown key fails schema validation but decodes cleanly (unknown
	// keys are ignored), so the only finding is the shape one.
	root := t.TempDir()
	seedManifest(t, root, "postgres", `package-name: provkit-provider-postgres
name: postgres
connection-types:
  - connection-type: postgres
    hook-class-name: github.com/provkit/provkit/pkg/check.pgHook
    ui-field-behaviour:
      colour-scheme: dark
      placeholders:
        port: "5432"
`)

	report, err := newChecker(t).Provider(context.Background(), root, "postgres")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, KindInvalid, f.Kind)
	assert.Contains(t, f.Detail, "schema validation failed")
}

func TestProviderExtractionFailure(t *testing.T) {
	root := t.TempDir()
	seedManifest(t, root, "flaky", `package-name: provkit-provider-flaky
name: flaky
connection-types:
  - connection-type: flaky
    hook-class-name: github.com/provkit/provkit/pkg/check.flakyHook
`)

	report, err := newChecker(t).Provider(context.Background(), root, "flaky")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, KindExtraction, f.Kind)
	assert.Contains(t, f.Detail, "connection pool not initialised")
}

func TestAll(t *testing.T) {
	root := t.TempDir()
	seedManifest(t, root, "postgres", cleanPostgres)
	seedManifest(t, root, "broken", "package-name: [oops\n")

	report, err := newChecker(t).All(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Providers)
	assert.Equal(t, 1, report.Hooks)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, "broken", f.Provider)
	assert.Equal(t, KindInvalid, f.Kind)
	assert.Empty(t, f.Class)
}

func TestAllEmptyRoot(t *testing.T) {
	_, err := newChecker(t).All(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider manifests")
}

func TestFindingString(t *testing.T) {
	withClass := Finding{Provider: "postgres", Class: pgClass, Kind: KindDrift, Detail: "stale"}
	assert.Equal(t, "postgres: [drift] github.com/provkit/provkit/pkg/check.pgHook: stale", withClass.String())

	withoutClass := Finding{Provider: "broken", Kind: KindInvalid, Detail: "unreadable"}
	assert.Equal(t, "broken: [invalid] unreadable", withoutClass.String())
}
