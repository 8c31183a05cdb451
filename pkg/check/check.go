// Package check verifies that provider manifests agree with the hooks they
// declare: every hook class resolves, the declared metadata sections are
// well-formed against the metadata schema, and they match what extraction
// would produce today. It is the CI side of the manifest migration.
package check

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/kaptinlin/jsonschema"
	"github.com/pkg/errors"

	"github.com/provkit/provkit/pkg/extract"
	"github.com/provkit/provkit/pkg/logger"
	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/registry"
)

// Kind classifies a finding.
type Kind string

const (
	// KindUnresolvable flags a hook-class-name with no registered hook.
	KindUnresolvable Kind = "unresolvable"
	// KindInvalid flags declared metadata that fails schema validation or
	// a manifest that cannot be read.
	KindInvalid Kind = "invalid"
	// KindExtraction flags a hook whose metadata extraction failed.
	KindExtraction Kind = "extraction"
	// KindDrift flags declared metadata that no longer matches the hook.
	KindDrift Kind = "drift"
)

// Finding is one problem detected in a provider manifest.
type Finding struct {
	Provider string
	Class    string
	Kind     Kind
	Detail   string
}

func (f Finding) String() string {
	if f.Class == "" {
		return fmt.Sprintf("%s: [%s] %s", f.Provider, f.Kind, f.Detail)
	}
	return fmt.Sprintf("%s: [%s] %s: %s", f.Provider, f.Kind, f.Class, f.Detail)
}

// Report accumulates the outcome of a check run.
type Report struct {
	Providers int
	Hooks     int
	Findings  []Finding
}

// Clean reports whether the run found nothing wrong.
func (r *Report) Clean() bool { return len(r.Findings) == 0 }

// Checker validates provider manifests against the registry.
type Checker struct {
	extractor *extract.Extractor
	registry  *registry.Registry
	schema    *jsonschema.Schema
}

// New builds a checker backed by reg, or the default registry when reg is
// nil. The metadata document schema is compiled once up front.
func New(reg *registry.Registry) (*Checker, error) {
	if reg == nil {
		reg = registry.Default
	}
	data, err := json.Marshal(manifest.MetadataSchema())
	if err != nil {
		return nil, errors.Wrap(err, "marshaling metadata schema")
	}
	compiled, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, errors.Wrap(err, "compiling metadata schema")
	}
	return &Checker{
		extractor: extract.New(reg),
		registry:  reg,
		schema:    compiled,
	}, nil
}

// Provider checks a single provider under root.
func (c *Checker) Provider(ctx context.Context, root, name string) (*Report, error) {
	info, err := manifest.Locate(root, name)
	if err != nil {
		return nil, err
	}
	report := &Report{Providers: 1}
	c.checkManifest(ctx, report, info.Name, info.Path)
	return report, nil
}

// All checks every provider discovered under root.
func (c *Checker) All(ctx context.Context, root string) (*Report, error) {
	infos, err := manifest.Discover(root)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, errors.Errorf("no provider manifests under %s", root)
	}
	report := &Report{Providers: len(infos)}
	for _, info := range infos {
		c.checkManifest(ctx, report, info.Name, info.Path)
	}
	return report, nil
}

// checkManifest appends findings for one manifest. A manifest that cannot
// be loaded produces a finding rather than aborting the run, so one broken
// provider does not mask the rest.
func (c *Checker) checkManifest(ctx context.Context, report *Report, provider, path string) {
	log := logger.G(ctx).WithField("provider", provider)
	m, err := manifest.Load(path)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Provider: provider, Kind: KindInvalid, Detail: err.Error(),
		})
		return
	}

	for i := range m.ConnectionTypes {
		ct := &m.ConnectionTypes[i]
		if ct.HookClassName == "" {
			continue
		}
		report.Hooks++
		log.WithField("class", ct.HookClassName).Debug("checking connection type")
		report.Findings = append(report.Findings, c.checkEntry(provider, ct)...)
	}
}

func (c *Checker) checkEntry(provider string, ct *manifest.ConnectionType) []Finding {
	var findings []Finding

	h, err := c.registry.Lookup(ct.HookClassName)
	if err != nil {
		findings = append(findings, Finding{
			Provider: provider, Class: ct.HookClassName,
			Kind: KindUnresolvable, Detail: "no registered hook",
		})
		return findings
	}

	if f := c.validateShape(provider, ct); f != nil {
		findings = append(findings, *f)
	}

	meta, err := extract.Extract(h)
	if err != nil {
		findings = append(findings, Finding{
			Provider: provider, Class: ct.HookClassName,
			Kind: KindExtraction, Detail: err.Error(),
		})
		return findings
	}

	declared, err := ct.Metadata()
	if err != nil {
		findings = append(findings, Finding{
			Provider: provider, Class: ct.HookClassName,
			Kind: KindInvalid, Detail: err.Error(),
		})
		return findings
	}

	if !reflect.DeepEqual(normalizeMetadata(declared), normalizeMetadata(meta.Metadata())) {
		findings = append(findings, Finding{
			Provider: provider, Class: ct.HookClassName,
			Kind:   KindDrift,
			Detail: "declared metadata differs from the hook; regenerate with provkit generate --update-yaml",
		})
	}
	return findings
}

// validateShape runs the declared sections through the compiled metadata
// schema. Entries without declared sections have nothing to validate.
func (c *Checker) validateShape(provider string, ct *manifest.ConnectionType) *Finding {
	doc := make(map[string]any, 2)
	if ct.Behaviour != nil {
		doc["ui-field-behaviour"] = ct.Behaviour
	}
	if ct.ConnFields != nil {
		doc["conn-fields"] = ct.ConnFields
	}
	if len(doc) == 0 {
		return nil
	}

	result := c.schema.Validate(doc)
	if result.Valid {
		return nil
	}
	return &Finding{
		Provider: provider, Class: ct.HookClassName,
		Kind: KindInvalid, Detail: fmt.Sprintf("schema validation failed: %v", result.Errors),
	}
}

// normalizeMetadata collapses empty sections to nil so an absent section
// and a declared-but-empty one compare equal.
func normalizeMetadata(m manifest.Metadata) manifest.Metadata {
	if m.Behaviour != nil && m.Behaviour.IsZero() {
		m.Behaviour = nil
	}
	if m.Behaviour != nil {
		b := *m.Behaviour
		if len(b.HiddenFields) == 0 {
			b.HiddenFields = nil
		}
		b.Relabeling = normalizeStringMap(b.Relabeling)
		b.Placeholders = normalizeStringMap(b.Placeholders)
		m.Behaviour = &b
	}
	if len(m.ConnFields) == 0 {
		m.ConnFields = nil
	}
	return m
}

func normalizeStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
