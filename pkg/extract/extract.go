// Package extract derives declarative connection metadata from registered
// hooks. It is the read side of the manifest migration: hooks expose their
// form fields and UI behavior through the optional capability interfaces,
// and the extractor normalizes them into the document shape manifests
// declare.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/provkit/provkit/pkg/hook"
	"github.com/provkit/provkit/pkg/logger"
	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/registry"
)

// extraPrefix is the historical field-name prefix hooks used to namespace
// their extra fields, "extra__<connection-type>__<name>".
const extraPrefix = "extra__"

// ExtractionError reports a hook whose metadata could not be derived:
// a capability call failed or returned malformed data.
type ExtractionError struct {
	Class string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting metadata from %s: %v", e.Class, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// HookMetadata is the extracted connection metadata of one hook.
type HookMetadata struct {
	Class          string
	ConnectionType string
	Behavior       *hook.FieldBehavior
	ConnFields     map[string]manifest.ConnField
}

// Empty reports whether the hook exposed no metadata at all, either because
// it implements neither capability or because both came back empty.
func (m HookMetadata) Empty() bool {
	return m.Behavior == nil && len(m.ConnFields) == 0
}

// Metadata returns the extracted sections as a manifest document.
func (m HookMetadata) Metadata() manifest.Metadata {
	return manifest.Metadata{Behaviour: m.Behavior, ConnFields: m.ConnFields}
}

// Entries converts extracted metadata into manifest update entries keyed by
// hook class name.
func Entries(metas []HookMetadata) map[string]manifest.Entry {
	entries := make(map[string]manifest.Entry, len(metas))
	for _, meta := range metas {
		entries[meta.Class] = manifest.Entry{
			Behavior:   meta.Behavior,
			ConnFields: meta.ConnFields,
		}
	}
	return entries
}

// Extractor resolves hook classes against a registry and extracts their
// metadata.
type Extractor struct {
	registry *registry.Registry
}

// New returns an extractor backed by reg, or by the default registry when
// reg is nil.
func New(reg *registry.Registry) *Extractor {
	if reg == nil {
		reg = registry.Default
	}
	return &Extractor{registry: reg}
}

// Hook resolves a fully-qualified hook class and extracts its metadata.
func (e *Extractor) Hook(ctx context.Context, class string) (*HookMetadata, error) {
	h, err := e.registry.Lookup(class)
	if err != nil {
		return nil, err
	}
	logger.G(ctx).WithField("class", class).Debug("extracting hook metadata")
	return Extract(h)
}

// Provider extracts metadata from every hook the provider's manifest lists.
// Hooks that fail to resolve or extract are aggregated into the returned
// error; successfully extracted hooks are returned either way, in manifest
// order.
func (e *Extractor) Provider(ctx context.Context, root, provider string) ([]HookMetadata, error) {
	info, err := manifest.Locate(root, provider)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(info.Path)
	if err != nil {
		return nil, err
	}
	classes := m.HookClassNames()
	if len(classes) == 0 {
		return nil, errors.Errorf("provider %q declares no connection types", provider)
	}

	log := logger.G(ctx).WithField("provider", provider)
	var merr *multierror.Error
	metas := make([]HookMetadata, 0, len(classes))
	seen := make(map[string]bool, len(classes))
	for _, class := range classes {
		if seen[class] {
			continue
		}
		seen[class] = true
		meta, err := e.Hook(ctx, class)
		if err != nil {
			log.WithError(err).WithField("class", class).Warn("skipping hook")
			merr = multierror.Append(merr, err)
			continue
		}
		metas = append(metas, *meta)
	}
	return metas, merr.ErrorOrNil()
}

// Extract derives the declarative metadata of a single hook instance. The
// hook's capabilities are queried by type assertion; a hook implementing
// neither yields empty metadata, not an error.
func Extract(h hook.Hook) (*HookMetadata, error) {
	class := registry.ClassName(h)
	connType, err := safeConnectionType(h)
	if err != nil {
		return nil, &ExtractionError{Class: class, Err: err}
	}
	if connType == "" {
		return nil, &ExtractionError{Class: class, Err: errors.New("hook reports an empty connection type")}
	}

	meta := &HookMetadata{Class: class, ConnectionType: connType}

	if provider, ok := h.(hook.FormFieldProvider); ok {
		raw, err := safeFormFields(provider)
		if err != nil {
			return nil, &ExtractionError{Class: class, Err: err}
		}
		fields, err := normalizeConnFields(raw)
		if err != nil {
			return nil, &ExtractionError{Class: class, Err: err}
		}
		meta.ConnFields = fields
	}

	if provider, ok := h.(hook.FieldBehaviorProvider); ok {
		behavior, err := safeFieldBehavior(provider)
		if err != nil {
			return nil, &ExtractionError{Class: class, Err: err}
		}
		if !behavior.IsZero() {
			meta.Behavior = &behavior
		}
	}
	return meta, nil
}

// normalizeConnFields converts raw form fields into their declared shape:
// the historical extra__ prefix is stripped, the label falls back to the
// schema title and then to the title-cased field name, secret fields force
// a password format, and field defaults land in the schema.
func normalizeConnFields(raw map[string]hook.FormField) (map[string]manifest.ConnField, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	fields := make(map[string]manifest.ConnField, len(raw))
	for name, field := range raw {
		stripped, err := normalizeFieldName(name)
		if err != nil {
			return nil, err
		}
		if _, dup := fields[stripped]; dup {
			return nil, errors.Errorf("duplicate field %q after prefix strip", stripped)
		}

		schema := field.Schema
		label := field.Label
		if label == "" {
			label = schema.Title
		}
		if label == "" {
			label = hook.Label(stripped)
		}
		// The title always moves into the label.
		schema.Title = ""

		if field.Secret && schema.Format == "" {
			schema.Format = "password"
		}
		if field.Default != nil && schema.Default == nil {
			schema.Default = field.Default
		}

		fields[stripped] = manifest.ConnField{
			Label:       label,
			Description: field.Description,
			Schema:      schema,
		}
	}
	return fields, nil
}

func normalizeFieldName(name string) (string, error) {
	if name == "" {
		return "", errors.New("form fields contain an empty field name")
	}
	if !strings.HasPrefix(name, extraPrefix) {
		return name, nil
	}
	parts := strings.SplitN(name, "__", 3)
	if len(parts) < 3 || parts[2] == "" {
		return "", errors.Errorf("field %q has no name after its extra__ prefix", name)
	}
	return parts[2], nil
}

// The capability calls run hook code the extractor does not control, so a
// panicking hook degrades to an extraction failure instead of taking the
// whole run down.

func safeConnectionType(h hook.Hook) (connType string, err error) {
	defer recoverAs("connection type", &err)
	return h.ConnectionType(), nil
}

func safeFormFields(p hook.FormFieldProvider) (fields map[string]hook.FormField, err error) {
	defer recoverAs("connection form fields", &err)
	return p.ConnectionFormFields(), nil
}

func safeFieldBehavior(p hook.FieldBehaviorProvider) (behavior hook.FieldBehavior, err error) {
	defer recoverAs("UI field behavior", &err)
	b := p.UIFieldBehavior()
	return normalizeBehavior(b), nil
}

func recoverAs(op string, err *error) {
	if r := recover(); r != nil {
		*err = errors.Errorf("%s panicked: %v", op, r)
	}
}

// normalizeBehavior copies the behavior so extracted metadata never aliases
// hook-owned slices and maps, and drops empty members. Hidden fields keep
// the order the hook declared.
func normalizeBehavior(b hook.FieldBehavior) hook.FieldBehavior {
	out := hook.FieldBehavior{}
	if len(b.HiddenFields) > 0 {
		out.HiddenFields = append([]string(nil), b.HiddenFields...)
	}
	if len(b.Relabeling) > 0 {
		out.Relabeling = make(map[string]string, len(b.Relabeling))
		for k, v := range b.Relabeling {
			out.Relabeling[k] = v
		}
	}
	if len(b.Placeholders) > 0 {
		out.Placeholders = make(map[string]string, len(b.Placeholders))
		for k, v := range b.Placeholders {
			out.Placeholders[k] = v
		}
	}
	return out
}
