// Package manifest reads, discovers and rewrites provider manifests
// (provider.yaml files). The update path works at the YAML node level so
// that everything except the generated sections survives byte for byte.
package manifest

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/provkit/provkit/pkg/hook"
)

// Manifest is the typed view of a provider.yaml. Unknown keys are ignored
// here; they are preserved by the node-level update path.
type Manifest struct {
	PackageName     string           `yaml:"package-name"`
	Name            string           `yaml:"name"`
	Description     string           `yaml:"description,omitempty"`
	Versions        []string         `yaml:"versions,omitempty"`
	ConnectionTypes []ConnectionType `yaml:"connection-types,omitempty"`
}

// ConnectionType is one connection-types entry. The two generated sections
// stay loosely typed on load because hand-edited manifests carry all kinds
// of scalar sloppiness; DecodeBehavior and DecodeConnFields produce the
// typed form.
type ConnectionType struct {
	ConnectionType string         `yaml:"connection-type"`
	HookClassName  string         `yaml:"hook-class-name"`
	Behaviour      map[string]any `yaml:"ui-field-behaviour,omitempty"`
	ConnFields     map[string]any `yaml:"conn-fields,omitempty"`
}

// ConnField is the declared form of one extra connection field.
type ConnField struct {
	Label       string           `yaml:"label,omitempty" json:"label,omitempty" mapstructure:"label"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	Schema      hook.FieldSchema `yaml:"schema,omitempty" json:"schema,omitempty" mapstructure:"schema"`
}

// Metadata is the declarative document holding the two generated sections.
// It is what generate emits, what update splices in and what check
// validates.
type Metadata struct {
	Behaviour  *hook.FieldBehavior  `yaml:"ui-field-behaviour,omitempty" json:"ui-field-behaviour,omitempty"`
	ConnFields map[string]ConnField `yaml:"conn-fields,omitempty" json:"conn-fields,omitempty"`
}

// Empty reports whether the document carries no metadata at all.
func (m Metadata) Empty() bool {
	return (m.Behaviour == nil || m.Behaviour.IsZero()) && len(m.ConnFields) == 0
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return &m, nil
}

// HookClassNames returns the hook-class-name of every connection-types
// entry, in manifest order. Entries without one are skipped.
func (m *Manifest) HookClassNames() []string {
	classes := make([]string, 0, len(m.ConnectionTypes))
	for _, ct := range m.ConnectionTypes {
		if ct.HookClassName != "" {
			classes = append(classes, ct.HookClassName)
		}
	}
	return classes
}

// EntryFor returns the connection-types entry registered for a hook class.
func (m *Manifest) EntryFor(class string) (*ConnectionType, bool) {
	for i := range m.ConnectionTypes {
		if m.ConnectionTypes[i].HookClassName == class {
			return &m.ConnectionTypes[i], true
		}
	}
	return nil, false
}

// DecodeBehavior converts the raw ui-field-behaviour section into its typed
// form. A missing section yields nil. Decoding is weakly typed on purpose:
// hand-edited manifests routinely hold integer placeholders and
// single-string hidden-fields.
func (c *ConnectionType) DecodeBehavior() (*hook.FieldBehavior, error) {
	if c.Behaviour == nil {
		return nil, nil
	}
	var b hook.FieldBehavior
	if err := decodeLoose(c.Behaviour, &b); err != nil {
		return nil, errors.Wrapf(err, "ui-field-behaviour of %q", c.ConnectionType)
	}
	return &b, nil
}

// DecodeConnFields converts the raw conn-fields section into its typed form.
// A missing section yields nil.
func (c *ConnectionType) DecodeConnFields() (map[string]ConnField, error) {
	if c.ConnFields == nil {
		return nil, nil
	}
	fields := make(map[string]ConnField, len(c.ConnFields))
	for name, raw := range c.ConnFields {
		var f ConnField
		if raw != nil {
			if err := decodeLoose(raw, &f); err != nil {
				return nil, errors.Wrapf(err, "conn-fields entry %q of %q", name, c.ConnectionType)
			}
		}
		fields[name] = f
	}
	return fields, nil
}

// Metadata returns both declared sections of the entry in typed form.
func (c *ConnectionType) Metadata() (Metadata, error) {
	behavior, err := c.DecodeBehavior()
	if err != nil {
		return Metadata{}, err
	}
	fields, err := c.DecodeConnFields()
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Behaviour: behavior, ConnFields: fields}, nil
}

func decodeLoose(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
