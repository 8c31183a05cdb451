// Package hook defines the service provider interface implemented by
// provider connection hooks. A hook always reports its connection type;
// the two metadata capabilities (extra form fields and UI field behavior)
// are optional and discovered by type assertion, never by type hierarchy.
package hook

// Hook is the minimal contract every provider connection hook satisfies.
type Hook interface {
	// ConnectionType returns the connection type the hook serves,
	// e.g. "postgres". It must be stable and non-empty.
	ConnectionType() string
}

// FormFieldProvider is implemented by hooks that contribute extra connection
// form fields beyond the standard ones. Map keys are field names; they may
// carry the historical "extra__<connection-type>__" prefix, which consumers
// strip before use.
type FormFieldProvider interface {
	ConnectionFormFields() map[string]FormField
}

// FieldBehaviorProvider is implemented by hooks that customize how the
// standard connection fields are presented.
type FieldBehaviorProvider interface {
	UIFieldBehavior() FieldBehavior
}

// FormField describes one extra connection form field contributed by a hook.
type FormField struct {
	// Label is the human-facing field label. When empty, consumers fall
	// back to the schema title and then to Label(name).
	Label string
	// Description is optional help text shown next to the field.
	Description string
	// Secret marks password-style inputs. Secret fields are rendered with
	// schema format "password" unless the schema already sets a format.
	Secret bool
	// Default is the pre-filled value, recorded as the schema default.
	Default any
	// Schema constrains the field value.
	Schema FieldSchema
}

// FieldSchema is the JSON-Schema-like validation vocabulary used by
// connection metadata documents. The zero value means "no constraints".
type FieldSchema struct {
	Type      string   `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	Format    string   `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`
	Title     string   `yaml:"title,omitempty" json:"title,omitempty" mapstructure:"title"`
	Enum      []string `yaml:"enum,omitempty" json:"enum,omitempty" mapstructure:"enum"`
	Minimum   *float64 `yaml:"minimum,omitempty" json:"minimum,omitempty" mapstructure:"minimum"`
	Maximum   *float64 `yaml:"maximum,omitempty" json:"maximum,omitempty" mapstructure:"maximum"`
	MinLength *int     `yaml:"minLength,omitempty" json:"minLength,omitempty" mapstructure:"minLength"`
	MaxLength *int     `yaml:"maxLength,omitempty" json:"maxLength,omitempty" mapstructure:"maxLength"`
	Pattern   string   `yaml:"pattern,omitempty" json:"pattern,omitempty" mapstructure:"pattern"`
	Default   any      `yaml:"default,omitempty" json:"default,omitempty" mapstructure:"default"`
}

// IsZero reports whether the schema carries no constraints at all.
func (s FieldSchema) IsZero() bool {
	return s.Type == "" && s.Format == "" && s.Title == "" && len(s.Enum) == 0 &&
		s.Minimum == nil && s.Maximum == nil && s.MinLength == nil && s.MaxLength == nil &&
		s.Pattern == "" && s.Default == nil
}

// FieldBehavior customizes the presentation of the standard connection
// fields. The YAML shape matches the ui-field-behaviour manifest section;
// empty members are omitted from serialized output.
type FieldBehavior struct {
	// HiddenFields lists standard fields the connection form hides.
	HiddenFields []string `yaml:"hidden-fields,omitempty" json:"hidden-fields,omitempty" mapstructure:"hidden-fields"`
	// Relabeling maps standard field names to replacement labels.
	Relabeling map[string]string `yaml:"relabeling,omitempty" json:"relabeling,omitempty" mapstructure:"relabeling"`
	// Placeholders maps field names to example values shown when empty.
	Placeholders map[string]string `yaml:"placeholders,omitempty" json:"placeholders,omitempty" mapstructure:"placeholders"`
}

// IsZero reports whether the behavior customizes nothing.
func (b FieldBehavior) IsZero() bool {
	return len(b.HiddenFields) == 0 && len(b.Relabeling) == 0 && len(b.Placeholders) == 0
}

// Float64 returns a pointer to v, for numeric schema bounds in literals.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for length schema bounds in literals.
func Int(v int) *int { return &v }
