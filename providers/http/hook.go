// Package http ships the reference HTTP provider: a hook contributing
// authentication and timeout form fields on top of the standard connection
// fields.
package http

import (
	"github.com/provkit/provkit/pkg/hook"
	"github.com/provkit/provkit/pkg/registry"
)

func init() {
	registry.Register(&Hook{})
}

// Hook serves generic HTTP connections.
type Hook struct{}

// ConnectionType implements hook.Hook.
func (*Hook) ConnectionType() string { return "http" }

// ConnectionFormFields contributes the extra HTTP connection fields. Field
// names keep the historical extra__http__ prefix; consumers strip it.
func (*Hook) ConnectionFormFields() map[string]hook.FormField {
	return map[string]hook.FormField{
		"extra__http__api_key": {
			Label:       "API Key",
			Description: "Sent as the X-API-Key header on every request",
			Secret:      true,
			Schema:      hook.FieldSchema{Type: "string"},
		},
		"extra__http__timeout": {
			Label:       "Request Timeout",
			Description: "Seconds to wait for a response before giving up",
			Default:     60,
			Schema: hook.FieldSchema{
				Type:    "integer",
				Minimum: hook.Float64(1),
				Maximum: hook.Float64(3600),
			},
		},
	}
}

// UIFieldBehavior hides the free-form extra field; everything an HTTP
// connection needs has a dedicated field.
func (*Hook) UIFieldBehavior() hook.FieldBehavior {
	return hook.FieldBehavior{
		HiddenFields: []string{"extra"},
		Placeholders: map[string]string{
			"host": "https://api.example.com",
		},
	}
}
