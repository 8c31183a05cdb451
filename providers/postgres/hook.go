// Package postgres ships the reference PostgreSQL provider.
package postgres

import (
	"github.com/provkit/provkit/pkg/hook"
	"github.com/provkit/provkit/pkg/registry"
)

func init() {
	registry.Register(&Hook{})
}

// Hook serves PostgreSQL connections.
type Hook struct{}

// ConnectionType implements hook.Hook.
func (*Hook) ConnectionType() string { return "postgres" }

// ConnectionFormFields contributes the TLS and server-side timeout fields.
// sslmode carries its label as a schema title and statement_timeout carries
// none at all, so both label fallbacks stay exercised end to end.
func (*Hook) ConnectionFormFields() map[string]hook.FormField {
	return map[string]hook.FormField{
		"sslmode": {
			Description: "TLS negotiation mode used when opening the connection",
			Schema: hook.FieldSchema{
				Type:    "string",
				Title:   "SSL Mode",
				Enum:    []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"},
				Default: "prefer",
			},
		},
		"extra__postgres__statement_timeout": {
			Description: "Milliseconds any statement may run before the server aborts it",
			Schema: hook.FieldSchema{
				Type:    "integer",
				Minimum: hook.Float64(0),
			},
		},
	}
}

// UIFieldBehavior relabels the generic schema field and suggests the
// default server port.
func (*Hook) UIFieldBehavior() hook.FieldBehavior {
	return hook.FieldBehavior{
		Relabeling: map[string]string{
			"schema": "Database",
		},
		Placeholders: map[string]string{
			"port": "5432",
		},
	}
}
