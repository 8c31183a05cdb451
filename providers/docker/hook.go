// Package docker ships the reference Docker registry provider. Its hook
// customizes field presentation only and contributes no extra form fields,
// covering the behavior-only extraction path.
package docker

import (
	"github.com/provkit/provkit/pkg/hook"
	"github.com/provkit/provkit/pkg/registry"
)

func init() {
	registry.Register(&Hook{})
}

// Hook serves Docker registry connections.
type Hook struct{}

// ConnectionType implements hook.Hook.
func (*Hook) ConnectionType() string { return "docker" }

// UIFieldBehavior hides the fields a registry login never uses and renames
// the generic ones to registry terms.
func (*Hook) UIFieldBehavior() hook.FieldBehavior {
	return hook.FieldBehavior{
		HiddenFields: []string{"schema", "extra"},
		Relabeling: map[string]string{
			"host":  "Registry URL",
			"login": "Username",
		},
	}
}
