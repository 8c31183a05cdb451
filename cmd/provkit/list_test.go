package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provkit/provkit/pkg/hook"
)

type typeOnlyHook struct{}

func (typeOnlyHook) ConnectionType() string { return "type-only" }

type formOnlyHook struct{}

func (formOnlyHook) ConnectionType() string { return "form-only" }

func (formOnlyHook) ConnectionFormFields() map[string]hook.FormField { return nil }

type fullHook struct{}

func (fullHook) ConnectionType() string { return "full" }

func (fullHook) ConnectionFormFields() map[string]hook.FormField { return nil }

func (fullHook) UIFieldBehavior() hook.FieldBehavior { return hook.FieldBehavior{} }

func TestCapabilities(t *testing.T) {
	assert.Equal(t, "-", capabilities(typeOnlyHook{}))
	assert.Equal(t, "form-fields", capabilities(formOnlyHook{}))
	assert.Equal(t, "form-fields, field-behavior", capabilities(fullHook{}))
}
