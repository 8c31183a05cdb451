// Package registry maps fully-qualified hook class names to hook instances.
// The mapping is explicit and populated once at startup: provider packages
// register their hooks from init, the same way database/sql drivers do.
// Nothing is discovered dynamically at lookup time.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/provkit/provkit/pkg/hook"
)

// NotFoundError reports a hook class that is not in the registry.
type NotFoundError struct {
	Class string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("hook class %q is not registered", e.Class)
}

// IsNotFound reports whether err is a registry NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ClassName derives the fully-qualified class name of a hook,
// "<import-path>.<TypeName>". Pointer hooks resolve to their element type,
// so *http.Hook and http.Hook name the same class.
func ClassName(h hook.Hook) string {
	t := reflect.TypeOf(h)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// Registry is an immutable-after-startup mapping from hook class names to
// hook instances. The zero value is not usable; call New.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]hook.Hook
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{hooks: make(map[string]hook.Hook)}
}

// Register records h under its derived class name. Registering an anonymous
// type or the same class twice is a programmer error and fails.
func (r *Registry) Register(h hook.Hook) error {
	if h == nil {
		return errors.New("cannot register a nil hook")
	}
	class := ClassName(h)
	if strings.HasPrefix(class, ".") {
		return errors.Errorf("cannot register unnamed hook type %T", h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hooks[class]; exists {
		return errors.Errorf("hook class %q registered twice", class)
	}
	r.hooks[class] = h
	return nil
}

// Lookup resolves a fully-qualified hook class name to its instance.
func (r *Registry) Lookup(class string) (hook.Hook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[class]
	if !ok {
		return nil, &NotFoundError{Class: class}
	}
	return h, nil
}

// Classes returns every registered class name, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	classes := make([]string, 0, len(r.hooks))
	for class := range r.hooks {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Filter returns the sorted class names matching pattern. Patterns with glob
// metacharacters match the full class name; anything else matches as a
// substring, so "postgres" finds providers/postgres.Hook.
func (r *Registry) Filter(pattern string) ([]string, error) {
	classes := r.Classes()
	if pattern == "" {
		return classes, nil
	}

	var match func(string) bool
	if strings.ContainsAny(pattern, "*?[") {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter pattern %q", pattern)
		}
		match = g.Match
	} else {
		match = func(class string) bool { return strings.Contains(class, pattern) }
	}

	matched := classes[:0]
	for _, class := range classes {
		if match(class) {
			matched = append(matched, class)
		}
	}
	return matched, nil
}

// Default is the process-wide registry that provider packages populate
// from init.
var Default = New()

// Register adds h to the default registry and panics on conflict, matching
// the driver-registration idiom: a duplicate class is a linker-level bug,
// not a runtime condition.
func Register(h hook.Hook) {
	if err := Default.Register(h); err != nil {
		panic(err)
	}
}

// Lookup resolves class against the default registry.
func Lookup(class string) (hook.Hook, error) {
	return Default.Lookup(class)
}

// Classes lists the default registry, sorted.
func Classes() []string {
	return Default.Classes()
}

// Filter filters the default registry's class names.
func Filter(pattern string) ([]string, error) {
	return Default.Filter(pattern)
}
