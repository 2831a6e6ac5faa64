package container

import (
	"fmt"
	"maps"
	"reflect"
)

// ContainerKey requests the current scope: resolving it returns a fresh
// child of the resolving container.
//
//	cls.Property("scope", container.Inject(container.ContainerKey), setScope)
var ContainerKey = reflect.TypeOf((*Container)(nil))

// ── Dependency descriptors ────────────────────────────────────────────────────

// Dependency describes one injection slot: a constructor or method parameter,
// a property, or a Produce parameter of a provider.
//
// Dependencies are values; every modifier returns a copy, so one descriptor
// can be reused as an alias for many slots.
//
//	v := container.Inject("v").Required()
//	cls.Param(0, v)
type Dependency struct {
	key      any
	index    int
	name     string
	required bool
	noWrap   bool
	params   map[string]any
}

// Inject returns a descriptor for key. Keys must be comparable. The slot
// position is assigned by the owner (Class.Param, declaration order for
// methods and providers) unless At is used.
func Inject(key any) Dependency {
	return Dependency{key: key, index: -1}
}

// Required makes an absent value an error instead of a zero value.
func (d Dependency) Required() Dependency {
	d.required = true
	return d
}

// NoWrap injects the raw instance, never the wrapper surrogate.
func (d Dependency) NoWrap() Dependency {
	d.noWrap = true
	return d
}

// Named sets the name used to match bound named parameters. Defaults to the
// key when the key is a string.
func (d Dependency) Named(name string) Dependency {
	d.name = name
	return d
}

// At pins the slot to a parameter position.
func (d Dependency) At(index int) Dependency {
	d.index = index
	return d
}

// Param binds a named parameter handed to whatever produces this slot's
// value. Bound parameters win over container-resolved values.
//
//	// the "answer" provider receives base=41 for this slot only
//	container.Inject("answer").Param("base", 41)
func (d Dependency) Param(name string, value any) Dependency {
	params := make(map[string]any, len(d.params)+1)
	maps.Copy(params, d.params)
	params[name] = value
	d.params = params
	return d
}

// Key returns the requested key, with lazy references left unevaluated.
func (d Dependency) Key() any { return d.key }

// Index returns the parameter position, or -1 when unassigned.
func (d Dependency) Index() int { return d.index }

// Name returns the name used for named-parameter matching.
func (d Dependency) Name() string {
	if d.name != "" {
		return d.name
	}
	if s, ok := deref(d.key).(string); ok {
		return s
	}
	return ""
}

// IsRequired reports whether an absent value is an error.
func (d Dependency) IsRequired() bool { return d.required }

// IsNoWrap reports whether the raw instance must be injected.
func (d Dependency) IsNoWrap() bool { return d.noWrap }

// Params returns the bound named parameters. The map must not be modified.
func (d Dependency) Params() map[string]any { return d.params }

// positioned assigns declaration-order positions to unpinned descriptors.
func positioned(deps []Dependency) []Dependency {
	out := make([]Dependency, len(deps))
	for i, d := range deps {
		if d.index < 0 {
			d.index = i
		}
		out[i] = d
	}
	return out
}

// ── Lazy references ───────────────────────────────────────────────────────────

// LazyRef defers evaluation of a key until resolution. It lets a class
// refer to one declared after it:
//
//	var d2 *container.Class
//	d1 := container.NewClass("D1", newD1).Param(0, container.Inject(container.Lazy(func() any { return d2 })))
//	d2 = container.NewClass("D2", newD2).Param(0, container.Inject(d1))
type LazyRef struct {
	ref func() any
}

// Lazy wraps ref into a deferred key.
func Lazy(ref func() any) *LazyRef {
	return &LazyRef{ref: ref}
}

// Ref evaluates the reference.
func (l *LazyRef) Ref() any { return l.ref() }

func deref(key any) any {
	for {
		l, ok := key.(*LazyRef)
		if !ok {
			return key
		}
		key = l.Ref()
	}
}

// validKey reports whether key can index a container's maps.
func validKey(key any) bool {
	return key != nil && reflect.TypeOf(key).Comparable()
}

// KeyName renders a key for logs and error messages.
func KeyName(key any) string {
	switch k := deref(key).(type) {
	case nil:
		return "<nil>"
	case string:
		return k
	case *Class:
		return k.Name()
	case reflect.Type:
		return k.String()
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprintf("%v", k)
	}
}

// ── Args ──────────────────────────────────────────────────────────────────────

// Args holds the positional arguments handed to constructors, methods and
// Produce. A nil slot means "not supplied" or "absent".
type Args []any

// Get returns the value at position i, or nil when out of range.
func (a Args) Get(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Arg returns the value at position i converted to T, or T's zero value
// when the slot is empty or holds another type.
//
//	v := container.Arg[int](args, 0)
func Arg[T any](a Args, i int) T {
	v, _ := a.Get(i).(T)
	return v
}
