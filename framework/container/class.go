package container

import (
	"reflect"
	"slices"
	"sync"
)

// Constructor builds a new instance from positional arguments.
type Constructor func(args Args) (any, error)

// MethodFunc invokes a member. recv is nil for static members.
type MethodFunc func(recv any, args Args) (any, error)

// Method is an injectable member of a Class.
type Method struct {
	name     string
	fn       MethodFunc
	deps     []Dependency
	static   bool
	noInject bool
}

// Name returns the member name.
func (m *Method) Name() string { return m.name }

// Dependencies returns the parameter descriptors in position order.
func (m *Method) Dependencies() []Dependency { return m.deps }

type property struct {
	name string
	dep  Dependency
	set  func(obj, value any)
}

// ── Class ─────────────────────────────────────────────────────────────────────

// Class is the explicit descriptor table of a constructible type. It is also
// the key under which that type is resolved.
//
// Declare classes once, at package level, and treat them as read-only
// afterwards:
//
//	var B = container.NewClass("B", func(args container.Args) (*B, error) {
//	    return &B{V: container.Arg[int](args, 0)}, nil
//	}).
//	    Param(0, container.Inject("v").Required()).
//	    Property("a", container.Inject(A), container.Setter(func(b *B, a *container.Wrapped) { b.A = a }))
type Class struct {
	name      string
	goType    reflect.Type
	super     *Class
	construct Constructor
	params    []Dependency
	props     []property
	methods   map[string]*Method
	transient bool
	noWrap    bool
	provider  *providerSpec
}

// NewClass declares a class producing T and records T in DefaultRegistry so
// instances can later be matched back to their class.
func NewClass[T any](name string, ctor func(args Args) (T, error)) *Class {
	cls := &Class{
		name:    name,
		goType:  reflect.TypeOf((*T)(nil)).Elem(),
		methods: make(map[string]*Method),
		construct: func(args Args) (any, error) {
			v, err := ctor(args)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	DefaultRegistry.Add(cls)
	return cls
}

// Name returns the class name; it may be empty for anonymous classes.
func (cls *Class) Name() string { return cls.name }

func (cls *Class) String() string {
	if cls.name == "" {
		return "<anonymous class>"
	}
	return cls.name
}

// Super returns the parent class, if any.
func (cls *Class) Super() *Class { return cls.super }

// IsTransient reports whether instances are never cached.
func (cls *Class) IsTransient() bool { return cls.transient }

// IsNoWrap reports whether instances are never wrapped.
func (cls *Class) IsNoWrap() bool { return cls.noWrap }

// Extends records super as the parent class. An instance of cls then
// satisfies requests for super.
func (cls *Class) Extends(super *Class) *Class {
	cls.super = super
	return cls
}

// Param declares the constructor parameter at index.
func (cls *Class) Param(index int, dep Dependency) *Class {
	dep.index = index
	cls.params = append(cls.params, dep)
	slices.SortStableFunc(cls.params, func(a, b Dependency) int { return a.index - b.index })
	return cls
}

// Property declares a dependency assigned after construction. Properties are
// assigned in declaration order.
func (cls *Class) Property(name string, dep Dependency, set func(obj, value any)) *Class {
	dep.index = -1
	if dep.name == "" {
		dep.name = name
		if s, ok := deref(dep.key).(string); ok {
			dep.name = s
		}
	}
	cls.props = append(cls.props, property{name: name, dep: dep, set: set})
	return cls
}

// Method declares an instance member whose parameters can be injected.
func (cls *Class) Method(name string, fn MethodFunc, deps ...Dependency) *Class {
	cls.methods[name] = &Method{name: name, fn: fn, deps: sortByIndex(positioned(deps))}
	return cls
}

// StaticMethod declares a member invoked on the class itself.
func (cls *Class) StaticMethod(name string, fn MethodFunc, deps ...Dependency) *Class {
	cls.methods[name] = &Method{name: name, fn: fn, deps: sortByIndex(positioned(deps)), static: true}
	return cls
}

// NoInject makes wrappers call member with the given arguments only.
func (cls *Class) NoInject(member string) *Class {
	if m, ok := cls.methods[member]; ok {
		m.noInject = true
	}
	return cls
}

// Transient disables caching of instances.
func (cls *Class) Transient() *Class {
	cls.transient = true
	return cls
}

// NoWrap disables wrapping of instances.
func (cls *Class) NoWrap() *Class {
	cls.noWrap = true
	return cls
}

// Provides marks instances of cls as providers of key. Instances must
// implement Producer; the Produce dependencies are declared here so that
// the graph can be validated before any provider is built.
func (cls *Class) Provides(key any, opts ...ProviderOption) *Class {
	spec := &providerSpec{key: key}
	for _, opt := range opts {
		opt(spec)
	}
	spec.deps = sortByIndex(positioned(spec.deps))
	cls.provider = spec
	return cls
}

// IsSubclassOf reports whether other is a strict ancestor of cls.
func (cls *Class) IsSubclassOf(other *Class) bool {
	if other == nil {
		return false
	}
	for s := cls.super; s != nil; s = s.super {
		if s == other {
			return true
		}
	}
	return false
}

// Constructor returns the constructor parameter descriptors in position order.
func (cls *Class) Constructor() []Dependency { return cls.params }

// HasMethod reports whether cls or one of its ancestors declares member.
func (cls *Class) HasMethod(member string) bool { return cls.method(member) != nil }

// method finds member on cls or its ancestors.
func (cls *Class) method(member string) *Method {
	for c := cls; c != nil; c = c.super {
		if m, ok := c.methods[member]; ok {
			return m
		}
	}
	return nil
}

func (cls *Class) hasMethods() bool {
	for c := cls; c != nil; c = c.super {
		if len(c.methods) > 0 {
			return true
		}
	}
	return false
}

func (cls *Class) property(name string) (property, bool) {
	for c := cls; c != nil; c = c.super {
		for _, p := range c.props {
			if p.name == name {
				return p, true
			}
		}
	}
	return property{}, false
}

func sortByIndex(deps []Dependency) []Dependency {
	slices.SortStableFunc(deps, func(a, b Dependency) int { return a.index - b.index })
	return deps
}

// ── Typed adapters ────────────────────────────────────────────────────────────

// Setter adapts a typed property setter. A value of another type is passed
// as V's zero value.
//
//	container.Setter(func(b *B, v int) { b.V = v })
func Setter[T, V any](fn func(obj T, value V)) func(obj, value any) {
	return func(obj, value any) {
		v, _ := value.(V)
		fn(obj.(T), v)
	}
}

// MethodOf adapts a method with a typed receiver.
//
//	container.MethodOf(func(a *A, args container.Args) (any, error) { return a.Sum(args), nil })
func MethodOf[T any](fn func(recv T, args Args) (any, error)) MethodFunc {
	return func(recv any, args Args) (any, error) {
		r, _ := recv.(T)
		return fn(r, args)
	}
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Metadata is the injection metadata capability the container consumes.
type Metadata interface {
	// DescribeConstructor returns the constructor descriptors of key.
	DescribeConstructor(key any) []Dependency
	// DescribeMember returns the descriptors of a method, or the single
	// descriptor of a property.
	DescribeMember(target any, member string) []Dependency
	// ClassOf returns the class of target, which may be a *Class itself.
	ClassOf(target any) *Class
}

// Registry maps Go types to the classes declared for them.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Class
}

// DefaultRegistry receives every class declared with NewClass.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]*Class)}
}

// Add records cls under its Go type. Interface types are not recorded, and
// a later class for the same type replaces an earlier one.
func (r *Registry) Add(cls *Class) {
	if cls.goType == nil || cls.goType.Kind() == reflect.Interface {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[cls.goType] = cls
}

// ClassOf implements Metadata.
func (r *Registry) ClassOf(target any) *Class {
	switch t := target.(type) {
	case nil:
		return nil
	case *Class:
		return t
	case *Wrapped:
		return r.ClassOf(t.target)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[reflect.TypeOf(target)]
}

// DescribeConstructor implements Metadata.
func (r *Registry) DescribeConstructor(key any) []Dependency {
	if cls, ok := deref(key).(*Class); ok {
		return cls.params
	}
	return nil
}

// DescribeMember implements Metadata.
func (r *Registry) DescribeMember(target any, member string) []Dependency {
	cls := r.ClassOf(target)
	if cls == nil {
		return nil
	}
	if m := cls.method(member); m != nil {
		return m.deps
	}
	if p, ok := cls.property(member); ok {
		return []Dependency{p.dep}
	}
	return nil
}
