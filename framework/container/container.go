package container

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves keys to instances. Containers form a tree: a child sees
// its own registrations first and reads through to its ancestors.
//
// It supports:
//   - RegisterProvider / RegisterInstance / Bind / Singleton
//   - GetInstance / GetWrappedInstance / Resolve (generic)
//   - Scoped children (CreateChild, or resolving ContainerKey)
//   - Contextual named parameters (When(key).Needs(name).Give(...))
//   - InjectExecute and Wrap for container-aware member calls
type Container struct {
	mu sync.RWMutex

	id       uint64
	seq      *atomic.Uint64
	parent   *Container
	formatID string

	// key → Provider, or *Class for provider classes not yet built
	providers map[any]any

	// key → cached instance
	store map[any]any

	// keys whose instances are never wrapped
	noWrap map[any]struct{}

	// key → named parameter → bound value
	contextual map[any]map[string]contextualValue

	// first-resolution dedupe, keyed by store key
	flights singleflight.Group

	logger *zap.Logger
	log    *zap.Logger
	meta   Metadata
}

// Option configures a root container.
type Option func(*Container)

// WithLogger sets the logger shared by the container tree.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetadata replaces DefaultRegistry as the metadata source.
func WithMetadata(m Metadata) Option {
	return func(c *Container) {
		if m != nil {
			c.meta = m
		}
	}
}

// New creates a root container and returns its first child scope.
// Register application-wide providers on the returned container; the root
// stays empty.
func New(opts ...Option) *Container {
	root := &Container{
		seq:    new(atomic.Uint64),
		logger: zap.NewNop(),
		meta:   DefaultRegistry,
	}
	for _, opt := range opts {
		opt(root)
	}
	root.init("0")
	return root.CreateChild()
}

func (c *Container) init(formatID string) {
	c.formatID = formatID
	c.providers = make(map[any]any)
	c.store = make(map[any]any)
	c.noWrap = make(map[any]struct{})
	c.contextual = make(map[any]map[string]contextualValue)
	c.log = c.logger.With(zap.String("container", formatID))
}

// CreateChild returns a new scope whose parent is c. Every call creates a
// new child.
func (c *Container) CreateChild() *Container {
	id := c.seq.Add(1)
	child := &Container{
		id:     id,
		seq:    c.seq,
		parent: c,
		logger: c.logger,
		meta:   c.meta,
	}
	child.init(c.formatID + "->" + strconv.FormatUint(id, 10))
	return child
}

// ID returns the sequence number of the container within its tree.
func (c *Container) ID() uint64 { return c.id }

// FormattedID returns the ids from the root down to c, e.g. "0->1->3".
func (c *Container) FormattedID() string { return c.formatID }

// Parent returns the parent container, or nil for the root.
func (c *Container) Parent() *Container { return c.parent }

// Root returns the top of the tree.
func (c *Container) Root() *Container {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger { return c.log }

// Metadata returns the metadata source used by the container.
func (c *Container) Metadata() Metadata { return c.meta }

// ── Registration ──────────────────────────────────────────────────────────────

// RegisterProvider upserts providers into this container. Each argument is a
// Provider, or a *Class declared with Provides whose instances produce the
// values. Re-registering a key overwrites the provider and drops the
// instance cached for it at this level.
func (c *Container) RegisterProvider(providers ...any) error {
	for _, p := range providers {
		if err := c.registerProvider(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) registerProvider(p any) error {
	var (
		key          any
		noWrapResult bool
	)

	switch v := p.(type) {
	case *Class:
		if v.provider == nil {
			return &NotAProviderError{Value: p}
		}
		if v.noWrap {
			return &ProviderDisabledWrapError{Key: v.provider.key}
		}
		key = v.provider.key
		noWrapResult = v.provider.noWrapResult
	case Provider:
		if isNil(v) {
			return &NotAProviderError{Value: p}
		}
		if d, ok := v.(WrapDisabler); ok && d.NoWrap() {
			return &ProviderDisabledWrapError{Key: v.Provides()}
		}
		key = v.Provides()
		if n, ok := v.(NoWrapProvider); ok {
			noWrapResult = n.NoWrapResult()
		}
	default:
		return &NotAProviderError{Value: p}
	}

	key = deref(key)
	if !validKey(key) {
		return &NotAProviderError{Value: p}
	}

	if cls, ok := key.(*Class); noWrapResult || (ok && cls.noWrap) {
		c.DoNotWrap(key)
	}

	c.mu.Lock()
	_, exists := c.providers[key]
	c.providers[key] = p
	delete(c.store, key)
	c.mu.Unlock()

	if exists {
		c.log.Debug("overwrite provider", zap.String("key", KeyName(key)))
	} else {
		c.log.Debug("register provider", zap.String("key", KeyName(key)))
	}
	return nil
}

// RegisterInstance registers value under key and returns a descriptor that
// can be reused to inject it.
//
//	v := c.RegisterInstance("v", 42)
//	cls.Param(0, v.Required())
func (c *Container) RegisterInstance(key, value any) Dependency {
	c.mustRegister(NewInstanceProvider(key, value, false))
	return Inject(key)
}

// Bind registers a transient provider: fn runs on every resolution.
//
//	c.Bind("uuid", func(container.Args) (any, error) { return uuid.NewString(), nil })
func (c *Container) Bind(key any, fn ProduceFunc, deps ...Dependency) {
	c.mustRegister(NewProvider(key, fn, WithDependencies(deps...), Transient()))
}

// Singleton registers a provider whose product is cached after first
// resolution.
func (c *Container) Singleton(key any, fn ProduceFunc, deps ...Dependency) {
	c.mustRegister(NewProvider(key, fn, WithDependencies(deps...)))
}

func (c *Container) mustRegister(p Provider) {
	if err := c.RegisterProvider(p); err != nil {
		panic(fmt.Sprintf("container: %v", err))
	}
}

// DoNotWrap marks keys whose instances are never wrapped by this container
// or its descendants.
func (c *Container) DoNotWrap(keys ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		k = deref(k)
		if !validKey(k) {
			continue
		}
		if _, ok := c.noWrap[k]; !ok {
			c.noWrap[k] = struct{}{}
			c.log.Debug("disable wrapper", zap.String("key", KeyName(k)))
		}
	}
}

// CanWrap reports whether instances of key may be wrapped.
func (c *Container) CanWrap(key any) bool {
	key = deref(key)
	if !validKey(key) {
		return true
	}
	if cls, ok := key.(*Class); ok && cls.noWrap {
		return false
	}
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		_, no := cur.noWrap[key]
		cur.mu.RUnlock()
		if no {
			return false
		}
	}
	return true
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether a provider for key is registered here or above.
func (c *Container) Bound(key any) bool {
	p, _ := c.lookupProvider(deref(key))
	return p != nil
}

// Resolved reports whether an instance of key is cached here or above.
func (c *Container) Resolved(key any) bool {
	_, ok := c.lookupStore(deref(key), nil)
	return ok
}

// lookupProvider finds the registration for key and the container owning it.
func (c *Container) lookupProvider(key any) (any, *Container) {
	if !validKey(key) {
		return nil, nil
	}
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		p, ok := cur.providers[key]
		cur.mu.RUnlock()
		if ok {
			return p, cur
		}
	}
	return nil, nil
}

// lookupSubclassProvider finds, level by level, a provider registered under
// a subclass of cls.
func (c *Container) lookupSubclassProvider(cls *Class) (any, *Container) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for k, p := range cur.providers {
			if sub, ok := k.(*Class); ok && sub.IsSubclassOf(cls) {
				cur.mu.RUnlock()
				return p, cur
			}
		}
		cur.mu.RUnlock()
	}
	return nil, nil
}

// overwriteProvider replaces the registration of key at the level that owns
// it. It is the only write a container performs on an ancestor.
func (c *Container) overwriteProvider(key any, p Provider) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		if _, ok := cur.providers[key]; ok {
			cur.providers[key] = p
			cur.mu.Unlock()
			cur.log.Debug("overwrite provider with instance", zap.String("key", KeyName(key)))
			return
		}
		cur.mu.Unlock()
	}
}

// lookupStore reads key from c and its ancestors up to and including until.
// A nil until searches the whole chain.
func (c *Container) lookupStore(key any, until *Container) (any, bool) {
	if !validKey(key) {
		return nil, false
	}
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.store[key]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
		if cur == until {
			break
		}
	}
	return nil, false
}

// lookupDerivedInstance finds an instance cached under a subclass of cls.
func (c *Container) lookupDerivedInstance(cls *Class, until *Container) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for k, v := range cur.store {
			if sub, ok := k.(*Class); ok && sub.IsSubclassOf(cls) {
				cur.mu.RUnlock()
				return v, true
			}
		}
		cur.mu.RUnlock()
		if cur == until {
			break
		}
	}
	return nil, false
}

func (c *Container) setStore(key, value any) {
	c.mu.Lock()
	c.store[key] = value
	c.mu.Unlock()
	c.log.Debug("store instance", zap.String("key", KeyName(key)))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
