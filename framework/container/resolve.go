package container

import (
	"fmt"
)

// session carries the state of one resolution chain.
type session struct {
	// keys whose static graph has been validated
	checked map[any]bool

	// instances constructed but still having their properties wired
	pending map[any]any
}

func newSession() *session {
	return &session{
		checked: make(map[any]bool),
		pending: make(map[any]any),
	}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// GetInstance resolves key. It returns (nil, nil) when nothing can produce
// key; callers decide whether that is fatal.
//
//	repo, err := c.GetInstance(UserRepository)
func (c *Container) GetInstance(key any) (any, error) {
	return c.resolve(newSession(), key, nil)
}

// GetWrappedInstance resolves key and wraps the result unless key is
// marked no-wrap.
func (c *Container) GetWrappedInstance(key any) (any, error) {
	inst, err := c.GetInstance(key)
	if err != nil || inst == nil {
		return inst, err
	}
	if c.CanWrap(key) {
		return c.Wrap(inst), nil
	}
	return inst, nil
}

// resolve runs the resolution algorithm for key relative to c. params are
// the named parameters bound by the slot that requested key.
func (c *Container) resolve(s *session, key any, params map[string]any) (any, error) {
	key = deref(key)
	if !validKey(key) {
		return nil, nil
	}

	if key == ContainerKey {
		return c.CreateChild(), nil
	}

	if err := c.checkDependency(s, key); err != nil {
		return nil, err
	}

	// back-reference to an instance of this chain still being wired
	if inst, ok := s.pending[key]; ok {
		return inst, nil
	}

	entry, owner := c.lookupProvider(key)
	if entry == nil {
		if cls, ok := key.(*Class); ok {
			entry, owner = c.lookupSubclassProvider(cls)
		}
	}

	var p Provider
	switch e := entry.(type) {
	case nil:
		cls, ok := key.(*Class)
		if !ok {
			return nil, nil
		}
		p = &classProvider{cls: cls}
	case *Class:
		prov, err := c.resolveProviderClass(s, e, owner)
		if err != nil {
			return nil, err
		}
		p = prov
	case Provider:
		p = e
	}

	return c.withStore(s, key, p, owner, params)
}

// resolveProviderClass builds the provider instance of a provider class and,
// unless the class is transient, substitutes it for the class at the level
// where the class was registered.
func (c *Container) resolveProviderClass(s *session, cls *Class, owner *Container) (Provider, error) {
	inst, err := c.resolve(s, cls, nil)
	if err != nil {
		return nil, err
	}
	producer, ok := Unwrap(inst).(Producer)
	if !ok {
		return nil, fmt.Errorf("container: provider class %s: %w", cls, &NotAProviderError{Value: inst})
	}
	p := &producerProvider{Producer: producer, cls: cls}
	if !cls.transient {
		owner.overwriteProvider(deref(cls.provider.key), p)
	}
	return p, nil
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves key and type-asserts the result.
//
//	db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, key any) (T, error) {
	var zero T
	inst, err := c.GetInstance(key)
	if err != nil || inst == nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, KeyName(key), inst)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on errors and absent values.
func MustResolve[T any](c *Container, key any) T {
	inst, err := c.GetInstance(key)
	if err != nil {
		panic(err)
	}
	if inst == nil {
		panic(fmt.Sprintf("container: MustResolve: nothing provides [%s]", KeyName(key)))
	}
	v, ok := inst.(T)
	if !ok {
		panic(fmt.Sprintf("container: MustResolve[%T]: [%s] resolved to %T", v, KeyName(key), inst))
	}
	return v
}
