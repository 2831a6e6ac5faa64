package container

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Lifecycle of a resolved key.
type Lifecycle int

const (
	// SingletonInSubtree products are cached on the container that owns the
	// provider registration and are visible to all of its descendants.
	SingletonInSubtree Lifecycle = iota

	// TransientLifecycle products are never cached.
	TransientLifecycle
)

// String returns the human-readable name of the lifecycle.
func (l Lifecycle) String() string {
	switch l {
	case SingletonInSubtree:
		return "singleton-in-subtree"
	case TransientLifecycle:
		return "transient"
	default:
		return "unknown"
	}
}

func lifecycleOf(p Provider) Lifecycle {
	if isTransient(p) {
		return TransientLifecycle
	}
	return SingletonInSubtree
}

// withStore returns a cached instance for key or produces one with p and
// caches it on the owner of p's registration. owner is nil for providers
// synthesized for unregistered classes; their products are cached on c.
func (c *Container) withStore(s *session, key any, p Provider, owner *Container, params map[string]any) (any, error) {
	storeKey := deref(p.Provides())
	if storeKey == nil {
		storeKey = key
	}

	// a parameterized product belongs to its call site only
	if len(params) > 0 {
		return c.produce(s, p, params)
	}

	if inst, ok := c.cached(key, storeKey, owner); ok {
		return inst, nil
	}

	if lifecycleOf(p) == TransientLifecycle {
		return c.produce(s, p, nil)
	}

	target := owner
	if target == nil {
		target = c
	}

	// a chain wiring properties may come back for a key it is producing
	if len(s.pending) > 0 {
		return c.produceAndStore(s, p, target, storeKey)
	}

	inst, err, _ := target.flights.Do(flightKey(storeKey), func() (any, error) {
		if inst, ok := c.cached(key, storeKey, owner); ok {
			return inst, nil
		}
		return c.produceAndStore(s, p, target, storeKey)
	})
	return inst, err
}

// cached looks for an instance of storeKey between c and owner, then for an
// instance cached under a subclass of key.
func (c *Container) cached(key, storeKey any, owner *Container) (any, bool) {
	if inst, ok := c.lookupStore(storeKey, owner); ok {
		return inst, true
	}
	if cls, ok := key.(*Class); ok {
		return c.lookupDerivedInstance(cls, owner)
	}
	return nil, false
}

func (c *Container) produceAndStore(s *session, p Provider, target *Container, storeKey any) (any, error) {
	inst, err := c.produce(s, p, nil)
	if err != nil || inst == nil {
		return nil, err
	}
	target.setStore(storeKey, inst)
	return inst, nil
}

// produce invokes p, injecting its Produce parameters through c.
func (c *Container) produce(s *session, p Provider, params map[string]any) (any, error) {
	if cp, ok := p.(*classProvider); ok {
		return c.construct(s, cp.cls, nil, params)
	}

	key := deref(p.Provides())
	at := slot{owner: KeyName(key), member: "Produce"}
	args, err := c.fillArgs(s, at, producerDependencies(p), nil, c.boundParams(key, params))
	if err != nil {
		return nil, err
	}

	inst, err := p.Produce(args)
	if err != nil {
		return nil, fmt.Errorf("container: produce [%s]: %w", KeyName(key), err)
	}
	if isNil(inst) {
		return nil, nil
	}
	c.log.Debug("produced instance",
		zap.String("key", KeyName(key)),
		zap.Stringer("lifecycle", lifecycleOf(p)),
	)
	return inst, nil
}

// flightKey renders a store key as a singleflight key. Pointer-like keys are
// identified by address so distinct keys never share a flight.
func flightKey(key any) string {
	if s, ok := key.(string); ok {
		return "s:" + s
	}
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return fmt.Sprintf("%T:%x", key, rv.Pointer())
	}
	return fmt.Sprintf("%T:%v", key, key)
}
