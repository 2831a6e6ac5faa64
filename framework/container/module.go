package container

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ── Module interface ──────────────────────────────────────────────────────────

// Module groups the registrations of one feature.
//
// Register is called first on every eager module; Boot runs once all of them
// are registered, so it may resolve keys registered by other modules.
//
//	type MailModule struct{ container.BaseModule }
//
//	func (m *MailModule) Register(c *container.Container) error {
//	    return c.RegisterProvider(MailerClass)
//	}
type Module interface {
	// Register binds providers into the container. Do not resolve here.
	Register(c *Container) error

	// Boot is called after all eager modules are registered.
	Boot(c *Container) error

	// Provides lists the keys a deferred module registers.
	Provides() []any

	// IsDeferred reports whether the module loads on the first resolution
	// of one of its Provides keys.
	IsDeferred() bool
}

// BaseModule is an embeddable no-op implementation of Boot, Provides and
// IsDeferred.
type BaseModule struct{}

func (BaseModule) Boot(*Container) error { return nil }
func (BaseModule) Provides() []any       { return nil }
func (BaseModule) IsDeferred() bool      { return false }

// ── ModuleRegistry ────────────────────────────────────────────────────────────

// ModuleRegistry registers and boots modules against one container,
// including deferred modules.
type ModuleRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []Module
	deferred   map[Module]*sync.Once
	registered map[Module]bool
	booted     bool
}

// NewModuleRegistry creates a registry bound to app.
func NewModuleRegistry(app *Container) *ModuleRegistry {
	return &ModuleRegistry{
		app:        app,
		deferred:   make(map[Module]*sync.Once),
		registered: make(map[Module]bool),
	}
}

// Register adds a module. Eager modules are registered immediately, and
// booted too when the registry already booted. Registering a module twice is
// a no-op.
func (r *ModuleRegistry) Register(m Module) error {
	r.mu.Lock()
	if r.registered[m] {
		r.mu.Unlock()
		return nil
	}
	r.registered[m] = true

	if m.IsDeferred() {
		once := new(sync.Once)
		r.deferred[m] = once
		r.mu.Unlock()
		return r.interceptDeferred(m, once)
	}

	r.eager = append(r.eager, m)
	booted := r.booted
	r.mu.Unlock()

	if err := m.Register(r.app); err != nil {
		return fmt.Errorf("module %T: register: %w", m, err)
	}
	r.app.log.Debug("module registered", zap.String("module", fmt.Sprintf("%T", m)))
	if booted {
		if err := m.Boot(r.app); err != nil {
			return fmt.Errorf("module %T: boot: %w", m, err)
		}
	}
	return nil
}

// interceptDeferred registers a transient stand-in for each key of m. The
// first resolution registers the module for real, which replaces the
// stand-ins, then resolves the key again.
func (r *ModuleRegistry) interceptDeferred(m Module, once *sync.Once) error {
	for _, key := range m.Provides() {
		key := key
		var stand Provider
		load := func(Args) (any, error) {
			if err := r.load(m, once); err != nil {
				return nil, err
			}
			if p, _ := r.app.lookupProvider(deref(key)); p == any(stand) {
				return nil, fmt.Errorf("module %T: %w: %s", m, ErrDeferredKeyNotRegistered, KeyName(key))
			}
			return r.app.GetInstance(key)
		}
		stand = NewProvider(key, load, Transient())
		if err := r.app.RegisterProvider(stand); err != nil {
			return err
		}
	}
	return nil
}

func (r *ModuleRegistry) load(m Module, once *sync.Once) error {
	var err error
	once.Do(func() {
		if err = m.Register(r.app); err != nil {
			err = fmt.Errorf("module %T: register: %w", m, err)
			return
		}
		r.app.log.Debug("deferred module loaded", zap.String("module", fmt.Sprintf("%T", m)))

		r.mu.Lock()
		booted := r.booted
		r.mu.Unlock()
		if booted {
			if err = m.Boot(r.app); err != nil {
				err = fmt.Errorf("module %T: boot: %w", m, err)
			}
		}
	})
	return err
}

// Boot boots every eager module in registration order. It runs once.
func (r *ModuleRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	eager := append([]Module(nil), r.eager...)
	r.mu.Unlock()

	for _, m := range eager {
		if err := m.Boot(r.app); err != nil {
			return fmt.Errorf("module %T: boot: %w", m, err)
		}
	}
	return nil
}

// Booted reports whether Boot has been called.
func (r *ModuleRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Modules returns the registered eager modules.
func (r *ModuleRegistry) Modules() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Module(nil), r.eager...)
}
