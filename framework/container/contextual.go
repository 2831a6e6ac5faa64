package container

import (
	"maps"

	"go.uber.org/zap"
)

// Factory computes a contextual value when the slot is filled.
type Factory func(c *Container) any

type contextualValue struct {
	factory Factory
}

// ContextualBuilder implements the fluent contextual binding API.
//
//	// every *Mailer built in this subtree gets "smtp.example.com" as "host"
//	c.When(Mailer).Needs("host").GiveValue("smtp.example.com")
type ContextualBuilder struct {
	container *Container
	concrete  any
	needs     string
}

// When starts a contextual binding for the class or provider key concrete.
func (c *Container) When(concrete any) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: deref(concrete)}
}

// Needs names the parameter the binding fills.
func (b *ContextualBuilder) Needs(name string) *ContextualBuilder {
	b.needs = name
	return b
}

// Give binds factory as the value of the named parameter. The factory runs
// against the resolving container each time the slot is filled.
func (b *ContextualBuilder) Give(factory Factory) {
	c := b.container
	if !validKey(b.concrete) {
		c.log.Warn("contextual binding ignored, key is not comparable",
			zap.String("key", KeyName(b.concrete)))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contextual[b.concrete]; !ok {
		c.contextual[b.concrete] = make(map[string]contextualValue)
	}
	c.contextual[b.concrete][b.needs] = contextualValue{factory: factory}
	c.log.Debug("contextual binding",
		zap.String("key", KeyName(b.concrete)),
		zap.String("needs", b.needs),
	)
}

// GiveValue is a shorthand for Give when the value is pre-built.
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(*Container) any { return value })
}

// boundParams merges the named parameters visible for key: contextual
// bindings from the root down to c, then the slot's own parameters.
func (c *Container) boundParams(key any, slotParams map[string]any) map[string]any {
	var chain []*Container
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	var bound map[string]any
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		cur.mu.RLock()
		for name, v := range cur.contextual[key] {
			if bound == nil {
				bound = make(map[string]any)
			}
			bound[name] = v
		}
		cur.mu.RUnlock()
	}

	if len(slotParams) == 0 {
		return bound
	}
	if bound == nil {
		return slotParams
	}
	maps.Copy(bound, slotParams)
	return bound
}

func (c *Container) evalBound(v any) any {
	if cv, ok := v.(contextualValue); ok {
		return cv.factory(c)
	}
	return v
}
