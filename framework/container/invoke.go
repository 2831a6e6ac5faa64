package container

import (
	"fmt"

	"go.uber.org/zap"
)

// slot names the owner of a group of injected parameters for error messages.
type slot struct {
	owner  string
	static bool
	member string
}

// ── Inject-execute entry point ────────────────────────────────────────────────

// InjectExecute calls member on target, filling every parameter the caller
// left nil from the container. target is an instance of a declared class, a
// *Wrapped, or a *Class for static members.
//
//	// explicit 15 for position 0, position 1 injected
//	sum, err := c.InjectExecute(a, "Sum", 15)
func (c *Container) InjectExecute(target any, member string, args ...any) (any, error) {
	return c.execute(newSession(), target, member, args)
}

func (c *Container) execute(s *session, target any, member string, explicit Args) (any, error) {
	target = Unwrap(target)
	cls := c.meta.ClassOf(target)
	if cls == nil {
		return nil, fmt.Errorf("container: %T: %w", target, ErrMemberNotFound)
	}
	_, static := target.(*Class)

	m := cls.method(member)
	if m == nil || (static && !m.static) {
		return nil, fmt.Errorf("container: %s.%s: %w", cls, member, ErrMemberNotFound)
	}

	args := explicit
	if !m.noInject {
		var err error
		at := slot{owner: cls.String(), static: static, member: member}
		if args, err = c.fillArgs(s, at, m.deps, explicit, nil); err != nil {
			return nil, err
		}
	}

	var recv any
	if !static && !m.static {
		recv = target
	}
	return m.fn(recv, args)
}

// Build constructs a new instance of cls with explicit constructor
// arguments. The graph of cls is not validated and the instance is not
// cached; use it for two-phase construction where the caller wires back
// references itself.
func (c *Container) Build(cls *Class, args ...any) (any, error) {
	return c.construct(newSession(), cls, args, nil)
}

// ── Construction ──────────────────────────────────────────────────────────────

// construct runs the default class provider: constructor parameters in
// position order, then properties in declaration order. The instance is
// published to the session before its properties are wired so that property
// back-references resolve to it.
func (c *Container) construct(s *session, cls *Class, explicit Args, params map[string]any) (any, error) {
	bound := c.boundParams(cls, params)

	args, err := c.fillArgs(s, slot{owner: cls.String()}, cls.params, explicit, bound)
	if err != nil {
		return nil, err
	}

	inst, err := cls.construct(args)
	if err != nil {
		return nil, fmt.Errorf("container: construct %s: %w", cls, err)
	}
	if isNil(inst) {
		return nil, nil
	}

	props := inheritedProperties(cls)
	if len(props) == 0 {
		return inst, nil
	}

	s.pending[cls] = inst
	defer delete(s.pending, cls)

	for _, p := range props {
		v, err := c.fill(s, p.dep, bound)
		if err != nil {
			return nil, err
		}
		if v == nil {
			if p.dep.required {
				return nil, &RequiredDependencyMissingError{
					Owner:    cls.String(),
					Member:   p.name,
					Position: -1,
					Expected: p.dep.key,
				}
			}
			continue
		}
		p.set(inst, v)
	}
	return inst, nil
}

// inheritedProperties lists the properties of cls's ancestors first, then
// its own.
func inheritedProperties(cls *Class) []property {
	var chain []*Class
	for cur := cls; cur != nil; cur = cur.super {
		chain = append(chain, cur)
	}
	var props []property
	for i := len(chain) - 1; i >= 0; i-- {
		props = append(props, chain[i].props...)
	}
	return props
}

// fillArgs fills every slot described by deps that explicit leaves nil, in
// position order. Precedence: explicit argument, bound named parameter,
// container-resolved value.
func (c *Container) fillArgs(s *session, at slot, deps []Dependency, explicit Args, bound map[string]any) (Args, error) {
	n := len(explicit)
	for _, d := range deps {
		if d.index+1 > n {
			n = d.index + 1
		}
	}
	args := make(Args, n)
	copy(args, explicit)

	for _, d := range deps {
		if !isNil(args[d.index]) {
			continue
		}
		v, err := c.fill(s, d, bound)
		if err != nil {
			return nil, err
		}
		if v == nil && d.required {
			return nil, &RequiredDependencyMissingError{
				Owner:    at.owner,
				Static:   at.static,
				Member:   at.member,
				Position: d.index,
				Expected: d.key,
			}
		}
		args[d.index] = v
		c.log.Debug("inject parameter",
			zap.String("owner", at.owner),
			zap.String("member", at.member),
			zap.Int("position", d.index),
			zap.String("key", KeyName(d.key)),
			zap.Bool("found", v != nil),
		)
	}
	return args, nil
}

// fill resolves the value of one slot. Absent values come back as an untyped
// nil.
func (c *Container) fill(s *session, d Dependency, bound map[string]any) (any, error) {
	if name := d.Name(); name != "" {
		if v, ok := bound[name]; ok {
			return c.evalBound(v), nil
		}
	}

	v, err := c.resolve(s, d.key, d.params)
	if err != nil || isNil(v) {
		return nil, err
	}
	if d.noWrap || !c.CanWrap(d.key) {
		return v, nil
	}
	return c.Wrap(v), nil
}
