package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── Wrapped ───────────────────────────────────────────────────────────────────

// Wrapped is the interception surrogate of an instance. Member calls made
// through Call have their missing parameters filled by the bound container;
// the instance itself stays reachable through Unwrap.
//
//	w := c.Wrap(a).(*container.Wrapped)
//	sum, err := w.Call("Sum", 15) // position 1 injected
type Wrapped struct {
	target any
	c      *Container
}

// Wrap returns the surrogate of target bound to c. Wrapping an instance
// already bound to c returns it unchanged; wrapping one bound to another
// container rebinds the underlying instance to c. Values whose class
// declares no members, containers and nil are returned as is.
func (c *Container) Wrap(target any) any {
	switch t := target.(type) {
	case nil, *Container:
		return target
	case *Wrapped:
		if t.c == c {
			return t
		}
		c.log.Debug("rebind wrapper", zap.String("from", t.c.FormattedID()))
		return &Wrapped{target: t.target, c: c}
	}

	if isNil(target) {
		return target
	}
	cls := c.meta.ClassOf(target)
	if cls == nil || !cls.hasMethods() && !isClass(target) {
		return target
	}
	return &Wrapped{target: target, c: c}
}

func isClass(v any) bool {
	_, ok := v.(*Class)
	return ok
}

// Call invokes member through the bound container. Parameters passed as nil
// or left out are injected.
func (w *Wrapped) Call(member string, args ...any) (any, error) {
	return w.c.execute(newSession(), w.target, member, args)
}

// New constructs an instance of a wrapped class through the bound
// container. Explicit arguments take the place of injected constructor
// parameters. Unless the class is transient the instance is cached on the
// bound container.
func (w *Wrapped) New(args ...any) (any, error) {
	cls, ok := w.target.(*Class)
	if !ok {
		return nil, fmt.Errorf("container: New on an instance of %T", w.target)
	}
	inst, err := w.c.construct(newSession(), cls, args, nil)
	if err != nil || inst == nil {
		return inst, err
	}
	if !cls.transient {
		w.c.setStore(cls, inst)
	}
	return inst, nil
}

// Unwrap returns the underlying instance.
func (w *Wrapped) Unwrap() any { return w.target }

// Container returns the container the surrogate is bound to.
func (w *Wrapped) Container() *Container { return w.c }

func (w *Wrapped) String() string {
	return fmt.Sprintf("Wrapped(%T@%s)", w.target, w.c.FormattedID())
}

// Unwrap returns the instance behind a surrogate, or v itself.
func Unwrap(v any) any {
	if w, ok := v.(*Wrapped); ok {
		return w.target
	}
	return v
}

// As unwraps v and asserts the result to T.
//
//	a, ok := container.As[*A](b.A)
func As[T any](v any) (T, bool) {
	t, ok := Unwrap(v).(T)
	return t, ok
}
