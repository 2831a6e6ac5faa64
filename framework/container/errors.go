package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAProvider is returned when a registration argument exposes neither
	// a provided key nor a produce operation.
	ErrNotAProvider = errors.New("the provider must declare a provided key and a Produce method")

	// ErrCycleDependency is returned when the static dependency graph of a
	// requested key contains a cycle.
	ErrCycleDependency = errors.New("cycle dependency")

	// ErrRequiredDependency is returned when a slot marked required resolves
	// to nothing.
	ErrRequiredDependency = errors.New("required dependency not found")

	// ErrProviderDisabledWrap is returned when a provider itself is marked
	// no-wrap, which would make its Produce dependencies uninjectable.
	ErrProviderDisabledWrap = errors.New("provider must be wrappable, do not mark it no-wrap")

	// ErrMemberNotFound is returned by InjectExecute when the target's class
	// declares no such member.
	ErrMemberNotFound = errors.New("member not declared")

	// ErrDeferredKeyNotRegistered is returned when a deferred module's
	// Register leaves one of its Provides keys unregistered.
	ErrDeferredKeyNotRegistered = errors.New("deferred module did not register the key it provides")
)

// ── Typed errors ──────────────────────────────────────────────────────────────

// NotAProviderError reports an invalid argument to RegisterProvider.
type NotAProviderError struct {
	Value any
}

func (e *NotAProviderError) Error() string {
	return fmt.Sprintf("container: %T: %s", e.Value, ErrNotAProvider)
}

func (e *NotAProviderError) Is(target error) bool { return target == ErrNotAProvider }

// CycleDependencyError lists the members of the first cycle found, in the
// order they were discovered.
type CycleDependencyError struct {
	Cycle []string
}

func (e *CycleDependencyError) Error() string {
	return "found cycle dependencies in: " + strings.Join(e.Cycle, ", ")
}

func (e *CycleDependencyError) Is(target error) bool { return target == ErrCycleDependency }

// RequiredDependencyMissingError identifies the slot that could not be filled.
//
// Position is the parameter index for constructor and method slots and -1
// for properties.
type RequiredDependencyMissingError struct {
	Owner    string
	Static   bool
	Member   string
	Position int
	Expected any
}

func (e *RequiredDependencyMissingError) Error() string {
	var b strings.Builder
	if e.Static {
		b.WriteString("static ")
	}
	member := e.Member
	if member == "" {
		member = "constructor"
	}
	b.WriteString(e.Owner)
	b.WriteByte('.')
	b.WriteString(member)
	if e.Position >= 0 {
		fmt.Fprintf(&b, "(%d)", e.Position)
	}
	fmt.Fprintf(&b, " inject failed, %s: expected %s", ErrRequiredDependency, KeyName(e.Expected))
	return b.String()
}

func (e *RequiredDependencyMissingError) Is(target error) bool {
	return target == ErrRequiredDependency
}

// ProviderDisabledWrapError reports a provider registered while marked no-wrap.
type ProviderDisabledWrapError struct {
	Key any
}

func (e *ProviderDisabledWrapError) Error() string {
	return fmt.Sprintf("container: provider for [%s]: %s", KeyName(e.Key), ErrProviderDisabledWrap)
}

func (e *ProviderDisabledWrapError) Is(target error) bool {
	return target == ErrProviderDisabledWrap
}
