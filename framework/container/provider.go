package container

// ── Provider contracts ────────────────────────────────────────────────────────

// Producer produces instances. Instances of provider classes implement it.
type Producer interface {
	Produce(args Args) (any, error)
}

// Provider produces instances for exactly one key.
type Provider interface {
	Producer
	// Provides returns the key the provider is registered under.
	Provides() any
}

// TransientProvider is implemented by providers whose products must never
// be cached.
type TransientProvider interface {
	Transient() bool
}

// DependentProvider is implemented by providers whose Produce parameters are
// injected by the container.
type DependentProvider interface {
	Dependencies() []Dependency
}

// NoWrapProvider is implemented by providers whose products must never be
// wrapped.
type NoWrapProvider interface {
	NoWrapResult() bool
}

// WrapDisabler marks a provider that itself refuses wrapping. Such providers
// are rejected at registration with ProviderDisabledWrapError.
type WrapDisabler interface {
	NoWrap() bool
}

// ── Options ───────────────────────────────────────────────────────────────────

type providerSpec struct {
	key          any
	deps         []Dependency
	transient    bool
	noWrapResult bool
}

// ProviderOption configures a provider during declaration.
type ProviderOption func(*providerSpec)

// Transient marks the products as never cached.
func Transient() ProviderOption {
	return func(s *providerSpec) { s.transient = true }
}

// WithDependencies declares the Produce parameters, in position order unless
// pinned with Dependency.At.
func WithDependencies(deps ...Dependency) ProviderOption {
	return func(s *providerSpec) { s.deps = append(s.deps, deps...) }
}

// NoWrapResult marks the products as never wrapped.
func NoWrapResult() ProviderOption {
	return func(s *providerSpec) { s.noWrapResult = true }
}

// ── Built-in providers ────────────────────────────────────────────────────────

// ProduceFunc produces an instance from its injected arguments.
type ProduceFunc func(args Args) (any, error)

type funcProvider struct {
	spec    providerSpec
	produce ProduceFunc
}

// NewProvider returns a provider of key backed by fn.
//
//	// "answer" = base + 41, base injected unless bound by the caller
//	container.NewProvider("answer", func(args container.Args) (any, error) {
//	    return container.Arg[int](args, 0) + 41, nil
//	}, container.WithDependencies(container.Inject("base")), container.Transient())
func NewProvider(key any, fn ProduceFunc, opts ...ProviderOption) Provider {
	p := &funcProvider{spec: providerSpec{key: key}, produce: fn}
	for _, opt := range opts {
		opt(&p.spec)
	}
	p.spec.deps = sortByIndex(positioned(p.spec.deps))
	return p
}

// NewInstanceProvider returns a provider that always produces value.
func NewInstanceProvider(key, value any, transient bool) Provider {
	return &funcProvider{
		spec:    providerSpec{key: key, transient: transient},
		produce: func(Args) (any, error) { return value, nil },
	}
}

func (p *funcProvider) Provides() any                  { return p.spec.key }
func (p *funcProvider) Produce(args Args) (any, error) { return p.produce(args) }
func (p *funcProvider) Transient() bool                { return p.spec.transient }
func (p *funcProvider) Dependencies() []Dependency     { return p.spec.deps }
func (p *funcProvider) NoWrapResult() bool             { return p.spec.noWrapResult }

// producerProvider adapts an instance of a provider class.
type producerProvider struct {
	Producer
	cls *Class
}

func (p *producerProvider) Provides() any { return p.cls.provider.key }

func (p *producerProvider) Transient() bool {
	if t, ok := p.Producer.(TransientProvider); ok && t.Transient() {
		return true
	}
	return p.cls.provider.transient
}

func (p *producerProvider) Dependencies() []Dependency {
	if d, ok := p.Producer.(DependentProvider); ok {
		return sortByIndex(positioned(d.Dependencies()))
	}
	return p.cls.provider.deps
}

func (p *producerProvider) NoWrapResult() bool { return p.cls.provider.noWrapResult }

// classProvider is the default provider synthesized for classes without an
// explicit registration. It constructs through the container that is doing
// the resolving.
type classProvider struct {
	cls *Class
}

func (p *classProvider) Provides() any { return p.cls }

func (p *classProvider) Transient() bool { return p.cls.transient }

// Produce is never called directly; the container constructs classes itself
// so that the resolution session is threaded through.
func (p *classProvider) Produce(Args) (any, error) { return nil, nil }

// ── Helpers ───────────────────────────────────────────────────────────────────

func isTransient(p Provider) bool {
	t, ok := p.(TransientProvider)
	return ok && t.Transient()
}

// producerDependencies returns the Produce descriptors of p with their
// positions assigned.
func producerDependencies(p Provider) []Dependency {
	if d, ok := p.(DependentProvider); ok {
		return sortByIndex(positioned(d.Dependencies()))
	}
	return nil
}
