// Package container provides a hierarchical dependency injection container.
//
// # Overview
//
// Containers form a tree. A child reads through to its ancestors and keeps
// its own registrations and cached instances, so a child created per request
// (or per job, or per test) is a scope that cannot leak into its siblings.
//
// Go has no constructor reflection, so every constructible type is declared
// once as a *Class: an explicit table of constructor parameters, properties
// and injectable members. The *Class value is also the key it resolves by.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register: c.RegisterProvider(...), c.RegisterInstance(...), modules
//  3. Boot modules: registry.Boot()
//  4. Resolve, from c or from a child scope
//
// # Classes
//
//	var Mailer = container.NewClass("Mailer", func(args container.Args) (*Mailer, error) {
//	    return &Mailer{Host: container.Arg[string](args, 0)}, nil
//	}).
//	    Param(0, container.Inject("mail.host").Required()).
//	    Property("log", container.Inject("logger"), container.Setter(func(m *Mailer, l *zap.Logger) { m.Log = l }))
//
// Constructor parameters are part of the static dependency graph and a cycle
// among them fails before anything is built. Properties are assigned after
// construction, so two classes may refer to each other through properties.
//
// # Providers
//
//	// cached in the registering container, visible to its subtree
//	c.Singleton("db", func(args container.Args) (any, error) {
//	    return sql.Open("postgres", container.Arg[string](args, 0))
//	}, container.Inject("db.dsn").Required())
//
//	// a new product on every resolution
//	c.Bind("request.id", func(container.Args) (any, error) { return uuid.NewString(), nil })
//
// A class declared with Provides is itself a provider: its instance is built
// on first use and replaces the class registration.
//
// # Resolving
//
//	raw, err := c.GetInstance(Mailer)
//	m, err := container.Resolve[*Mailer](c, Mailer)
//
// An unregistered class is constructed by the resolving container and cached
// there. A registered provider's products are cached on the container that
// registered it. An instance of a subclass satisfies a request for any of its
// ancestors.
//
// # Named Parameters
//
//	// this slot gets its own product, built with base=99
//	cls.Param(1, container.Inject("answer").Param("base", 99))
//
//	// every Mailer built in this subtree gets a fixed host
//	c.When(Mailer).Needs("mail.host").GiveValue("smtp.example.com")
//
// # Wrapping
//
// Injected instances of classes with members are wrapped: Call fills the
// member's missing parameters from the container the wrapper is bound to.
//
//	w := c.Wrap(calc).(*container.Wrapped)
//	sum, err := w.Call("Sum", 15)
//
// # Modules
//
//	type MailModule struct{ container.BaseModule }
//
//	func (m *MailModule) Register(c *container.Container) error {
//	    return c.RegisterProvider(MailerFactory)
//	}
//
//	registry := container.NewModuleRegistry(c)
//	registry.Register(&MailModule{})
//	registry.Boot()
package container
