// Package http ties HTTP requests to container scopes and writes JSON
// responses.
//
// # Request scopes
//
//	r.Use(gohttp.Scope(app.Container))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    scope := gohttp.FromRequest(r)
//	    svc, err := container.Resolve[*Service](scope, ServiceClass)
//	    ...
//	}
//
// Every request gets its own child container holding "request.id" and
// "http.request". Unregistered classes resolved through it are cached for
// the duration of the request only.
package http
