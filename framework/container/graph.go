package container

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/dominikbraun/graph"
	"go.uber.org/zap"
)

// depGraph is the static dependency graph of one check. Vertices are
// discovery numbers so that cycle members can be reported in the order they
// were reached.
type depGraph struct {
	g       graph.Graph[string, string]
	ids     map[any]int
	keys    []any
	unknown int
	names   []string
}

func newDepGraph() *depGraph {
	return &depGraph{
		g:   graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		ids: make(map[any]int),
	}
}

// vertex returns the vertex of key, adding it on first sight.
func (d *depGraph) vertex(key any) (string, bool, error) {
	if id, ok := d.ids[key]; ok {
		return strconv.Itoa(id), false, nil
	}
	id := len(d.keys)
	d.ids[key] = id
	d.keys = append(d.keys, key)

	name := KeyName(key)
	if name == "" {
		d.unknown++
		name = "Unknown" + strconv.Itoa(d.unknown)
	}
	d.names = append(d.names, name)

	v := strconv.Itoa(id)
	if err := d.g.AddVertex(v); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return "", false, err
	}
	return v, true, nil
}

// cycle renders the members of the cycle through from and to, ordered by
// discovery.
func (d *depGraph) cycle(from, to string) *CycleDependencyError {
	members := []string{from}
	if from != to {
		// the new edge from→to closes a path to→…→from
		path, err := graph.ShortestPath(d.g, to, from)
		if err == nil {
			members = path
		} else {
			members = []string{to, from}
		}
	}

	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, _ := strconv.Atoi(m)
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = d.names[id]
	}
	return &CycleDependencyError{Cycle: names}
}

// ── Cycle detection ───────────────────────────────────────────────────────────

// checkDependency validates the static graph reachable from root before
// anything is constructed. Properties are not part of the static graph, so
// a property back-reference never counts as a cycle.
func (c *Container) checkDependency(s *session, root any) error {
	if s.checked[root] {
		return nil
	}

	d := newDepGraph()
	rv, _, err := d.vertex(root)
	if err != nil {
		return fmt.Errorf("container: dependency graph: %w", err)
	}

	if err := c.visitDependencies(s, d, root, rv); err != nil {
		return err
	}

	for _, k := range d.keys {
		s.checked[k] = true
	}
	return nil
}

// visitDependencies walks the descriptors of key depth first in declaration
// order and stops at the first edge that closes a cycle.
func (c *Container) visitDependencies(s *session, d *depGraph, key any, kv string) error {
	for _, dep := range c.staticDependencies(key) {
		dk := deref(dep.key)
		if !validKey(dk) || dk == ContainerKey || s.checked[dk] {
			continue
		}
		v, added, err := d.vertex(dk)
		if err != nil {
			return fmt.Errorf("container: dependency graph: %w", err)
		}
		if v == kv {
			return c.cycleFound(d.cycle(v, v))
		}
		switch err := d.g.AddEdge(kv, v); {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			return c.cycleFound(d.cycle(kv, v))
		default:
			return fmt.Errorf("container: dependency graph: %w", err)
		}
		if added {
			if err := c.visitDependencies(s, d, dk, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Container) cycleFound(err *CycleDependencyError) error {
	c.log.Debug("cycle dependency", zap.Strings("cycle", err.Cycle))
	return err
}

// staticDependencies lists the keys needed to produce key: the Produce
// parameters of its provider, or the constructor parameters of its class.
func (c *Container) staticDependencies(key any) []Dependency {
	entry, _ := c.lookupProvider(key)
	if entry == nil {
		if cls, ok := key.(*Class); ok {
			entry, _ = c.lookupSubclassProvider(cls)
		}
	}

	switch e := entry.(type) {
	case *Class:
		// building the provider class comes first
		deps := slices.Clone(e.provider.deps)
		if e != key {
			deps = append(deps, Inject(e))
		}
		return deps
	case Provider:
		return producerDependencies(e)
	}
	return c.meta.DescribeConstructor(key)
}
