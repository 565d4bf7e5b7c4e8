package registry

import (
	"fmt"
	"sort"

	"github.com/heimdalr/dag"
)

// helperVertex adapts a bare helper name to heimdalr/dag's vertex interface,
// so the registry can lean on the library's own cycle detection at
// definition time (AddEdge refuses to create one) rather than hand-rolling
// that check. The actual deterministic closure order below is computed with
// plain Kahn's-algorithm code, because the ordering rule (topological, then
// alphabetic tiebreak) is specific enough that it's simpler
// to own directly than to coerce out of the library's traversal API.
type helperVertex struct{ name string }

func (h helperVertex) ID() string { return h.name }

// Registry is the immutable-after-init construct table. Build one with New,
// populate it with Register/DefineHelper, then treat it as read-only —
// reads are lock-free once the registry is built.
type Registry struct {
	descriptors []Descriptor // registration order = match priority
	byName      map[string]Descriptor

	helperDeps map[string][]string // helper -> helpers it depends on
	helperDAG  *dag.DAG
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byName:     make(map[string]Descriptor),
		helperDeps: make(map[string][]string),
		helperDAG:  dag.NewDAG(),
	}
}

func (r *Registry) ensureHelperVertex(name string) {
	if _, ok := r.helperDeps[name]; ok {
		return
	}
	r.helperDeps[name] = nil
	// Vertex IDs in heimdalr/dag are self-assigned from helperVertex.ID();
	// re-adding an existing ID is harmless and never happens here because
	// of the guard above.
	_, _ = r.helperDAG.AddVertex(helperVertex{name: name})
}

// DefineHelper registers a runtime helper and its own dependencies on other
// helpers (e.g. the ish_compare helper depends on the fuzz_tolerance
// helper). Registering a dependency that would close a cycle is rejected.
func (r *Registry) DefineHelper(name string, dependsOn ...string) error {
	r.ensureHelperVertex(name)
	for _, dep := range dependsOn {
		r.ensureHelperVertex(dep)
		if err := r.helperDAG.AddEdge(dep, name); err != nil {
			return fmt.Errorf("registry: helper edge %s -> %s would create a cycle: %w", dep, name, err)
		}
	}
	r.helperDeps[name] = append(r.helperDeps[name], dependsOn...)
	return nil
}

// Register adds a construct descriptor. Re-registering an existing name is
// an error — the registry is meant to be built once, at package init.
func (r *Registry) Register(d Descriptor) error {
	if d.Pattern == nil {
		return fmt.Errorf("registry: construct %q has a nil pattern", d.Name)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("registry: construct %q already registered", d.Name)
	}
	for _, h := range d.Helpers {
		r.ensureHelperVertex(h)
	}
	r.byName[d.Name] = d
	r.descriptors = append(r.descriptors, d)
	return nil
}

// Lookup returns the descriptor for name. A missing name is a programmer
// error, not a user error — callers that reach Lookup with
// an unvalidated name are expected to have already matched it via Match.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns every registered construct name, in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		out[i] = d.Name
	}
	return out
}

// Match returns the first descriptor (in registration-priority order) whose
// pattern matches anywhere in line, along with its named submatches. Callers
// register more specific constructs before more general ones (e.g.
// kinda_repeat before a hypothetical bare kinda prefix) so first-match
// priority resolves correctly without an explicit specificity score.
func (r *Registry) Match(line string) (Descriptor, map[string]string, bool) {
	for _, d := range r.descriptors {
		loc := d.Pattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		names := d.Pattern.SubexpNames()
		groups := make(map[string]string)
		matches := d.Pattern.FindStringSubmatch(line)
		for i, name := range names {
			if i == 0 || name == "" || i >= len(matches) {
				continue
			}
			groups[name] = matches[i]
		}
		return d, groups, true
	}
	return Descriptor{}, nil, false
}

// HelpersClosure computes the transitive closure of runtime helpers required
// by usedConstructs, in deterministic order: topological by dependency, then
// alphabetic tiebreak among helpers simultaneously ready to emit, which
// keeps emission byte-identical across runs.
func (r *Registry) HelpersClosure(usedConstructs []string) ([]string, error) {
	needed := make(map[string]bool)
	for _, name := range usedConstructs {
		d, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("registry: lookup of unregistered construct %q", name)
		}
		for _, h := range d.Helpers {
			needed[h] = true
		}
	}

	closure := make(map[string]bool)
	var visit func(string)
	visit = func(h string) {
		if closure[h] {
			return
		}
		closure[h] = true
		for _, dep := range r.helperDeps[h] {
			visit(dep)
		}
	}
	for h := range needed {
		visit(h)
	}

	indegree := make(map[string]int, len(closure))
	dependents := make(map[string][]string, len(closure))
	for h := range closure {
		indegree[h] = 0
	}
	for h := range closure {
		for _, dep := range r.helperDeps[h] {
			if closure[dep] {
				indegree[h]++
				dependents[dep] = append(dependents[dep], h)
			}
		}
	}

	var ready []string
	for h, deg := range indegree {
		if deg == 0 {
			ready = append(ready, h)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(closure))
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		deps := dependents[next]
		sort.Strings(deps)
		for _, dep := range deps {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(closure) {
		return nil, fmt.Errorf("registry: helper dependency cycle detected while closing over %v", usedConstructs)
	}
	return order, nil
}
