package domain

// Endpoint describes one named operation of the platform's internal query API.
type Endpoint struct {
	OperationName string
	OperationID   string
	Path          string
}

// Registry maps operation names to endpoints. Registration is
// first-writer-wins so repeated discovery over overlapping sources stays
// idempotent.
type Registry struct {
	endpoints map[string]Endpoint
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{endpoints: map[string]Endpoint{}}
}

// Register adds the endpoint unless its operation name is already known.
// It reports whether the endpoint was added.
func (r *Registry) Register(e Endpoint) bool {
	if e.OperationName == "" {
		return false
	}
	if _, ok := r.endpoints[e.OperationName]; ok {
		return false
	}

	r.endpoints[e.OperationName] = e
	r.order = append(r.order, e.OperationName)
	return true
}

func (r *Registry) Lookup(name string) (Endpoint, bool) {
	e, ok := r.endpoints[name]
	return e, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.endpoints[name]
	return ok
}

func (r *Registry) HasAll(names ...string) bool {
	for _, name := range names {
		if !r.Has(name) {
			return false
		}
	}
	return true
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Operations returns the registered endpoints in registration order.
func (r *Registry) Operations() []Endpoint {
	out := make([]Endpoint, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.endpoints[name])
	}
	return out
}
