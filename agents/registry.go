package agents

import "sort"

// Registry maps agent ids to agents. It is built once at startup and is
// read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	agents   map[string]Agent
	fallback Agent
}

// NewRegistry builds a registry. The fallback serves every unknown id and is
// also listed under its own id.
func NewRegistry(fallback Agent, agents ...Agent) *Registry {
	r := &Registry{
		agents:   make(map[string]Agent, len(agents)+1),
		fallback: fallback,
	}
	if fallback != nil {
		r.agents[fallback.Info().ID] = fallback
	}
	for _, a := range agents {
		r.agents[a.Info().ID] = a
	}
	return r
}

// Resolve returns the agent registered under id, or the fallback
func (r *Registry) Resolve(id string) Agent {
	if a, ok := r.agents[id]; ok {
		return a
	}
	return r.fallback
}

// Lookup returns the agent registered under id without falling back
func (r *Registry) Lookup(id string) (Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// List returns every registered agent's info sorted by id
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.agents))
	for _, a := range r.agents {
		infos = append(infos, a.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
