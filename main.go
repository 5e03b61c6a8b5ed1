// Package entkit is a declarative, schema-driven administration engine: one
// configuration object describing a data entity — endpoints, fields, table
// columns, filters, validation rules and lifecycle hooks — drives a complete
// list/create/edit/delete workflow against a remote service, with no
// hand-written per-entity plumbing.
//
// Configurations are registered statically (in code or from YAML files) or
// synthesized on first lookup from a remote schema description. An Engine
// binds the registry, resolver, orchestrator and result cache; a Session is
// the per-entity workflow over one engine.
package entkit

// New creates an engine with an empty registry over an HTTP transport for
// the given base URL. The convenience path for callers that need no custom
// wiring; everything it assembles can also be constructed piecewise.
func New(baseURL string, opts ...EngineOption) *Engine {
	return NewEngine(NewRegistry(), NewHTTPTransport(baseURL), opts...)
}
