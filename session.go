package entkit

import (
	"context"
	"sync/atomic"
)

// =====================================
// Engine and Entity Session
// =====================================

// Engine is the composition root binding the registry, the configuration
// resolver, the data access orchestrator and the result cache. One engine
// serves any number of entity sessions.
type Engine struct {
	registry     *Registry
	resolver     *Resolver
	orchestrator *Orchestrator
	cache        CacheStore
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache replaces the default in-memory result cache.
func WithCache(cache CacheStore) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// WithSchemaPath overrides the remote describe-entity endpoint prefix.
func WithSchemaPath(path string) EngineOption {
	return func(e *Engine) { e.resolver.WithSchemaPath(path) }
}

// NewEngine creates an engine over the given registry and transport.
func NewEngine(registry *Registry, transport Transport, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:     registry,
		resolver:     NewResolver(registry, transport),
		orchestrator: NewOrchestrator(transport),
		cache:        NewMemoryCache(DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Orchestrator returns the engine's data access orchestrator.
func (e *Engine) Orchestrator() *Orchestrator { return e.orchestrator }

// OpenSession resolves the slug and starts a session with fresh table state.
func (e *Engine) OpenSession(ctx context.Context, slug string) (*Session, error) {
	config, err := e.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &Session{
		engine: e,
		config: config,
		state:  NewTableState(config),
	}, nil
}

// Session is one coherent per-entity workflow: configuration, table state,
// list loading with supersede protection, and the mutation lifecycle with
// cache invalidation. A session belongs to one view at a time.
type Session struct {
	engine *Engine
	config EntityConfiguration
	state  *TableState

	// generation counts issued list loads; a completed load is applied only
	// when its generation is still the latest, so the most recently issued
	// request wins and stale responses are never rendered.
	generation atomic.Uint64
}

// Config returns the session's entity configuration.
func (s *Session) Config() EntityConfiguration { return s.config }

// State returns the session's table state.
func (s *Session) State() *TableState { return s.state }

// Switch re-binds the session to another entity. The table state is reset to
// its initial value — page 1, default limit, no filters, search or
// selection — and any in-flight load of the previous entity is superseded.
func (s *Session) Switch(ctx context.Context, slug string) error {
	config, err := s.engine.resolver.Resolve(ctx, slug)
	if err != nil {
		return err
	}
	s.config = config
	s.state.Reset(config)
	s.generation.Add(1)
	return nil
}

// Load fetches the list page described by the current table state. Fresh
// cached results are served without a request. A result is applied to the
// table state and cache only if no newer load was issued while it was in
// flight; a superseded result is returned to its caller but never applied.
// Failures degrade to an empty result with the error attached.
func (s *Session) Load(ctx context.Context) (ListResult, error) {
	params := s.state.ListParams()
	key := params.CacheKey(s.config.Slug)

	if cached, ok := s.engine.cache.GetList(ctx, key); ok {
		s.state.SetTotal(cached.Total)
		return cached, nil
	}

	generation := s.generation.Add(1)
	result, err := s.engine.orchestrator.List(ctx, s.config, params)
	if err != nil {
		return result, err
	}
	if s.generation.Load() == generation {
		s.engine.cache.SetList(ctx, key, result)
		s.state.SetTotal(result.Total)
	}
	return result, nil
}

// Get fetches one record by id, consulting the detail cache first.
func (s *Session) Get(ctx context.Context, id string) (Record, error) {
	if cached, ok := s.engine.cache.GetDetail(ctx, s.config.Slug, id); ok {
		return cached, nil
	}
	record, err := s.engine.orchestrator.Detail(ctx, s.config, id)
	if err != nil {
		return nil, err
	}
	s.engine.cache.SetDetail(ctx, s.config.Slug, id, record)
	return record, nil
}

// Validate checks a candidate record against the configured field rules.
// The result maps field keys to messages; an empty map means valid. Never an
// error: validation failures are values for the caller to display inline.
func (s *Session) Validate(record Record) map[string]string {
	return ValidateRecord(s.config, record)
}

// Create runs the create lifecycle and invalidates the entity's cached
// results on success so the next Load re-fetches.
func (s *Session) Create(ctx context.Context, data Record) (Record, error) {
	created, err := s.engine.orchestrator.Create(ctx, s.config, data)
	if err != nil {
		return created, err
	}
	s.engine.cache.InvalidateEntity(ctx, s.config.Slug)
	return created, nil
}

// Update runs the update lifecycle and invalidates the entity's cached lists
// and the record's detail entry on success.
func (s *Session) Update(ctx context.Context, id string, data Record) (Record, error) {
	updated, err := s.engine.orchestrator.Update(ctx, s.config, id, data)
	if err != nil {
		return updated, err
	}
	s.engine.cache.InvalidateEntity(ctx, s.config.Slug)
	s.engine.cache.InvalidateDetail(ctx, s.config.Slug, id)
	return updated, nil
}

// Delete runs the delete lifecycle. A veto by the beforeDelete hook resolves
// as a no-op: no request, no cache invalidation, and the returned bool is
// false. On an actual deletion the record also leaves the selection.
func (s *Session) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.engine.orchestrator.Delete(ctx, s.config, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.engine.cache.InvalidateEntity(ctx, s.config.Slug)
	s.engine.cache.InvalidateDetail(ctx, s.config.Slug, id)
	s.state.Deselect(id)
	return true, nil
}
