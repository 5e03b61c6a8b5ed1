package entkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// =====================================
// Data Access Orchestrator
// =====================================

// Orchestrator builds and issues the remote requests of the five entity
// operations, applies transformers and lifecycle hooks, and normalizes the
// heterogeneous response envelopes. It holds no per-entity state: the
// configuration is an argument of every operation.
type Orchestrator struct {
	transport Transport
}

// NewOrchestrator creates an orchestrator over the given transport.
func NewOrchestrator(transport Transport) *Orchestrator {
	return &Orchestrator{transport: transport}
}

// List fetches one page of records. Failures degrade: the returned ListResult
// is empty but well-formed so a view can still render, and the error carries
// the reason.
func (o *Orchestrator) List(ctx context.Context, config EntityConfiguration, params ListParams) (ListResult, error) {
	empty := ListResult{Data: []Record{}, Total: 0, TotalPages: 1}

	body, status, err := o.transport.Do(ctx, http.MethodGet, config.Endpoints.Base, params.QueryValues(), nil)
	if err != nil {
		return empty, NewFetchError(config.Slug, fmt.Sprintf("failed to list %s", config.PluralName), err)
	}
	if status < 200 || status >= 300 {
		return empty, NewFetchError(config.Slug, fmt.Sprintf("failed to list %s: %s", config.PluralName, upstreamMessage(body, fmt.Sprintf("status %d", status))), nil)
	}

	result, err := DecodeListEnvelope(config, body, params.Limit)
	if err != nil {
		return empty, NewFetchError(config.Slug, fmt.Sprintf("failed to decode %s list response", config.Name), err)
	}
	if result.Data == nil {
		result.Data = []Record{}
	}
	if config.Transformers != nil && config.Transformers.List != nil {
		for i, record := range result.Data {
			result.Data[i] = config.Transformers.List(record)
		}
	}
	return result, nil
}

// Detail fetches a single record by id and applies the detail transformer.
func (o *Orchestrator) Detail(ctx context.Context, config EntityConfiguration, id string) (Record, error) {
	body, status, err := o.transport.Do(ctx, http.MethodGet, config.Endpoints.DetailPath(id), nil, nil)
	if err != nil {
		return nil, NewFetchError(config.Slug, fmt.Sprintf("failed to fetch %s %q", config.Name, id), err)
	}
	if status < 200 || status >= 300 {
		return nil, NewFetchError(config.Slug, fmt.Sprintf("failed to fetch %s %q: %s", config.Name, id, upstreamMessage(body, fmt.Sprintf("status %d", status))), nil)
	}

	record, err := decodeRecord(body)
	if err != nil {
		return nil, NewFetchError(config.Slug, fmt.Sprintf("failed to decode %s %q", config.Name, id), err)
	}
	if config.Transformers != nil && config.Transformers.Detail != nil {
		record = config.Transformers.Detail(record)
	}
	return record, nil
}

// Create runs the beforeCreate hook, applies the create transformer, posts
// the payload and runs the afterCreate hook on success. No hook fires with
// observable effects unless the whole sequence can proceed: a failing before
// hook stops the operation before any request is sent.
func (o *Orchestrator) Create(ctx context.Context, config EntityConfiguration, data Record) (Record, error) {
	payload, err := runPayloadHook(ctx, hookBeforeCreate(config.Hooks), data)
	if err != nil {
		return nil, NewMutationError(config.Slug, fmt.Sprintf("failed to create %s", config.Name), err)
	}
	payload = runTransformer(transformerCreate(config.Transformers), payload)

	body, status, err := o.transport.Do(ctx, http.MethodPost, config.Endpoints.CreatePath(), nil, payload)
	if err != nil {
		return nil, NewMutationError(config.Slug, fmt.Sprintf("failed to create %s", config.Name), err)
	}
	if status < 200 || status >= 300 {
		return nil, NewMutationError(config.Slug, upstreamMessage(body, fmt.Sprintf("failed to create %s", config.Name)), nil)
	}

	created, err := decodeRecord(body)
	if err != nil {
		// Some remotes answer a create with an empty body; treat the
		// submitted payload as the best available record.
		created = payload
	}
	if hook := hookAfterCreate(config.Hooks); hook != nil {
		if err := hook(ctx, created); err != nil {
			return created, NewMutationError(config.Slug, fmt.Sprintf("create %s succeeded but after-create hook failed", config.Name), err)
		}
	}
	return created, nil
}

// Update is symmetric to Create, using the id-aware update endpoint.
func (o *Orchestrator) Update(ctx context.Context, config EntityConfiguration, id string, data Record) (Record, error) {
	payload, err := runIDPayloadHook(ctx, hookBeforeUpdate(config.Hooks), id, data)
	if err != nil {
		return nil, NewMutationError(config.Slug, fmt.Sprintf("failed to update %s", config.Name), err)
	}
	payload = runTransformer(transformerUpdate(config.Transformers), payload)

	body, status, err := o.transport.Do(ctx, http.MethodPut, config.Endpoints.UpdatePath(id), nil, payload)
	if err != nil {
		return nil, NewMutationError(config.Slug, fmt.Sprintf("failed to update %s", config.Name), err)
	}
	if status < 200 || status >= 300 {
		return nil, NewMutationError(config.Slug, upstreamMessage(body, fmt.Sprintf("failed to update %s", config.Name)), nil)
	}

	updated, err := decodeRecord(body)
	if err != nil {
		updated = payload
	}
	if hook := hookAfterUpdate(config.Hooks); hook != nil {
		if err := hook(ctx, id, updated); err != nil {
			return updated, NewMutationError(config.Slug, fmt.Sprintf("update %s succeeded but after-update hook failed", config.Name), err)
		}
	}
	return updated, nil
}

// Delete removes a record. BeforeDelete may veto by returning false, in
// which case no request is sent and the operation resolves as a no-op; the
// second result reports whether the deletion actually happened.
func (o *Orchestrator) Delete(ctx context.Context, config EntityConfiguration, id string) (bool, error) {
	if hook := hookBeforeDelete(config.Hooks); hook != nil {
		proceed, err := hook(ctx, id)
		if err != nil {
			return false, NewMutationError(config.Slug, fmt.Sprintf("failed to delete %s", config.Name), err)
		}
		if !proceed {
			return false, nil
		}
	}

	body, status, err := o.transport.Do(ctx, http.MethodDelete, config.Endpoints.DeletePath(id), nil, nil)
	if err != nil {
		return false, NewMutationError(config.Slug, fmt.Sprintf("failed to delete %s", config.Name), err)
	}
	if status < 200 || status >= 300 {
		return false, NewMutationError(config.Slug, upstreamMessage(body, fmt.Sprintf("failed to delete %s", config.Name)), nil)
	}

	if hook := hookAfterDelete(config.Hooks); hook != nil {
		if err := hook(ctx, id); err != nil {
			return true, NewMutationError(config.Slug, fmt.Sprintf("delete %s succeeded but after-delete hook failed", config.Name), err)
		}
	}
	return true, nil
}

// =====================================
// Hook and Transformer Plumbing
// =====================================

// runPayloadHook is the maybe-run wrapper for payload-rewriting hooks: a nil
// hook passes the payload through unchanged.
func runPayloadHook(ctx context.Context, hook func(context.Context, Record) (Record, error), payload Record) (Record, error) {
	if hook == nil {
		return payload, nil
	}
	return hook(ctx, payload)
}

// runIDPayloadHook is runPayloadHook for the id-aware hooks.
func runIDPayloadHook(ctx context.Context, hook func(context.Context, string, Record) (Record, error), id string, payload Record) (Record, error) {
	if hook == nil {
		return payload, nil
	}
	return hook(ctx, id, payload)
}

func runTransformer(transform func(Record) Record, record Record) Record {
	if transform == nil {
		return record
	}
	return transform(record)
}

func hookBeforeCreate(h *Hooks) func(context.Context, Record) (Record, error) {
	if h == nil {
		return nil
	}
	return h.BeforeCreate
}

func hookAfterCreate(h *Hooks) func(context.Context, Record) error {
	if h == nil {
		return nil
	}
	return h.AfterCreate
}

func hookBeforeUpdate(h *Hooks) func(context.Context, string, Record) (Record, error) {
	if h == nil {
		return nil
	}
	return h.BeforeUpdate
}

func hookAfterUpdate(h *Hooks) func(context.Context, string, Record) error {
	if h == nil {
		return nil
	}
	return h.AfterUpdate
}

func hookBeforeDelete(h *Hooks) func(context.Context, string) (bool, error) {
	if h == nil {
		return nil
	}
	return h.BeforeDelete
}

func hookAfterDelete(h *Hooks) func(context.Context, string) error {
	if h == nil {
		return nil
	}
	return h.AfterDelete
}

func transformerCreate(t *Transformers) func(Record) Record {
	if t == nil {
		return nil
	}
	return t.Create
}

func transformerUpdate(t *Transformers) func(Record) Record {
	if t == nil {
		return nil
	}
	return t.Update
}

// decodeRecord accepts either a bare record object or one wrapped in a data
// envelope.
func decodeRecord(body []byte) (Record, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if inner, ok := raw["data"].(map[string]interface{}); ok {
		return inner, nil
	}
	return raw, nil
}

// upstreamMessage extracts the humanized failure reason from an upstream
// error body, falling back to the given default.
func upstreamMessage(body []byte, fallback string) string {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err == nil {
		if msg := asString(raw["message"]); msg != "" {
			return msg
		}
		if msg := asString(raw["error"]); msg != "" {
			return msg
		}
	}
	return fallback
}
