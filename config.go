package entkit

import (
	"context"
	"strings"
)

// =====================================
// Entity Configuration
// =====================================

// DefaultPageSizeOptions is the page-size choice list used when a
// configuration does not supply its own.
var DefaultPageSizeOptions = []int{5, 10, 25, 50, 100}

// DefaultPageSize is applied when a configuration does not set one.
const DefaultPageSize = 25

// EntityConfiguration is the aggregate descriptor of one administered entity:
// identity, endpoints, fields, columns, filters, paging defaults, feature
// flags, lifecycle hooks and record transformers. One configuration drives the
// full list/create/edit/delete workflow without per-entity plumbing.
type EntityConfiguration struct {
	Name        string `json:"name" yaml:"name"`
	PluralName  string `json:"plural_name" yaml:"plural_name"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Endpoints Endpoints `json:"endpoints" yaml:"endpoints"`

	Fields  []FieldDescriptor  `json:"fields" yaml:"fields"`
	Columns []ColumnDescriptor `json:"columns" yaml:"columns"`
	Filters []FilterDescriptor `json:"filters" yaml:"filters"`

	DefaultPageSize int   `json:"default_page_size,omitempty" yaml:"default_page_size,omitempty"`
	PageSizeOptions []int `json:"page_size_options,omitempty" yaml:"page_size_options,omitempty"`

	Features Features `json:"features" yaml:"features"`

	Hooks        *Hooks        `json:"-" yaml:"-"`
	Transformers *Transformers `json:"-" yaml:"-"`
}

// Endpoints holds the remote path templates for an entity. Only Base is
// mandatory; the others fall back to the base/:id convention. A template may
// contain the ":id" placeholder which is substituted with the record id.
type Endpoints struct {
	Base       string `json:"base" yaml:"base"`
	Create     string `json:"create,omitempty" yaml:"create,omitempty"`
	GetByID    string `json:"get_by_id,omitempty" yaml:"get_by_id,omitempty"`
	UpdateByID string `json:"update_by_id,omitempty" yaml:"update_by_id,omitempty"`
	DeleteByID string `json:"delete_by_id,omitempty" yaml:"delete_by_id,omitempty"`
}

// IDPlaceholder is the token substituted with the record id in endpoint
// templates supplied by a remote schema description.
const IDPlaceholder = ":id"

// CreatePath returns the create endpoint, defaulting to the base endpoint.
func (e Endpoints) CreatePath() string {
	if e.Create != "" {
		return e.Create
	}
	return e.Base
}

// DetailPath returns the detail endpoint for id.
func (e Endpoints) DetailPath(id string) string {
	return e.idPath(e.GetByID, id)
}

// UpdatePath returns the update endpoint for id.
func (e Endpoints) UpdatePath(id string) string {
	return e.idPath(e.UpdateByID, id)
}

// DeletePath returns the delete endpoint for id.
func (e Endpoints) DeletePath(id string) string {
	return e.idPath(e.DeleteByID, id)
}

func (e Endpoints) idPath(template, id string) string {
	if template == "" {
		return strings.TrimRight(e.Base, "/") + "/" + id
	}
	if strings.Contains(template, IDPlaceholder) {
		return strings.ReplaceAll(template, IDPlaceholder, id)
	}
	return strings.TrimRight(template, "/") + "/" + id
}

// Features toggles the optional table behaviors of an entity view.
type Features struct {
	Sorting    bool `json:"sorting" yaml:"sorting"`
	Filtering  bool `json:"filtering" yaml:"filtering"`
	Selection  bool `json:"selection" yaml:"selection"`
	Pagination bool `json:"pagination" yaml:"pagination"`
}

// AllFeatures enables every table behavior. The normalized default.
func AllFeatures() Features {
	return Features{Sorting: true, Filtering: true, Selection: true, Pagination: true}
}

// Normalize fills the safe defaults of a partially specified configuration
// and returns it. Absent slug falls back to a slug of the name, absent plural
// to name+"s", absent paging to the package defaults. The result is always a
// fully-typed configuration; Normalize never fails.
func (c EntityConfiguration) Normalize() EntityConfiguration {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if c.Name == "" {
		c.Name = c.Slug
	}
	if c.PluralName == "" {
		c.PluralName = c.Name + "s"
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if len(c.PageSizeOptions) == 0 {
		c.PageSizeOptions = append([]int(nil), DefaultPageSizeOptions...)
	}
	if c.Endpoints.Base == "" {
		c.Endpoints.Base = "/" + c.Slug
	}
	return c
}

// FieldByKey returns the field with the given key, or nil.
func (c *EntityConfiguration) FieldByKey(key string) *FieldDescriptor {
	for i := range c.Fields {
		if c.Fields[i].Key == key {
			return &c.Fields[i]
		}
	}
	return nil
}

// FilterByKey returns the filter with the given key, or nil.
func (c *EntityConfiguration) FilterByKey(key string) *FilterDescriptor {
	for i := range c.Filters {
		if c.Filters[i].Key == key {
			return &c.Filters[i]
		}
	}
	return nil
}

// =====================================
// Lifecycle Hooks and Transformers
// =====================================

// Hooks is the optional strategy object of mutation callbacks attached to a
// configuration. Before-hooks may rewrite the outgoing payload; BeforeDelete
// may veto the deletion by returning false. Every hook is optional; the
// orchestrator runs each through a maybe-run wrapper so absent hooks cost
// nothing.
type Hooks struct {
	BeforeCreate func(ctx context.Context, payload Record) (Record, error)
	AfterCreate  func(ctx context.Context, created Record) error
	BeforeUpdate func(ctx context.Context, id string, payload Record) (Record, error)
	AfterUpdate  func(ctx context.Context, id string, updated Record) error
	BeforeDelete func(ctx context.Context, id string) (bool, error)
	AfterDelete  func(ctx context.Context, id string) error
}

// Transformers are pure functions rewriting records between their on-the-wire
// shape and their in-memory/form shape. Each is optional.
type Transformers struct {
	// List rewrites each record of a list response.
	List func(record Record) Record
	// Detail rewrites a single fetched record.
	Detail func(record Record) Record
	// Create rewrites the payload before a create request.
	Create func(record Record) Record
	// Update rewrites the payload before an update request.
	Update func(record Record) Record
}
