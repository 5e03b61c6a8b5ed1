// Package entserve is a development admin backend speaking the wire contract
// the entkit engine consumes: the describe-entity endpoint plus the five
// record operations, backed by a schema-agnostic record store. It exists so
// entity configurations can be exercised end to end before the real backend
// is available.
package entserve

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/entkit/entkit"
)

// Server exposes the registry's entities over HTTP.
type Server struct {
	registry *entkit.Registry
	store    *Store
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithGinMode sets the gin mode, typically gin.ReleaseMode for quiet tests.
func WithGinMode(mode string) Option {
	return func(*Server) { gin.SetMode(mode) }
}

// New builds a server over the registry and store.
func New(registry *entkit.Registry, store *Store, opts ...Option) *Server {
	s := &Server{registry: registry, store: store}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/admin/schema/:slug", s.describeEntity)
	router.GET("/:slug", s.listRecords)
	router.POST("/:slug", s.createRecord)
	router.GET("/:slug/:id", s.getRecord)
	router.PUT("/:slug/:id", s.updateRecord)
	router.DELETE("/:slug/:id", s.deleteRecord)

	s.router = router
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) config(c *gin.Context) (entkit.EntityConfiguration, bool) {
	slug := c.Param("slug")
	config, ok := s.registry.Get(slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "entity " + strconv.Quote(slug) + " not found"})
		return entkit.EntityConfiguration{}, false
	}
	return config, true
}

func (s *Server) describeEntity(c *gin.Context) {
	config, ok := s.config(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": config})
}

func (s *Server) listRecords(c *gin.Context) {
	config, ok := s.config(c)
	if !ok {
		return
	}

	query := ListQuery{
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", config.DefaultPageSize),
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  entkit.SortDirection(c.DefaultQuery("sortOrder", string(entkit.SortAsc))),
		Filters:    filterParams(c),
		SearchKeys: textualFieldKeys(config),
	}

	records, total, err := s.store.List(c.Request.Context(), config.Slug, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       records,
		"total":      total,
		"totalPages": entkit.TotalPages(total, query.Limit),
	})
}

func (s *Server) createRecord(c *gin.Context) {
	config, ok := s.config(c)
	if !ok {
		return
	}

	var record entkit.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if errs := entkit.ValidateRecord(config, record); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "validation failed", "errors": errs})
		return
	}

	created, err := s.store.Insert(c.Request.Context(), config.Slug, record)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) getRecord(c *gin.Context) {
	config, ok := s.config(c)
	if !ok {
		return
	}

	record, found, err := s.store.Get(c.Request.Context(), config.Slug, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": config.Name + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) updateRecord(c *gin.Context) {
	config, ok := s.config(c)
	if !ok {
		return
	}

	var record entkit.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if errs := entkit.ValidateRecord(config, record); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "validation failed", "errors": errs})
		return
	}

	updated, found, err := s.store.Update(c.Request.Context(), config.Slug, c.Param("id"), record)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": config.Name + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) deleteRecord(c *gin.Context) {
	config, ok := s.config(c)
	if !ok {
		return
	}

	deleted, err := s.store.Delete(c.Request.Context(), config.Slug, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": config.Name + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// =====================================
// Request Decoding Helpers
// =====================================

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// filterParams collects every filter[key]=value query parameter, repeated
// values included.
func filterParams(c *gin.Context) map[string][]string {
	filters := make(map[string][]string)
	for name, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(name, "filter[") || !strings.HasSuffix(name, "]") {
			continue
		}
		key := name[len("filter[") : len(name)-1]
		if key == "" {
			continue
		}
		filters[key] = append(filters[key], values...)
	}
	return filters
}

// textualFieldKeys scopes free-text search to the entity's textual fields.
func textualFieldKeys(config entkit.EntityConfiguration) []string {
	var keys []string
	for _, field := range config.Fields {
		if field.Type.IsTextual() {
			keys = append(keys, field.Key)
		}
	}
	return keys
}
