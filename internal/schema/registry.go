// Package schema implements the per-tenant field-mapping registry: a set of
// YAML documents, one per tenant, that tell an input adapter which
// source-specific field names map onto which CanonicalRecord fields.
package schema

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrTenantNotFound = errors.New("tenant schema not found")
	ErrNoDefaultSchema = errors.New("no default schema registered")
)

// TenantSchema describes how one tenant's source fields map onto the
// canonical record, plus any tenant-specific behavior flags.
type TenantSchema struct {
	TenantID          string              `yaml:"tenant_id" json:"tenant_id"`
	FieldMapping      map[string][]string `yaml:"field_mapping" json:"field_mapping"`
	RequiredForSearch []string            `yaml:"required_for_search,omitempty" json:"required_for_search,omitempty"`
	FieldTypes        map[string]string   `yaml:"field_types,omitempty" json:"field_types,omitempty"`
	Language          string              `yaml:"language,omitempty" json:"language,omitempty"`

	// Processing and Search are opaque per-tenant configuration bags read by
	// the ingestion pipeline and retriever respectively; their shape is not
	// interpreted by the registry itself.
	Processing map[string]any `yaml:"processing,omitempty" json:"processing,omitempty"`
	Search     map[string]any `yaml:"search,omitempty" json:"search,omitempty"`
}

// Registry holds the in-memory set of tenant schemas, backed by a directory
// of YAML files (one per tenant, named <tenant_id>.yaml), loaded eagerly and
// refreshable via Reload.
type Registry struct {
	mu       sync.RWMutex
	configDir string
	schemas  map[string]*TenantSchema
}

// NewRegistry loads all *.yaml files under configDir and returns a ready
// Registry. A missing directory is not an error: the registry starts empty
// and schemas may be registered in-memory or persisted later.
func NewRegistry(configDir string) (*Registry, error) {
	r := &Registry{
		configDir: configDir,
		schemas:   make(map[string]*TenantSchema),
	}
	if err := r.reloadLocked(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the schema for tenantID, falling back to the "default" schema
// if the tenant has none registered.
func (r *Registry) Get(tenantID string) (*TenantSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.schemas[tenantID]; ok {
		return s, nil
	}
	if s, ok := r.schemas["default"]; ok {
		return s, nil
	}
	return nil, ErrNoDefaultSchema
}

// GetExact returns the schema registered for tenantID, with no fallback to
// "default" — used where the caller is asking about that specific tenant
// (e.g. the schema CRUD surface) rather than resolving a schema to parse with.
func (r *Registry) GetExact(tenantID string) (*TenantSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.schemas[tenantID]; ok {
		return s, nil
	}
	return nil, ErrTenantNotFound
}

// Register adds or replaces a tenant schema in memory only. Call Save to
// persist it to disk.
func (r *Registry) Register(s *TenantSchema) error {
	if s == nil || strings.TrimSpace(s.TenantID) == "" {
		return errors.New("tenant schema must have a non-empty tenant_id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.TenantID] = s
	return nil
}

// Save persists s to <configDir>/<tenant_id>.yaml using a temp-file-then-
// rename write for crash safety, and registers it in memory.
func (r *Registry) Save(s *TenantSchema) error {
	if err := r.Register(s); err != nil {
		return err
	}
	if r.configDir == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(r.configDir, 0o750); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	path := filepath.Join(r.configDir, s.TenantID+".yaml")
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// ListTenants returns the registered tenant IDs in sorted order.
func (r *Registry) ListTenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reload clears the in-memory set and reloads every *.yaml under configDir.
func (r *Registry) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = make(map[string]*TenantSchema)
	return r.reloadLocked()
}

func (r *Registry) reloadLocked() error {
	if r.configDir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(r.configDir, "*.yaml"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("schema: failed to read tenant config", "path", path, "error", err)
			continue
		}
		var s TenantSchema
		if err := yaml.Unmarshal(data, &s); err != nil {
			slog.Warn("schema: failed to parse tenant config", "path", path, "error", err)
			continue
		}
		if s.TenantID == "" {
			s.TenantID = strings.TrimSuffix(filepath.Base(path), ".yaml")
		}
		schemaCopy := s
		r.schemas[s.TenantID] = &schemaCopy
	}
	return nil
}
