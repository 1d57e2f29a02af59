// Package gateway wires parsed configuration into live Dialect
// connections and Api instances, and exposes them to the HTTP layer by
// resource name.
package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/tablegate/tablegate/internal/api"
	"github.com/tablegate/tablegate/internal/config"
	"github.com/tablegate/tablegate/internal/datamodel"
	"github.com/tablegate/tablegate/internal/dialect"
	"github.com/tablegate/tablegate/internal/hashid"
)

// Resource is one routable table: its Api plus the name it is mounted
// under.
type Resource struct {
	Name string
	Api  *api.Api
}

// Registry holds every connected service and the resources built on
// top of them. It is read-only once Open returns; callers needing to
// add resources at runtime go through AddResource.
type Registry struct {
	mu        sync.RWMutex
	services  map[string]dialect.Dialect
	resources map[string]*Resource
}

// Open connects every service in f, introspects every configured
// table, and returns a ready Registry. On any failure it disconnects
// whatever it already opened before returning the error.
func Open(ctx context.Context, f *config.File) (*Registry, error) {
	r := &Registry{
		services:  make(map[string]dialect.Dialect),
		resources: make(map[string]*Resource),
	}

	for _, svc := range f.Services {
		d, err := dialect.Open(dialect.Config{Engine: svc.Driver, DSN: svc.DSN, Database: svc.Database})
		if err != nil {
			r.CloseAll()
			return nil, fmt.Errorf("gateway: service %q: %w", svc.Name, err)
		}
		if err := d.Connect(ctx); err != nil {
			r.CloseAll()
			return nil, fmt.Errorf("gateway: service %q: connect: %w", svc.Name, err)
		}
		if err := d.Validate(ctx); err != nil {
			d.Disconnect()
			r.CloseAll()
			return nil, fmt.Errorf("gateway: service %q: validate: %w", svc.Name, err)
		}
		r.services[svc.Name] = d
	}

	for _, t := range f.Tables {
		if err := r.AddResource(ctx, t); err != nil {
			r.CloseAll()
			return nil, err
		}
	}

	return r, nil
}

// AddResource introspects t.TableName on its configured service and
// registers the resulting Api under t.APIName (or t.TableName if unset).
func (r *Registry) AddResource(ctx context.Context, t config.TableConfig) error {
	r.mu.RLock()
	d, ok := r.services[t.Service]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("gateway: table %q references unknown service %q", t.TableName, t.Service)
	}

	cols, err := d.IntrospectTable(ctx, t.TableName)
	if err != nil {
		return fmt.Errorf("gateway: introspect %q: %w", t.TableName, err)
	}

	var opts []datamodel.Option
	if len(t.ExcludeFields) > 0 {
		opts = append(opts, datamodel.WithExcludedFields(t.ExcludeFields))
	}

	var h *hashid.Hashid
	if t.HashidKey != "" {
		length := t.HashidLength
		if length == 0 {
			length = hashid.MinLength
		}
		h, err = hashid.New(t.HashidKey, t.TableName, length, t.HashidStaticIds)
		if err != nil {
			return fmt.Errorf("gateway: table %q: hashid: %w", t.TableName, err)
		}
		opts = append(opts, datamodel.WithHashid(h))
	}

	model := datamodel.FromColumns(t.TableName, d, cols, opts...)

	name := t.APIName
	if name == "" {
		name = t.TableName
	}

	a := api.New(model, d, api.Config{
		TableName:              t.TableName,
		APIName:                name,
		FailOnOversizedValues:  t.FailOnOversizedValues,
		FailOnUpdateOnAutoinc:  t.FailOnUpdateOnAutoinc,
		FailOnInsertWithoutKey: t.FailOnInsertWithoutKey,
		UseDatesAsString:       t.UseDatesAsString,
		ApplyHashid:            h != nil,
		DebugOnError:           t.DebugOnError,
	})

	r.mu.Lock()
	r.resources[name] = &Resource{Name: name, Api: a}
	r.mu.Unlock()
	return nil
}

// Resource returns the named resource, or false if no table was
// mounted under that name.
func (r *Registry) Resource(name string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[name]
	return res, ok
}

// ResourceNames returns every mounted resource name.
func (r *Registry) ResourceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	return names
}

// Ping checks every connected service, returning a map of service name
// to error (nil on success). Used by the readiness probe.
func (r *Registry) Ping(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]error, len(r.services))
	for name, d := range r.services {
		if !d.Connected() {
			out[name] = fmt.Errorf("not connected")
			continue
		}
		_, err := d.Query(ctx, "SELECT 1")
		out[name] = err
	}
	return out
}

// CloseAll disconnects every service.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, d := range r.services {
		d.Disconnect()
		delete(r.services, name)
	}
}
