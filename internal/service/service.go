// Package service is the organization service facade: record CRUD,
// RetrieveMultiple, associate/disassociate and exchange rate lookup over
// one record store.
//
// A Service is single-owner: callers must not run writes concurrently with
// queries on the same instance. Independent instances share nothing.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/config"
	"github.com/roach88/orgfake/internal/engine"
	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/metadata"
	"github.com/roach88/orgfake/internal/query"
	"github.com/roach88/orgfake/internal/relationship"
	"github.com/roach88/orgfake/internal/store"
)

// VersionAttribute receives a clock value on every written record.
const VersionAttribute = "versionnumber"

// Service serves requests against one store.
type Service struct {
	store       *store.Store
	catalog     *metadata.Catalog
	pipeline    *engine.Pipeline
	resolver    *relationship.Resolver
	ids         ir.IDGenerator
	clock       Clock
	logger      *slog.Logger
	initialized bool
}

type options struct {
	catalog     *metadata.Catalog
	ids         ir.IDGenerator
	clock       Clock
	logger      *slog.Logger
	maxPageSize int
}

// Option configures a Service.
type Option func(*options)

// WithCatalog sets entity metadata and registered relationships.
func WithCatalog(c *metadata.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithIDGenerator sets the generator for ids of created records.
func WithIDGenerator(g ir.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithClock sets the version number clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxRetrieveCount sets the default page size.
func WithMaxRetrieveCount(n int) Option {
	return func(o *options) { o.maxPageSize = n }
}

// New creates a service over s.
func New(s *store.Store, opts ...Option) *Service {
	o := &options{maxPageSize: engine.DefaultMaxPageSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.catalog == nil {
		o.catalog = metadata.NewCatalog()
	}
	if o.ids == nil {
		o.ids = ir.UUIDv7Generator{}
	}
	if o.clock == nil {
		o.clock = &counterClock{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		store:   s,
		catalog: o.catalog,
		pipeline: engine.NewPipeline(s,
			engine.WithCatalog(o.catalog),
			engine.WithLogger(o.logger),
			engine.WithMaxPageSize(o.maxPageSize)),
		resolver: relationship.NewResolver(s, o.catalog, o.ids, o.logger),
		ids:      o.ids,
		clock:    o.clock,
		logger:   o.logger,
	}
}

// Open creates a service from configuration: it opens the store at
// cfg.StorePath and loads metadata from cfg.MetadataDir when set.
// Records never carry over from an earlier process, even with a file
// store_path.
// The caller closes the returned service.
func Open(cfg config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var catalog *metadata.Catalog
	if cfg.MetadataDir != "" {
		c, errs := metadata.Load(cfg.MetadataDir)
		if len(errs) > 0 {
			return nil, fmt.Errorf("load metadata: %w", metadata.Join(errs))
		}
		catalog = c
	}

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A file store only lets the records be inspected after exit. Each
	// service starts empty.
	if cfg.StorePath != store.MemoryPath {
		if err := s.Truncate(context.Background()); err != nil {
			s.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	base := []Option{WithMaxRetrieveCount(cfg.MaxRetrieveCount)}
	if catalog != nil {
		base = append(base, WithCatalog(catalog))
	}
	return New(s, append(base, opts...)...), nil
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Catalog returns the service's metadata catalog.
func (s *Service) Catalog() *metadata.Catalog {
	return s.catalog
}

// AddRelationship registers a relationship for Associate and Disassociate.
func (s *Service) AddRelationship(rel *relationship.Relationship) error {
	return s.catalog.AddRelationship(rel)
}

// Initialize seeds the store. It may be called once per service.
//
// Records without an id get one. Each record's primary key attribute is
// set to its id. Records are stored in argument order, which is the order
// unsorted queries return them in. Seeding is all or nothing: when any
// record is rejected the store is left empty and Initialize may be retried.
func (s *Service) Initialize(ctx context.Context, recs ...*ir.Record) error {
	if s.initialized {
		return fault.New(fault.CodeInvalidArgument, "Initialize may only be called once per service")
	}

	seeded := make([]*ir.Record, len(recs))
	for i, rec := range recs {
		if rec == nil || rec.LogicalName == "" {
			return fault.Newf(fault.CodeInvalidArgument, "initialize: record %d must have a logical name", i)
		}
		rec = rec.Clone()
		if rec.ID == uuid.Nil {
			rec.ID = s.ids.NewID()
		}
		rec.Set(s.catalog.PrimaryKey(rec.LogicalName), ir.NewGUID(rec.ID))
		rec.Set(VersionAttribute, ir.NewInt(s.clock.Next()))
		seeded[i] = rec
	}

	if err := s.store.PutAll(ctx, seeded); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	s.initialized = true
	s.logger.Debug("initialized", "records", len(recs))
	return nil
}

// Create stores a new record and returns its id.
func (s *Service) Create(ctx context.Context, rec *ir.Record) (uuid.UUID, error) {
	if rec == nil || rec.LogicalName == "" {
		return uuid.Nil, fault.New(fault.CodeInvalidArgument, "record must have a logical name")
	}
	rec = rec.Clone()
	if rec.ID != uuid.Nil {
		_, exists, err := s.store.Get(ctx, rec.LogicalName, rec.ID)
		if err != nil {
			return uuid.Nil, err
		}
		if exists {
			return uuid.Nil, fault.Newf(fault.CodeInvalidArgument,
				"%s with id %s already exists", rec.LogicalName, rec.ID).
				With("entity", rec.LogicalName).With("id", rec.ID.String())
		}
	}
	if err := s.write(ctx, rec); err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

func (s *Service) write(ctx context.Context, rec *ir.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = s.ids.NewID()
	}
	rec.Set(s.catalog.PrimaryKey(rec.LogicalName), ir.NewGUID(rec.ID))
	rec.Set(VersionAttribute, ir.NewInt(s.clock.Next()))
	return s.store.Put(ctx, rec)
}

// Retrieve returns the selected columns of one record.
func (s *Service) Retrieve(ctx context.Context, entity string, id uuid.UUID, cols query.ColumnSet) (*ir.Record, error) {
	rec, ok, err := s.store.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.EntityNotFound(entity, id.String())
	}
	if cols.All {
		return rec, nil
	}

	out := ir.NewRecord(rec.LogicalName, rec.ID)
	for _, name := range cols.Columns {
		if v := rec.Get(name); !ir.IsNull(v) {
			out.Set(name, v)
		}
	}
	return out, nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	ok, err := s.store.Delete(ctx, entity, id)
	if err != nil {
		return err
	}
	if !ok {
		return fault.EntityNotFound(entity, id.String())
	}
	return nil
}

// RetrieveMultiple runs a query.
func (s *Service) RetrieveMultiple(ctx context.Context, q query.Query) (*engine.Result, error) {
	return s.pipeline.RetrieveMultiple(ctx, q)
}

// Associate relates source to each target through a registered
// relationship. The two sides may be passed in either order.
func (s *Service) Associate(ctx context.Context, relationshipName string, source ir.EntityRef, targets ...ir.EntityRef) error {
	return s.resolver.Associate(ctx, relationshipName, source, targets)
}

// Disassociate removes the relation between source and each target.
func (s *Service) Disassociate(ctx context.Context, relationshipName string, source ir.EntityRef, targets ...ir.EntityRef) error {
	return s.resolver.Disassociate(ctx, relationshipName, source, targets)
}
