package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/orgfake/internal/aggregate"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// DefaultMaxPageSize is the page size used when a query does not set one.
const DefaultMaxPageSize = 5000

// RecordSource enumerates stored records of an entity in insertion order.
// *store.Store satisfies it.
type RecordSource interface {
	Scan(ctx context.Context, entity string) ([]*ir.Record, error)
}

// Catalog supplies entity metadata the post-processor needs.
type Catalog interface {
	// PrimaryKey returns the primary key attribute of an entity.
	PrimaryKey(entity string) string

	// OptionLabel returns the label of an option set value.
	OptionLabel(entity, attribute string, value int64) (string, bool)
}

// Result is the record collection returned by RetrieveMultiple.
type Result struct {
	EntityName       string
	Records          []*ir.Record
	MoreRecords      bool
	PagingCookie     string
	TotalRecordCount int
}

// Pipeline executes RetrieveMultiple queries against one source.
type Pipeline struct {
	source      RecordSource
	catalog     Catalog
	logger      *slog.Logger
	maxPageSize int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCatalog sets the metadata catalog. Without one the primary key of
// entity "x" is "xid" and option sets format only when they carry a name.
func WithCatalog(c Catalog) Option {
	return func(p *Pipeline) {
		p.catalog = c
	}
}

// WithLogger sets the logger stage sizes are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMaxPageSize sets the page size used when a query does not set one.
func WithMaxPageSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPageSize = n
		}
	}
}

// NewPipeline creates a pipeline reading from source.
func NewPipeline(source RecordSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:      source,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxPageSize: DefaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RetrieveMultiple runs a query and returns one page of results.
//
// Stage order is fixed: join and filter, sort, project (or aggregate),
// distinct, top count, total count, paging, cookie, formatted values.
// Every stage either completes or the call fails; the source is never
// written.
func (p *Pipeline) RetrieveMultiple(ctx context.Context, q query.Query) (*Result, error) {
	n, err := Normalize(q)
	if err != nil {
		return nil, stageError(stageNormalize, err)
	}
	expr := n.Expression
	log := p.logger.With("entity", n.EntityName)

	x := newExecutor(p.source)
	rows, err := x.rows(ctx, expr)
	if err != nil {
		return nil, err
	}
	log.Debug("rows after join", "count", len(rows))

	if err := sortRows(rows, sortKeys(expr)); err != nil {
		return nil, err
	}

	var recs []*ir.Record
	if n.Aggregation != nil {
		all := withAllColumns(expr)
		flat := make([]*ir.Record, len(rows))
		for i, r := range rows {
			flat[i] = project(r, all)
		}
		if recs, err = aggregate.Apply(n.EntityName, flat, n.Aggregation); err != nil {
			return nil, stageError(stageAggregate, err)
		}
		log.Debug("rows after aggregate", "count", len(recs))
	} else {
		recs = make([]*ir.Record, len(rows))
		for i, r := range rows {
			recs[i] = project(r, expr)
		}
	}

	if expr.Distinct {
		if recs, err = distinct(recs); err != nil {
			return nil, err
		}
		log.Debug("rows after distinct", "count", len(recs))
	}

	recs = top(recs, expr.TopCount)
	total := len(recs)

	res := &Result{EntityName: n.EntityName, TotalRecordCount: TotalCountNotRequested}
	if expr.PageInfo != nil && expr.PageInfo.ReturnTotalRecordCount {
		res.TotalRecordCount = total
	}

	pg := resolvePage(expr.PageInfo, p.maxPageSize)
	res.Records = pg.slice(recs)
	res.MoreRecords = pg.moreRecords(total)
	if res.MoreRecords && len(res.Records) > 0 {
		first, last := res.Records[0], res.Records[len(res.Records)-1]
		res.PagingCookie = pagingCookie(pg.number, p.primaryKey(n.EntityName), first.ID, last.ID)
	}
	log.Debug("page", "number", pg.number, "size", pg.size, "returned", len(res.Records), "more", res.MoreRecords)

	f := newFormatter(p.catalog, expr)
	for _, rec := range res.Records {
		f.apply(rec)
	}
	return res, nil
}

func (p *Pipeline) primaryKey(entity string) string {
	if p.catalog != nil {
		if pk := p.catalog.PrimaryKey(entity); pk != "" {
			return pk
		}
	}
	return entity + "id"
}
