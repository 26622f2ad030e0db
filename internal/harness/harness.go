package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/fixture"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/metadata"
	"github.com/roach88/orgfake/internal/service"
	"github.com/roach88/orgfake/internal/store"
	"github.com/roach88/orgfake/internal/testutil"
)

// idPrefix marks ids the harness assigns to seed records without one.
const idPrefix = 0xffff

// Harness runs one scenario against its own service.
type Harness struct {
	service *service.Service
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Build the catalog from metadata and inline relationships
// 2. Seed records
// 3. Execute steps, checking expect clauses
//
// An error is returned when the scenario cannot be set up; step failures
// are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with step logging.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	catalog, err := buildCatalog(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	opts := []service.Option{
		service.WithCatalog(catalog),
		service.WithIDGenerator(testutil.NewSequentialIDGenerator(idPrefix)),
		service.WithClock(testutil.NewDeterministicClock()),
		service.WithLogger(logger),
	}
	if scenario.MaxRetrieveCount > 0 {
		opts = append(opts, service.WithMaxRetrieveCount(scenario.MaxRetrieveCount))
	}
	h := &Harness{service: service.New(st, opts...), logger: logger}
	defer h.service.Close()

	ctx := context.Background()

	records, err := fixture.BuildRecords(scenario.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to build records: %w", err)
	}
	if err := h.service.Initialize(ctx, records...); err != nil {
		return nil, fmt.Errorf("failed to seed records: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		outcome := h.execute(ctx, step)
		if outcome.Name == "" {
			outcome.Name = fmt.Sprintf("step-%d", i+1)
		}
		result.Steps = append(result.Steps, outcome)

		for _, msg := range CheckExpect(step.Expect, outcome) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, outcome.Name, msg))
		}

		h.logger.Info("step completed",
			"step", i,
			"kind", outcome.Kind,
			"records", len(outcome.Records),
			"error_code", string(outcome.ErrorCode),
		)
	}
	return result, nil
}

func buildCatalog(scenario *Scenario) (*metadata.Catalog, error) {
	catalog := metadata.NewCatalog()
	if scenario.Metadata != "" {
		loaded, errs := metadata.Load(scenario.Metadata)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to load metadata: %w", metadata.Join(errs))
		}
		catalog = loaded
	}
	for _, spec := range scenario.Relationships {
		if err := catalog.AddRelationship(spec.Relationship()); err != nil {
			return nil, fmt.Errorf("relationship %q: %w", spec.Name, err)
		}
	}
	return catalog, nil
}

func (h *Harness) execute(ctx context.Context, step Step) StepOutcome {
	outcome := StepOutcome{Name: step.Name, Kind: step.Kind()}

	var err error
	switch outcome.Kind {
	case KindQuery:
		err = h.query(ctx, step.Query, &outcome)
	case KindAssociate:
		err = h.relate(ctx, step.Associate, h.service.Associate)
	case KindDisassociate:
		err = h.relate(ctx, step.Disassociate, h.service.Disassociate)
	}

	if err != nil {
		outcome.ErrorCode = fault.CodeOf(err)
		outcome.Error = err.Error()
	}
	return outcome
}

func (h *Harness) query(ctx context.Context, spec *fixture.QuerySpec, outcome *StepOutcome) error {
	q, err := spec.Query()
	if err != nil {
		return fault.New(fault.CodeMalformedQuery, err.Error())
	}
	res, err := h.service.RetrieveMultiple(ctx, q)
	if err != nil {
		return err
	}
	outcome.EntityName = res.EntityName
	outcome.Records = res.Records
	outcome.MoreRecords = res.MoreRecords
	outcome.TotalRecordCount = res.TotalRecordCount
	outcome.PagingCookie = res.PagingCookie
	return nil
}

type relateFunc func(ctx context.Context, name string, source ir.EntityRef, targets ...ir.EntityRef) error

func (h *Harness) relate(ctx context.Context, spec *RelateSpec, fn relateFunc) error {
	source, err := spec.Source.Ref()
	if err != nil {
		return fault.New(fault.CodeInvalidArgument, err.Error())
	}
	targets := make([]ir.EntityRef, 0, len(spec.Targets))
	for _, t := range spec.Targets {
		ref, err := t.Ref()
		if err != nil {
			return fault.New(fault.CodeInvalidArgument, err.Error())
		}
		targets = append(targets, ref)
	}
	return fn(ctx, spec.Relationship, source, targets...)
}
