package sheetinfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/parser"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/validator"
)

// Pipeline runs schema inference, validator compilation and extraction for
// every unit of a workbook.
type Pipeline struct {
	opts      Options
	logger    *slog.Logger
	proposer  *Proposer
	extractor *Extractor
}

// New returns a Pipeline that sends completions to client.
func New(client completion.Client, opts Options) (*Pipeline, error) {
	logger := opts.logger()
	proposer, err := NewProposer(client, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		opts:      opts,
		logger:    logger,
		proposer:  proposer,
		extractor: NewExtractor(client, logger),
	}, nil
}

// LoadWorkbook reads the workbook at path into units, honoring
// Options.Consolidate and Options.PrintAreas.
func LoadWorkbook(path string, opts Options) (*models.Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	wb, err := parser.Load(path, opts.readOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return wb, nil
}

// LoadWorkbookReader reads an xlsx stream named bookName into units.
func LoadWorkbookReader(r io.Reader, bookName string, opts Options) (*models.Workbook, error) {
	wb, err := parser.LoadReader(r, bookName, opts.readOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return wb, nil
}

// Clean loads the workbook at path and runs the pipeline over its units.
func (p *Pipeline) Clean(ctx context.Context, path string) (*models.OverallResult, error) {
	wb, err := LoadWorkbook(path, p.opts)
	if err != nil {
		return nil, err
	}
	return p.RunWorkbook(ctx, wb)
}

// RunWorkbook runs the pipeline over an already loaded workbook.
func (p *Pipeline) RunWorkbook(ctx context.Context, wb *models.Workbook) (*models.OverallResult, error) {
	result, err := p.Run(ctx, wb.Units)
	if err != nil {
		return nil, err
	}
	result.BookName = wb.BookName
	return result, nil
}

// Run processes units concurrently and merges their outcomes. A failing
// unit is recorded in OverallResult.Failures and never stops the others.
// Two units with the same name fail the run with *DuplicateUnitError before
// any work starts.
func (p *Pipeline) Run(ctx context.Context, units []models.Unit) (*models.OverallResult, error) {
	if len(units) == 0 {
		return nil, ErrNoUnits
	}
	if err := checkUnique(units); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	collector := NewCollector(runID)

	logger.Info("run started", "units", len(units), "concurrency", p.opts.workerLimit(len(units)))

	var g errgroup.Group
	g.SetLimit(p.opts.workerLimit(len(units)))
	for _, unit := range units {
		g.Go(func() error {
			return collector.Add(p.processUnit(ctx, logger.With("unit", unit.Name), unit))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := collector.Result()
	logger.Info("run finished", "succeeded", len(result.Units), "failed", len(result.Failures))
	return result, nil
}

// ProposeSchemas runs only schema inference and compilation for every unit.
// Units whose schema fails are reported in the returned failures map.
func (p *Pipeline) ProposeSchemas(ctx context.Context, units []models.Unit) (map[string]*models.SchemaDefinition, map[string]*models.UnitFailure, error) {
	if len(units) == 0 {
		return nil, nil, ErrNoUnits
	}
	if err := checkUnique(units); err != nil {
		return nil, nil, err
	}

	collector := NewCollector(uuid.NewString())
	var g errgroup.Group
	g.SetLimit(p.opts.workerLimit(len(units)))
	for _, unit := range units {
		g.Go(func() error {
			schema, _, err := p.compileUnit(ctx, unit)
			if err != nil {
				return collector.Add(p.failed(p.logger.With("unit", unit.Name), unit, schema, err))
			}
			return collector.Add(UnitOutcome{Unit: unit, Schema: schema})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	result := collector.Result()
	return result.Schemas, result.Failures, nil
}

func checkUnique(units []models.Unit) error {
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		if seen[u.Name] {
			return &DuplicateUnitError{Unit: u.Name}
		}
		seen[u.Name] = true
	}
	return nil
}

func (p *Pipeline) compileUnit(ctx context.Context, unit models.Unit) (*models.SchemaDefinition, *validator.Validator, error) {
	schema, err := p.proposer.Propose(ctx, unit, p.opts.Background)
	if err != nil {
		return nil, nil, err
	}
	v, err := validator.Compile(schema)
	if err != nil {
		return schema, nil, err
	}
	return schema, v, nil
}

// processUnit runs one unit end to end. Errors are turned into a failure
// outcome here, at the unit boundary.
func (p *Pipeline) processUnit(ctx context.Context, logger *slog.Logger, unit models.Unit) UnitOutcome {
	schema, v, err := p.compileUnit(ctx, unit)
	if err != nil {
		return p.failed(logger, unit, schema, err)
	}

	extraction, err := p.extractor.Extract(ctx, unit, v, p.opts.Background)
	if err != nil {
		return p.failed(logger, unit, schema, err)
	}

	logger.Info("unit finished", "rows", len(extraction.Records), "rejected", len(extraction.Rejected))
	return UnitOutcome{
		Unit:   unit,
		Schema: schema,
		Result: &models.UnitResult{
			UnitName: unit.Name,
			Index:    unit.Index,
			Schema:   schema,
			Records:  extraction.Records,
			Rejected: extraction.Rejected,
		},
	}
}

func (p *Pipeline) failed(logger *slog.Logger, unit models.Unit, schema *models.SchemaDefinition, err error) UnitOutcome {
	stage := stageOf(err)
	logger.Error("unit failed", "stage", stage, "error", err)
	return UnitOutcome{
		Unit:   unit,
		Schema: schema,
		Failure: &models.UnitFailure{
			UnitName: unit.Name,
			Index:    unit.Index,
			Stage:    stage,
			Reason:   err.Error(),
		},
	}
}
