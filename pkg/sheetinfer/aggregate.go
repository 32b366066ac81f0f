package sheetinfer

import (
	"sync"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

// UnitOutcome is what one unit pipeline hands to the aggregator: a result,
// or a failure, plus the schema when one was obtained.
type UnitOutcome struct {
	Unit    models.Unit
	Schema  *models.SchemaDefinition
	Result  *models.UnitResult
	Failure *models.UnitFailure
}

// Collector accumulates unit outcomes from concurrent pipelines. Each Add
// runs in one exclusive section, so no update is lost.
type Collector struct {
	mu     sync.Mutex
	result *models.OverallResult
}

// NewCollector returns an empty Collector for runID.
func NewCollector(runID string) *Collector {
	return &Collector{result: models.NewOverallResult(runID)}
}

// Add merges one outcome. A second outcome for a unit name already present
// fails with *DuplicateUnitError and leaves the collector unchanged.
func (c *Collector) Add(o UnitOutcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mergeInto(c.result, single(c.result.RunID, o))
}

// Result returns a snapshot of everything collected so far.
func (c *Collector) Result() *models.OverallResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := models.NewOverallResult(c.result.RunID)
	out.BookName = c.result.BookName
	_ = mergeInto(out, c.result)
	return out
}

func single(runID string, o UnitOutcome) *models.OverallResult {
	r := models.NewOverallResult(runID)
	if o.Schema != nil {
		r.Schemas[o.Unit.Name] = o.Schema
	}
	if o.Result != nil {
		r.Units[o.Unit.Name] = o.Result
	}
	if o.Failure != nil {
		r.Failures[o.Unit.Name] = o.Failure
	}
	return r
}

// Merge combines results into a new OverallResult. It is commutative and
// associative: units are keyed by name and never overwritten. A unit name
// reported by more than one input fails with *DuplicateUnitError.
func Merge(results ...*models.OverallResult) (*models.OverallResult, error) {
	out := models.NewOverallResult("")
	for _, r := range results {
		if r == nil {
			continue
		}
		if out.RunID == "" {
			out.RunID = r.RunID
		}
		if out.BookName == "" {
			out.BookName = r.BookName
		}
		if err := mergeInto(out, r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeInto adds src to dst. It checks every name before writing so a
// failed merge leaves dst untouched.
func mergeInto(dst, src *models.OverallResult) error {
	for name := range src.Units {
		if dst.Has(name) {
			return &DuplicateUnitError{Unit: name}
		}
	}
	for name := range src.Failures {
		if dst.Has(name) {
			return &DuplicateUnitError{Unit: name}
		}
		if _, ok := src.Units[name]; ok {
			return &DuplicateUnitError{Unit: name}
		}
	}
	for name := range src.Schemas {
		if _, ok := dst.Schemas[name]; ok {
			return &DuplicateUnitError{Unit: name}
		}
	}

	for name, u := range src.Units {
		dst.Units[name] = u
	}
	for name, f := range src.Failures {
		dst.Failures[name] = f
	}
	for name, s := range src.Schemas {
		dst.Schemas[name] = s
	}
	return nil
}
