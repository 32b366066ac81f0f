package sheetinfer

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/validator"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrNoUnits indicates there was nothing to process.
var ErrNoUnits = errors.New("no units to process")

// Schema compilation failures, raised by validator.Compile.
type (
	SchemaTypeError      = validator.SchemaTypeError
	SchemaIntegrityError = validator.SchemaIntegrityError
	RecordError          = validator.RecordError
)

// SchemaInferenceError reports that no usable schema could be obtained for
// a unit.
type SchemaInferenceError struct {
	Unit string
	Err  error
}

func (e *SchemaInferenceError) Error() string {
	return fmt.Sprintf("schema inference failed for unit %q: %v", e.Unit, e.Err)
}

func (e *SchemaInferenceError) Unwrap() error {
	return e.Err
}

// NewSchemaInferenceError creates a new SchemaInferenceError.
func NewSchemaInferenceError(unit string, err error) *SchemaInferenceError {
	return &SchemaInferenceError{Unit: unit, Err: err}
}

// ExtractionError reports that records could not be extracted for a unit.
type ExtractionError struct {
	Unit string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for unit %q: %v", e.Unit, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(unit string, err error) *ExtractionError {
	return &ExtractionError{Unit: unit, Err: err}
}

// DuplicateUnitError reports two units sharing one name. It is fatal to the
// run.
type DuplicateUnitError struct {
	Unit string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("duplicate unit %q", e.Unit)
}

// stageOf maps a unit-level error to the pipeline stage it came from.
func stageOf(err error) string {
	var (
		inference *SchemaInferenceError
		typeErr   *SchemaTypeError
		integrity *SchemaIntegrityError
	)
	switch {
	case errors.As(err, &inference):
		return models.StageSchemaInference
	case errors.As(err, &typeErr), errors.As(err, &integrity):
		return models.StageSchemaCompile
	}
	return models.StageExtraction
}
