package processor

import (
	"facturas/internal/model"
)

// Result is the outcome of processing a single document: exactly one of the
// two arms is set. Consumers must handle both; there is no third state.
type Result struct {
	Record  *model.ExtractedRecord
	Failure *model.ProcessingFailure
}

// Succeeded reports whether the document produced a record
func (r Result) Succeeded() bool {
	return r.Record != nil
}

// SuccessResult wraps an extracted record
func SuccessResult(record model.ExtractedRecord) Result {
	return Result{Record: &record}
}

// FailureResult wraps the reason a document was excluded
func FailureResult(document, reason string) Result {
	return Result{Failure: &model.ProcessingFailure{Document: document, Reason: reason}}
}
