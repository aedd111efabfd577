package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobStatus represents the current state of a batch extraction job
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Terminal reports whether no further transitions are permitted from s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransition reports whether moving from s to next is a legal, monotonic
// step of the job lifecycle: pending -> processing -> {completed | error}.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusError
	default:
		return false
	}
}

// DocumentRef points at one uploaded bill in the document store
type DocumentRef struct {
	Name string `bson:"name" json:"name"`
	Key  string `bson:"key" json:"key"`
}

// ProcessingFailure records why a single document was excluded from the report
type ProcessingFailure struct {
	Document string `bson:"document" json:"document"`
	Reason   string `bson:"reason" json:"reason"`
}

// SummaryStats aggregates the successfully extracted records of a batch
type SummaryStats struct {
	FilesProcessed       int     `bson:"files_processed" json:"files_processed"`
	TotalConsumption     float64 `bson:"total_consumption" json:"total_consumption"`
	TotalAmount          float64 `bson:"total_amount" json:"total_amount"`
	AverageAmount        float64 `bson:"average_amount" json:"average_amount"`
	EarliestBillingStart string  `bson:"earliest_billing_start" json:"earliest_billing_start"`
	LatestBillingEnd     string  `bson:"latest_billing_end" json:"latest_billing_end"`
}

// Job represents one batch extraction run, polled by the client until terminal
type Job struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Status      JobStatus           `bson:"status" json:"status"`
	Documents   []DocumentRef       `bson:"documents" json:"documents"`
	ReportKey   string              `bson:"report_key,omitempty" json:"report_key,omitempty"`
	ErrorDetail string              `bson:"error_detail,omitempty" json:"error_detail,omitempty"`
	Stats       *SummaryStats       `bson:"stats,omitempty" json:"stats,omitempty"`
	Failures    []ProcessingFailure `bson:"failures,omitempty" json:"failures,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
