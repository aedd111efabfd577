package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"facturas/internal/model"
)

// ErrJobNotFound is returned when no job matches the given ID
var ErrJobNotFound = errors.New("job not found")

// ErrInvalidTransition is returned when a status write would violate the job
// lifecycle, including any attempt to move a job out of a terminal state
var ErrInvalidTransition = errors.New("job is not in a state that permits this transition")

// JobLedger defines the job record operations. Terminal writes are
// conditional single-document updates, so the state flag, report key, stats
// and failures land together and a poller can never observe a half-written
// terminal job. A terminal state is never overwritten.
type JobLedger interface {
	// CreateJob inserts a new pending job for the given documents
	CreateJob(ctx context.Context, documents []model.DocumentRef) (*model.Job, error)

	// GetJobByID retrieves a job by its hex ID
	GetJobByID(ctx context.Context, id string) (*model.Job, error)

	// MarkProcessing transitions pending -> processing
	MarkProcessing(ctx context.Context, id string) error

	// CompleteJob performs the terminal completed transition with the
	// artifact key, stats and per-document failure detail attached
	CompleteJob(ctx context.Context, id string, reportKey string, stats model.SummaryStats, failures []model.ProcessingFailure) error

	// FailJob performs the terminal error transition with a detail string
	FailJob(ctx context.Context, id string, detail string) error
}

// CreateJob creates a new pending job in the ledger
func (m *mongoDB) CreateJob(ctx context.Context, documents []model.DocumentRef) (*model.Job, error) {
	now := time.Now()
	job := &model.Job{
		ID:        primitive.NewObjectID(),
		Status:    model.StatusPending,
		Documents: documents,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := m.jobsCol.InsertOne(ctx, job)
	if err != nil {
		log.Error().Err(err).Str("jobID", job.ID.Hex()).Msg("Failed to create job")
		return nil, err
	}

	log.Debug().Str("jobID", job.ID.Hex()).Int("documents", len(documents)).Msg("Created new job")
	return job, nil
}

// GetJobByID retrieves a job by its ID
func (m *mongoDB) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrJobNotFound
	}

	var job model.Job
	err = m.jobsCol.FindOne(ctx, bson.M{"_id": objectID}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrJobNotFound
		}
		log.Error().Err(err).Str("jobID", id).Msg("Failed to get job")
		return nil, err
	}

	return &job, nil
}

// MarkProcessing transitions a pending job to processing
func (m *mongoDB) MarkProcessing(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{
			"status":     model.StatusProcessing,
			"updated_at": time.Now(),
		},
	}

	return m.conditionalUpdate(ctx, id, bson.M{"status": model.StatusPending}, update, model.StatusProcessing)
}

// CompleteJob performs the single terminal write for a successful batch
func (m *mongoDB) CompleteJob(ctx context.Context, id string, reportKey string, stats model.SummaryStats, failures []model.ProcessingFailure) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":       model.StatusCompleted,
			"report_key":   reportKey,
			"stats":        stats,
			"failures":     failures,
			"updated_at":   now,
			"completed_at": now,
		},
	}

	return m.conditionalUpdate(ctx, id, bson.M{"status": model.StatusProcessing}, update, model.StatusCompleted)
}

// FailJob performs the single terminal write for a failed batch
func (m *mongoDB) FailJob(ctx context.Context, id string, detail string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"status":       model.StatusError,
			"error_detail": detail,
			"updated_at":   now,
			"completed_at": now,
		},
	}

	// A job that never got dispatched can also fail, e.g. when enqueueing
	// the batch breaks right after creation.
	filter := bson.M{"status": bson.M{"$in": []model.JobStatus{model.StatusPending, model.StatusProcessing}}}
	return m.conditionalUpdate(ctx, id, filter, update, model.StatusError)
}

// conditionalUpdate applies update only when the job is in an expected
// pre-state. MatchedCount distinguishes "gone" from "already terminal".
func (m *mongoDB) conditionalUpdate(ctx context.Context, id string, statusFilter bson.M, update bson.M, next model.JobStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrJobNotFound
	}

	filter := bson.M{"_id": objectID}
	for k, v := range statusFilter {
		filter[k] = v
	}

	result, err := m.jobsCol.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("jobID", id).Str("status", string(next)).Msg("Failed to update job status")
		return err
	}

	if result.MatchedCount == 0 {
		count, countErr := m.jobsCol.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr == nil && count == 0 {
			return ErrJobNotFound
		}
		log.Warn().Str("jobID", id).Str("status", string(next)).Msg("Refused job status transition")
		return ErrInvalidTransition
	}

	log.Debug().Str("jobID", id).Str("status", string(next)).Msg("Updated job status")
	return nil
}
