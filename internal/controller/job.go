package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"facturas/internal/aws"
	"facturas/internal/config"
	"facturas/internal/database"
	"facturas/internal/model"
	"facturas/internal/processor"
	"facturas/internal/rabbitmq"
	"facturas/internal/report"
)

// JobController handles batch extraction job operations
type JobController interface {
	// CreateBatchJob creates a new job for the given documents and enqueues
	// it for processing
	CreateBatchJob(ctx context.Context, documents []model.DocumentRef) (*model.Job, error)

	// GetJob returns a job by its hex ID
	GetJob(ctx context.Context, jobID string) (*model.Job, error)

	// ProcessJobs starts consuming and processing enqueued jobs
	ProcessJobs(ctx context.Context) error

	// StopProcessing stops the job consumer
	StopProcessing()
}

// jobController implements JobController
type jobController struct {
	db            database.JobLedger
	rabbitClient  rabbitmq.Client
	rabbitConfig  config.RabbitMQConfig
	extractConfig config.ExtractConfig
	coordinator   *processor.BatchCoordinator
	store         aws.FileService
	consumerTag   string
	shutdown      chan struct{}
	wg            sync.WaitGroup
}

// NewJobController creates a new job controller
func NewJobController(db database.JobLedger, rabbitClient rabbitmq.Client,
	rabbitConfig config.RabbitMQConfig, extractConfig config.ExtractConfig,
	coordinator *processor.BatchCoordinator, store aws.FileService) JobController {
	return &jobController{
		db:            db,
		rabbitClient:  rabbitClient,
		rabbitConfig:  rabbitConfig,
		extractConfig: extractConfig,
		coordinator:   coordinator,
		store:         store,
		shutdown:      make(chan struct{}),
	}
}

// CreateBatchJob creates a new job and enqueues it
func (c *jobController) CreateBatchJob(ctx context.Context, documents []model.DocumentRef) (*model.Job, error) {
	// The upload layer enforces the batch bound before we ever see it, but
	// the assertion is cheap.
	if len(documents) == 0 {
		return nil, fmt.Errorf("batch contains no documents")
	}
	if len(documents) > c.extractConfig.MaxBatchSize {
		return nil, fmt.Errorf("batch exceeds the %d document limit", c.extractConfig.MaxBatchSize)
	}

	job, err := c.db.CreateJob(ctx, documents)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := c.enqueueJob(job); err != nil {
		// Fail the job record so a poller is not left hanging on pending
		if failErr := c.db.FailJob(ctx, job.ID.Hex(), "failed to enqueue batch"); failErr != nil {
			log.Error().Err(failErr).Str("jobId", job.ID.Hex()).Msg("Failed to mark unenqueued job as failed")
		}
		return job, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Info().
		Str("jobId", job.ID.Hex()).
		Int("documents", len(documents)).
		Msg("Job created and enqueued")

	return job, nil
}

// GetJob returns one job by ID
func (c *jobController) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	return c.db.GetJobByID(ctx, jobID)
}

// enqueueJob publishes a job reference to RabbitMQ
func (c *jobController) enqueueJob(job *model.Job) error {
	headers := amqp.Table{
		"job_id": job.ID.Hex(),
	}

	// ID-only message; the full job lives in the ledger
	message := map[string]string{
		"job_id": job.ID.Hex(),
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = c.rabbitClient.Publish(
		c.rabbitConfig.ExchangeName,
		c.rabbitConfig.QueueName, // Using queue name as routing key
		messageBytes,
		headers,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// ProcessJobs starts consuming jobs from RabbitMQ
func (c *jobController) ProcessJobs(ctx context.Context) error {
	queueName := c.rabbitConfig.QueueName

	// Ensure the exchange exists
	err := c.rabbitClient.DeclareExchange(c.rabbitConfig.ExchangeName, "direct")
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Ensure the queue exists
	queue, err := c.rabbitClient.DeclareQueue(queueName)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	// Bind the queue to the exchange
	err = c.rabbitClient.BindQueue(queueName, c.rabbitConfig.ExchangeName, queueName)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queueName, err)
	}

	c.consumerTag = fmt.Sprintf("batch-consumer-%s", primitive.NewObjectID().Hex())
	c.startConsumer(ctx, queue.Name, c.consumerTag)

	log.Info().Str("queue", queue.Name).Msg("Job processing started")
	return nil
}

// StopProcessing stops the job consumer
func (c *jobController) StopProcessing() {
	close(c.shutdown)
	c.wg.Wait()
	log.Info().Msg("Job processing stopped")
}

// startConsumer starts a consumer for the jobs queue
func (c *jobController) startConsumer(ctx context.Context, queueName, consumerTag string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		log.Info().
			Str("queue", queueName).
			Str("consumerTag", consumerTag).
			Msg("Starting job consumer")

		for {
			select {
			case <-ctx.Done():
				log.Info().Str("consumerTag", consumerTag).Msg("Context cancelled, stopping consumer")
				return
			case <-c.shutdown:
				log.Info().Str("consumerTag", consumerTag).Msg("Shutdown signal received, stopping consumer")
				return
			default:
				// Continue processing
			}

			deliveries, err := c.rabbitClient.Consume(queueName, consumerTag)
			if err != nil {
				log.Error().
					Err(err).
					Str("queue", queueName).
					Msg("Failed to consume from queue")

				time.Sleep(5 * time.Second)
				continue
			}

			for delivery := range deliveries {
				c.processDelivery(ctx, delivery)
			}

			log.Warn().
				Str("queue", queueName).
				Str("consumerTag", consumerTag).
				Msg("Consumer channel closed, reconnecting...")

			time.Sleep(5 * time.Second)
		}
	}()
}

// processDelivery handles a single delivery
func (c *jobController) processDelivery(ctx context.Context, delivery amqp.Delivery) {
	jobID, ok := delivery.Headers["job_id"].(string)
	if !ok {
		log.Error().Msg("Message missing job_id header, rejecting")
		delivery.Nack(false, false) // Don't requeue malformed messages
		return
	}

	logger := log.With().Str("jobId", jobID).Logger()
	logger.Info().Msg("Processing batch job")

	job, err := c.db.GetJobByID(ctx, jobID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve job from ledger")
		delivery.Nack(false, false)
		return
	}

	if job.Status.Terminal() {
		// Redelivered message for a settled job; the terminal state stands
		logger.Warn().Str("status", string(job.Status)).Msg("Job already terminal, dropping message")
		delivery.Ack(false)
		return
	}

	if err := c.db.MarkProcessing(ctx, jobID); err != nil {
		logger.Error().Err(err).Msg("Failed to mark job as processing")
		delivery.Nack(false, false)
		return
	}

	c.runBatch(ctx, job)

	// Terminal state is written either way; the message is done
	delivery.Ack(false)
}

// runBatch executes the batch and performs exactly one terminal ledger write
func (c *jobController) runBatch(ctx context.Context, job *model.Job) {
	jobID := job.ID.Hex()
	logger := log.With().Str("jobId", jobID).Logger()

	outcome, err := c.coordinator.Run(ctx, job.Documents)
	if err != nil {
		detail := err.Error()
		if !errors.Is(err, processor.ErrNoValidData) {
			detail = fmt.Sprintf("batch processing failed: %v", err)
		}
		if failErr := c.db.FailJob(ctx, jobID, detail); failErr != nil {
			logger.Error().Err(failErr).Msg("Failed to write terminal error state")
		}
		logger.Info().Str("detail", detail).Msg("Batch finished without usable data")
		return
	}

	artifact := report.Write(outcome.Records)
	reportKey := fmt.Sprintf("%s/%s.csv", c.extractConfig.ReportPrefix, jobID)

	if _, err := c.store.UploadFile(ctx, reportKey, bytes.NewReader(artifact)); err != nil {
		// Without the artifact there is nothing to deliver; the whole
		// batch fails even though extraction succeeded.
		if failErr := c.db.FailJob(ctx, jobID, fmt.Sprintf("report upload failed: %v", err)); failErr != nil {
			logger.Error().Err(failErr).Msg("Failed to write terminal error state")
		}
		return
	}

	if err := c.db.CompleteJob(ctx, jobID, reportKey, outcome.Stats, outcome.Failures); err != nil {
		logger.Error().Err(err).Msg("Failed to write terminal completed state")
		return
	}

	logger.Info().
		Str("reportKey", reportKey).
		Int("records", len(outcome.Records)).
		Int("failures", len(outcome.Failures)).
		Msg("Batch job completed")
}
