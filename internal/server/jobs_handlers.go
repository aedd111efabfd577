package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"facturas/internal/database"
	"facturas/internal/model"
)

// BatchRequest represents the request for submitting a batch of bills
type BatchRequest struct {
	Documents []model.DocumentRef `json:"documents" binding:"required"`
}

// JobResponse represents the job as seen by the polling client
type JobResponse struct {
	ID          string                    `json:"id"`
	Status      string                    `json:"status"`
	Documents   []model.DocumentRef       `json:"documents"`
	ReportKey   string                    `json:"reportKey,omitempty"`
	ErrorDetail string                    `json:"errorDetail,omitempty"`
	Stats       *model.SummaryStats       `json:"stats,omitempty"`
	Failures    []model.ProcessingFailure `json:"failures,omitempty"`
	CreatedAt   string                    `json:"createdAt"`
	UpdatedAt   string                    `json:"updatedAt"`
}

// CreateBatchHandler accepts a batch submission and creates its job
func (s *Server) CreateBatchHandler(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Documents) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one document is required"})
		return
	}
	if len(req.Documents) > s.config.Extract.MaxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("A batch may contain at most %d documents", s.config.Extract.MaxBatchSize),
		})
		return
	}

	job, err := s.jc.CreateBatchJob(c.Request.Context(), req.Documents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, convertJobToResponse(job))
}

// GetJobHandler returns a specific job by ID. Terminal jobs are served from
// the cache so a 2-second poll loop stops touching the ledger once settled.
func (s *Server) GetJobHandler(c *gin.Context) {
	jobID := c.Param("id")
	cacheKey := "job:" + jobID

	if cached, err := s.cache.Get(c.Request.Context(), cacheKey); err == nil {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	job, err := s.jc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job: " + err.Error()})
		return
	}

	response := convertJobToResponse(job)

	if job.Status.Terminal() {
		s.cacheJobResponse(c, cacheKey, response)
	}

	c.JSON(http.StatusOK, response)
}

// GetJobReportHandler streams the CSV artifact of a completed job
func (s *Server) GetJobReportHandler(c *gin.Context) {
	jobID := c.Param("id")

	job, err := s.jc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job: " + err.Error()})
		return
	}

	if job.Status != model.StatusCompleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report available for this job"})
		return
	}

	artifact, err := s.fileService.FetchFile(c.Request.Context(), job.ReportKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, jobID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", artifact)
}

// cacheJobResponse stores a terminal job payload in the poll cache
func (s *Server) cacheJobResponse(c *gin.Context, key string, response JobResponse) {
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	ttl := time.Duration(s.config.Extract.JobCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := s.cache.Set(c.Request.Context(), key, payload, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache job response")
	}
}

// convertJobToResponse converts a job model to the response format
func convertJobToResponse(job *model.Job) JobResponse {
	return JobResponse{
		ID:          job.ID.Hex(),
		Status:      string(job.Status),
		Documents:   job.Documents,
		ReportKey:   job.ReportKey,
		ErrorDetail: job.ErrorDetail,
		Stats:       job.Stats,
		Failures:    job.Failures,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   job.UpdatedAt.Format(time.RFC3339),
	}
}
