package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RishiKendai/duplink/internal/config"
	"github.com/RishiKendai/duplink/internal/detection"
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/models"
	"github.com/RishiKendai/duplink/internal/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DocumentCounter reports how many documents a corpus holds
type DocumentCounter interface {
	CountDocumentsByCorpusID(ctx context.Context, corpusID string) (int64, error)
}

// ReportReader loads the latest stored report of a corpus
type ReportReader interface {
	GetLatestReportByCorpusID(ctx context.Context, corpusID string) (*models.DuplicateReport, error)
}

// JobSubmitter queues background jobs
type JobSubmitter interface {
	Submit(job detection.Job) error
}

// Ingester stores a submitted document
type Ingester interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission) error
}

// Handler holds dependencies for handlers
type Handler struct {
	docs           DocumentCounter
	reports        ReportReader
	detector       *detection.Service
	pool           JobSubmitter
	status         detection.StatusStore
	ingest         Ingester
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
	newRunID       func() string
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	docs DocumentCounter,
	reports ReportReader,
	detector *detection.Service,
	pool JobSubmitter,
	status detection.StatusStore,
	ingest Ingester,
) *Handler {
	return &Handler{
		docs:           docs,
		reports:        reports,
		detector:       detector,
		pool:           pool,
		status:         status,
		ingest:         ingest,
		computeSem:     make(chan struct{}, max(1, cfg.MaxConcurrentCompute)),
		computeTimeout: cfg.ComputationTimeout,
		newRunID:       func() string { return uuid.NewString() },
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Compute queues a detection run for a corpus and answers 202 right away
func (h *Handler) Compute(c *gin.Context) {
	var req models.ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	corpusID := strings.TrimSpace(req.CorpusID)
	if corpusID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "corpusId is required",
			Code:  "INVALID_CORPUS_ID",
		})
		return
	}

	ctx := c.Request.Context()
	count, err := h.docs.CountDocumentsByCorpusID(ctx, corpusID)
	if err != nil {
		log.Error().Err(err).Str("corpusId", corpusID).Msg("Failed to count documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to check corpus",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "No documents found for corpusId",
			Code:  "CORPUS_NOT_FOUND",
		})
		return
	}

	step, err := detection.GetStatus(ctx, h.status, corpusID)
	if err != nil {
		log.Warn().Err(err).Str("corpusId", corpusID).Msg("Failed to read computation status")
	}
	if running(step) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: fmt.Sprintf("Computation already %s", step),
			Code:  "COMPUTATION_IN_PROGRESS",
		})
		return
	}

	select {
	case h.computeSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	runID := h.newRunID()
	job := &detection.ComputationJob{
		Service:  h.detector,
		CorpusID: corpusID,
		RunID:    runID,
		Timeout:  h.computeTimeout,
		OnDone:   func() { <-h.computeSem },
	}
	if err := h.pool.Submit(job); err != nil {
		<-h.computeSem
		log.Error().Err(err).Str("corpusId", corpusID).Msg("Failed to queue computation")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Computation queue unavailable",
			Code:  "UNAVAILABLE",
		})
		return
	}

	if err := detection.UpdateStatus(ctx, h.status, corpusID, models.StepInitiated); err != nil {
		log.Warn().Err(err).Str("corpusId", corpusID).Msg("Failed to update initiated status")
	}

	c.JSON(http.StatusAccepted, models.ComputeResponse{
		Step:     models.StepInitiated,
		CorpusID: corpusID,
		RunID:    runID,
	})
}

func running(step models.Step) bool {
	switch step {
	case models.StepInitiated, models.StepStarted, models.StepLoading, models.StepLinking, models.StepClustering:
		return true
	}
	return false
}

// Status returns the current computation step of a corpus
func (h *Handler) Status(c *gin.Context) {
	corpusID := c.Param("corpusId")
	step, err := detection.GetStatus(c.Request.Context(), h.status, corpusID)
	if err != nil {
		log.Error().Err(err).Str("corpusId", corpusID).Msg("Failed to read status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{CorpusID: corpusID, Step: step})
}

// Report returns the latest report of a corpus as JSON, or as the record
// stream with ?format=records
func (h *Handler) Report(c *gin.Context) {
	corpusID := c.Param("corpusId")
	rep, err := h.reports.GetLatestReportByCorpusID(c.Request.Context(), corpusID)
	if err != nil {
		log.Error().Err(err).Str("corpusId", corpusID).Msg("Failed to load report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load report",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No report found for corpusId",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, rep)
	case "records":
		var buf bytes.Buffer
		if err := report.WriteReportRecords(&buf, rep); err != nil {
			_ = c.Error(err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "format must be json or records",
			Code:  "INVALID_FORMAT",
		})
	}
}

type addDocumentRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Text       string `json:"text"`
	Rank       *int64 `json:"rank"`
}

// AddDocument stores one document in a corpus
func (h *Handler) AddDocument(c *gin.Context) {
	var req addDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	sub := &models.Submission{
		CorpusID:   c.Param("corpusId"),
		DocumentID: req.DocumentID,
		Text:       req.Text,
		Rank:       req.Rank,
	}
	if err := h.ingest.ProcessSubmission(c.Request.Context(), sub); err != nil {
		if errors.Is(err, duplink.ErrConfig) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_DOCUMENT",
			})
			return
		}
		log.Error().Err(err).Str("corpusId", sub.CorpusID).Msg("Failed to store document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to store document",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"corpusId":   sub.CorpusID,
		"documentId": sub.DocumentID,
	})
}
