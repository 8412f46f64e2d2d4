package detection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/duplink/internal/config"
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/metrics"
	"github.com/RishiKendai/duplink/internal/models"
	"github.com/RishiKendai/duplink/internal/text"
	"github.com/RishiKendai/duplink/internal/tokenize"
	"github.com/rs/zerolog/log"
)

// ErrNoDocuments is returned when a corpus has no stored documents
var ErrNoDocuments = errors.New("no documents found for corpus")

// DocumentStore loads corpus documents
type DocumentStore interface {
	GetDocumentsByCorpusID(ctx context.Context, corpusID string) ([]*models.Document, error)
}

// ReportStore persists duplicate reports
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.DuplicateReport) error
}

// Service runs duplicate detection over stored corpora
type Service struct {
	docs    DocumentStore
	reports ReportStore
	status  StatusStore
	cfg     config.DetectionConfig
}

func NewService(docs DocumentStore, reports ReportStore, status StatusStore, cfg config.DetectionConfig) *Service {
	return &Service{
		docs:    docs,
		reports: reports,
		status:  status,
		cfg:     cfg,
	}
}

func (s *Service) params() models.DetectionParams {
	return models.DetectionParams{
		Gap:       s.cfg.Gap,
		Penalty:   s.cfg.Penalty,
		MinScore:  s.cfg.MinScore,
		Tokenized: s.cfg.Tokenized,
	}
}

func (s *Service) step(ctx context.Context, corpusID string, step models.Step) {
	if err := UpdateStatus(ctx, s.status, corpusID, step); err != nil {
		log.Warn().Err(err).Str("corpusId", corpusID).Str("step", string(step)).Msg("Failed to update status")
	}
}

// Compute links the documents of a corpus and stores the resulting report.
// A pending report is stored first; on failure it is replaced by a failed
// report carrying the error.
func (s *Service) Compute(ctx context.Context, corpusID, runID string) (*models.DuplicateReport, error) {
	start := time.Now()
	s.step(ctx, corpusID, models.StepStarted)

	pending := &models.DuplicateReport{
		CorpusID:  corpusID,
		RunID:     runID,
		Status:    models.StatusPending,
		Params:    s.params(),
		Clusters:  []models.ClusterRecord{},
		CreatedAt: start,
	}
	if err := s.reports.SaveReport(ctx, pending); err != nil {
		log.Error().Err(err).Str("corpusId", corpusID).Msg("Failed to create pending report")
	}

	report, err := s.compute(ctx, corpusID, runID)
	if err != nil {
		metrics.ObserveDetection(models.StatusFailed, time.Since(start))
		s.fail(ctx, pending, err)
		return nil, err
	}
	report.CreatedAt = start

	if err := s.reports.SaveReport(ctx, report); err != nil {
		metrics.ObserveDetection(models.StatusFailed, time.Since(start))
		s.fail(ctx, pending, err)
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	metrics.ObserveDetection(models.StatusCompleted, time.Since(start))
	s.step(ctx, corpusID, models.StepCompleted)

	log.Info().
		Str("corpusId", corpusID).
		Str("runId", runID).
		Int("documents", report.Documents).
		Int("clusters", len(report.Clusters)).
		Int("links", report.TotalLinks).
		Dur("elapsed", time.Since(start)).
		Msg("Computation completed successfully")

	return report, nil
}

func (s *Service) compute(ctx context.Context, corpusID, runID string) (*models.DuplicateReport, error) {
	s.step(ctx, corpusID, models.StepLoading)
	docs, err := s.load(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	s.step(ctx, corpusID, models.StepLinking)
	opts := s.cfg.Options()
	opts.Observer = duplink.Observers{
		metrics.Observer{},
		duplink.NewLogObserver(log.With().Str("corpusId", corpusID).Logger()),
	}
	linker, err := duplink.New(opts)
	if err != nil {
		return nil, err
	}
	res, err := linker.Link(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to link corpus %s: %w", corpusID, err)
	}

	s.step(ctx, corpusID, models.StepClustering)
	return BuildReport(corpusID, runID, s.params(), res), nil
}

func (s *Service) load(ctx context.Context, corpusID string) ([]*text.Document, error) {
	stored, err := s.docs.GetDocumentsByCorpusID(ctx, corpusID)
	if err != nil {
		log.Error().Err(err).Str("corpusId", corpusID).Msg("Failed to load documents")
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, corpusID)
	}

	tok := tokenize.ForCorpus(s.cfg.Tokenized)
	docs := make([]*text.Document, 0, len(stored))
	for _, d := range stored {
		docs = append(docs, tokenize.Document(tok, d.DocumentID, d.Rank, d.Text))
	}
	return docs, nil
}

func (s *Service) fail(ctx context.Context, pending *models.DuplicateReport, cause error) {
	log.Error().Err(cause).
		Str("corpusId", pending.CorpusID).
		Str("code", string(duplink.Classify(cause))).
		Msg("Computation failed")

	failed := *pending
	failed.Status = models.StatusFailed
	failed.Error = cause.Error()
	// the run context may be the reason for the failure
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.reports.SaveReport(saveCtx, &failed); err != nil {
		log.Error().Err(err).Str("corpusId", pending.CorpusID).Msg("Failed to update failed report")
	}
	s.step(saveCtx, pending.CorpusID, models.StepFailed)
}

// ComputationJob runs one detection on the worker pool
type ComputationJob struct {
	Service  *Service
	CorpusID string
	RunID    string
	Timeout  time.Duration
	// OnDone is called after the run finishes, successfully or not
	OnDone func()
}

// Execute executes the computation job
func (j *ComputationJob) Execute(ctx context.Context) error {
	if j.OnDone != nil {
		defer j.OnDone()
	}
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	_, err := j.Service.Compute(ctx, j.CorpusID, j.RunID)
	return err
}
