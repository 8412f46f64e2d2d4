// Package ingest validates submitted documents and stores them in their
// corpus.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/duplink/internal/corpus"
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/models"
	"github.com/rs/zerolog/log"
)

// DocumentSaver stores corpus documents
type DocumentSaver interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
}

type Service struct {
	docs DocumentSaver
	now  func() time.Time
}

func NewService(docs DocumentSaver) *Service {
	return &Service{
		docs: docs,
		now:  time.Now,
	}
}

// Normalize checks a submission and converts it to a stored document. The
// rank is taken from the submission when set and parsed from the document
// ID otherwise.
func Normalize(submission *models.Submission) (*models.Document, error) {
	corpusID := strings.TrimSpace(submission.CorpusID)
	if corpusID == "" {
		return nil, fmt.Errorf("%w: corpusId is required", duplink.ErrConfig)
	}
	documentID := strings.TrimSpace(submission.DocumentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: documentId is required", duplink.ErrConfig)
	}

	var rank int64
	if submission.Rank != nil {
		rank = *submission.Rank
	} else {
		_, parsed, err := corpus.RankFromName(documentID)
		if err != nil {
			return nil, err
		}
		rank = parsed
	}

	return &models.Document{
		CorpusID:   corpusID,
		DocumentID: documentID,
		Rank:       rank,
		Text:       submission.Text,
	}, nil
}

// processes a submission by validating it and storing the document
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.Submission) error {
	doc, err := Normalize(submission)
	if err != nil {
		return err
	}
	doc.CreatedAt = s.now()

	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	log.Debug().
		Str("corpusId", doc.CorpusID).
		Str("documentId", doc.DocumentID).
		Int64("rank", doc.Rank).
		Msg("Document stored")
	return nil
}
