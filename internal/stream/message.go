package stream

import (
	"fmt"
	"strconv"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/models"
)

// StreamMessage is a stream entry with its string fields
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission reads a document submission from a stream entry. The
// corpusId, documentId and text fields are required; rank is optional.
func ParseSubmission(msg *StreamMessage) (*models.Submission, error) {
	sub := &models.Submission{
		CorpusID:   msg.Fields["corpusId"],
		DocumentID: msg.Fields["documentId"],
		Text:       msg.Fields["text"],
	}
	if sub.CorpusID == "" || sub.DocumentID == "" {
		return nil, fmt.Errorf("%w: message %s is missing corpusId or documentId", duplink.ErrConfig, msg.ID)
	}
	if _, ok := msg.Fields["text"]; !ok {
		return nil, fmt.Errorf("%w: message %s has no text field", duplink.ErrConfig, msg.ID)
	}
	if raw, ok := msg.Fields["rank"]; ok && raw != "" {
		rank, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: message %s has invalid rank %q", duplink.ErrConfig, msg.ID, raw)
		}
		sub.Rank = &rank
	}
	return sub, nil
}
