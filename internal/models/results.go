package models

import (
	"time"
)

type Step string

const (
	StepIdle       Step = "idle"
	StepInitiated  Step = "initiated"
	StepStarted    Step = "started"
	StepLoading    Step = "loading"
	StepLinking    Step = "linking"
	StepClustering Step = "clustering"
	StepCompleted  Step = "completed"
	StepFailed     Step = "failed"
)

// Valid reports whether s is a known step
func (s Step) Valid() bool {
	switch s {
	case StepIdle, StepInitiated, StepStarted, StepLoading, StepLinking,
		StepClustering, StepCompleted, StepFailed:
		return true
	}
	return false
}

// Report statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DetectionParams records the parameters a report was computed with
type DetectionParams struct {
	Gap       float64 `bson:"gap" json:"gap"`
	Penalty   float64 `bson:"penalty" json:"penalty"`
	MinScore  float64 `bson:"minScore" json:"minScore"`
	Tokenized bool    `bson:"tokenized" json:"tokenized"`
}

// DiffRecord is one difference between a duplicate and its source
type DiffRecord struct {
	Kind       string `bson:"kind" json:"kind"` // substitution, deletion, insertion
	SourceText string `bson:"sourceText" json:"sourceText"`
	DestText   string `bson:"destText" json:"destText"`
	Tokens     int    `bson:"tokens" json:"tokens"`
}

// LinkRecord is one duplicate passage of a later document
type LinkRecord struct {
	DocumentID string       `bson:"documentId" json:"documentId"`
	CharStart  int          `bson:"charStart" json:"charStart"`
	CharEnd    int          `bson:"charEnd" json:"charEnd"`
	Score      float64      `bson:"score" json:"score"`
	Overlap    float64      `bson:"overlap" json:"overlap"`
	Diffs      []DiffRecord `bson:"diffs" json:"diffs"`
}

// ClusterRecord groups the links copied from one source span
type ClusterRecord struct {
	ClusterID        string       `bson:"clusterId" json:"clusterId"`
	SourceDocumentID string       `bson:"sourceDocumentId" json:"sourceDocumentId"`
	CharStart        int          `bson:"charStart" json:"charStart"`
	CharEnd          int          `bson:"charEnd" json:"charEnd"`
	Links            []LinkRecord `bson:"links" json:"links"`
}

// DuplicateReport is the stored outcome of one detection run over a corpus
type DuplicateReport struct {
	CorpusID   string          `bson:"corpusId" json:"corpusId"`
	RunID      string          `bson:"runId" json:"runId"`
	Status     string          `bson:"status" json:"status"` // pending, completed, failed
	Error      string          `bson:"error,omitempty" json:"error,omitempty"`
	Params     DetectionParams `bson:"params" json:"params"`
	Documents  int             `bson:"documents" json:"documents"`
	TotalLinks int             `bson:"totalLinks" json:"totalLinks"`
	Clusters   []ClusterRecord `bson:"clusters" json:"clusters"`
	CreatedAt  time.Time       `bson:"createdAt" json:"createdAt"`
}

// ComputeRequest represents a request to compute duplicates for a corpus
type ComputeRequest struct {
	CorpusID string `json:"corpusId" binding:"required"`
}

// ComputeResponse represents the response from compute endpoint
type ComputeResponse struct {
	Step     Step   `json:"step"`
	CorpusID string `json:"corpusId"`
	RunID    string `json:"runId"`
}

// StatusResponse represents the current step of a corpus computation
type StatusResponse struct {
	CorpusID string `json:"corpusId"`
	Step     Step   `json:"step"`
}
