package models

import "time"

// Submission represents a document submission from the Redis stream or the
// ingest endpoint
type Submission struct {
	CorpusID   string `json:"corpusId"`
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
	// Rank overrides the chronological rank derived from DocumentID
	Rank *int64 `json:"rank,omitempty"`
}

// Document represents a corpus document stored in MongoDB
type Document struct {
	CorpusID   string    `bson:"corpusId" json:"corpusId"`
	DocumentID string    `bson:"documentId" json:"documentId"`
	Rank       int64     `bson:"rank" json:"rank"`
	Text       string    `bson:"text" json:"text"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
