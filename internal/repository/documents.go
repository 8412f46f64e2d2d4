package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/duplink/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "corpus_documents"

type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

// SaveDocument inserts a document or replaces the stored document with the
// same corpusId and documentId
func (r *DocumentsRepository) SaveDocument(ctx context.Context, doc *models.Document) error {
	doc.CreatedAt = time.Now()
	filter := bson.M{"corpusId": doc.CorpusID, "documentId": doc.DocumentID}
	opts := options.Replace().SetUpsert(true)

	if err := r.mongoRepo.ReplaceOne(ctx, documentsCollection, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetDocumentsByCorpusID returns the documents of a corpus, oldest first
func (r *DocumentsRepository) GetDocumentsByCorpusID(ctx context.Context, corpusID string) ([]*models.Document, error) {
	filter := bson.M{"corpusId": corpusID}
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentsRepository) CountDocumentsByCorpusID(ctx context.Context, corpusID string) (int64, error) {
	filter := bson.M{"corpusId": corpusID}

	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

// EnsureIndexes creates the unique document key and the rank order index
func (r *DocumentsRepository) EnsureIndexes(ctx context.Context) error {
	if err := r.mongoRepo.EnsureIndex(ctx, documentsCollection,
		bson.D{{Key: "corpusId", Value: 1}, {Key: "documentId", Value: 1}}, true); err != nil {
		return err
	}
	return r.mongoRepo.EnsureIndex(ctx, documentsCollection,
		bson.D{{Key: "corpusId", Value: 1}, {Key: "rank", Value: 1}}, false)
}
