package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/duplink/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "duplicate_reports"

type ReportsRepository struct {
	mongoRepo *MongoRepository
}

func NewReportsRepository(mongoRepo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{
		mongoRepo: mongoRepo,
	}
}

// SaveReport inserts a report or replaces the stored report of the same run
func (r *ReportsRepository) SaveReport(ctx context.Context, report *models.DuplicateReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	filter := bson.M{"corpusId": report.CorpusID, "runId": report.RunID}
	opts := options.Replace().SetUpsert(true)

	if err := r.mongoRepo.ReplaceOne(ctx, reportsCollection, filter, report, opts); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetLatestReportByCorpusID returns the newest report of a corpus, or nil
// when none exists
func (r *ReportsRepository) GetLatestReportByCorpusID(ctx context.Context, corpusID string) (*models.DuplicateReport, error) {
	filter := bson.M{"corpusId": corpusID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report models.DuplicateReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

// EnsureIndexes creates the unique run key and the latest-report index
func (r *ReportsRepository) EnsureIndexes(ctx context.Context) error {
	if err := r.mongoRepo.EnsureIndex(ctx, reportsCollection,
		bson.D{{Key: "corpusId", Value: 1}, {Key: "runId", Value: 1}}, true); err != nil {
		return err
	}
	return r.mongoRepo.EnsureIndex(ctx, reportsCollection,
		bson.D{{Key: "corpusId", Value: 1}, {Key: "createdAt", Value: -1}}, false)
}
