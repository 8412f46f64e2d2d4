package detection

import (
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/models"
)

// BuildReport converts a linking result into its stored form. Clusters and
// their links keep the result's order.
func BuildReport(corpusID, runID string, params models.DetectionParams, res *duplink.Result) *models.DuplicateReport {
	report := &models.DuplicateReport{
		CorpusID:   corpusID,
		RunID:      runID,
		Status:     models.StatusCompleted,
		Params:     params,
		Documents:  len(res.Documents),
		TotalLinks: len(res.Links),
		Clusters:   make([]models.ClusterRecord, 0, len(res.Clusters)),
	}
	for _, c := range res.Clusters {
		cr := models.ClusterRecord{
			ClusterID:        c.ID,
			SourceDocumentID: c.Source.DocumentID(),
			CharStart:        c.Source.CharStart(),
			CharEnd:          c.Source.CharEnd(),
			Links:            make([]models.LinkRecord, 0, len(c.Links)),
		}
		for _, l := range c.Links {
			lr := models.LinkRecord{
				DocumentID: l.Dest.DocumentID(),
				CharStart:  l.Dest.CharStart(),
				CharEnd:    l.Dest.CharEnd(),
				Score:      l.Score,
				Overlap:    l.Overlap(),
				Diffs:      make([]models.DiffRecord, 0, len(l.Diffs)),
			}
			for _, d := range l.Diffs {
				lr.Diffs = append(lr.Diffs, models.DiffRecord{
					Kind:       string(d.Kind()),
					SourceText: d.Source.Raw(),
					DestText:   d.Dest.Raw(),
					Tokens:     d.Tokens,
				})
			}
			cr.Links = append(cr.Links, lr)
		}
		report.Clusters = append(report.Clusters, cr)
	}
	return report
}
