// Package report renders linking results as the record stream and the XML
// detail report.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/models"
)

// Header is the first line of the record stream.
const Header = "document_id duplicate_id char_start char_end overlap_per"

// WriteRecords writes the header, then for each cluster one source record
// ending in "*" followed by one record per member carrying its token overlap
// with two decimals.
func WriteRecords(w io.Writer, clusters []duplink.Cluster) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, c := range clusters {
		fmt.Fprintf(bw, "%s %s %d %d *\n",
			c.Source.DocumentID(), c.ID, c.Source.CharStart(), c.Source.CharEnd())
		for _, link := range c.Links {
			fmt.Fprintf(bw, "%s %s %d %d %.2f\n",
				link.Dest.DocumentID(), c.ID, link.Dest.CharStart(), link.Dest.CharEnd(), link.Overlap())
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}

// WriteReportRecords renders a stored report in the record stream format.
func WriteReportRecords(w io.Writer, r *models.DuplicateReport) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, c := range r.Clusters {
		fmt.Fprintf(bw, "%s %s %d %d *\n", c.SourceDocumentID, c.ClusterID, c.CharStart, c.CharEnd)
		for _, l := range c.Links {
			fmt.Fprintf(bw, "%s %s %d %d %.2f\n", l.DocumentID, c.ClusterID, l.CharStart, l.CharEnd, l.Overlap)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}
