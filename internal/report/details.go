package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/text"
)

// WriteDetails writes the XML detail report: a <Documents> root holding one
// <Document document_id="..."> per document with its full text, each linked
// destination wrapped in a <Duplicate> element naming its source span.
// links must be ordered by destination document and start, as Linker.Link
// returns them.
func WriteDetails(w io.Writer, docs []*text.Document, links []*duplink.Link) error {
	byDoc := make(map[*text.Document][]*duplink.Link)
	for _, l := range links {
		byDoc[l.Dest.Doc] = append(byDoc[l.Dest.Doc], l)
	}

	enc := xml.NewEncoder(w)
	root := xml.StartElement{Name: xml.Name{Local: "Documents"}}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("writing details: %w", err)
	}
	if err := enc.EncodeToken(xml.CharData("\n")); err != nil {
		return fmt.Errorf("writing details: %w", err)
	}
	for _, doc := range docs {
		if err := writeDocument(enc, doc, byDoc[doc]); err != nil {
			return fmt.Errorf("writing details for %s: %w", doc.ID, err)
		}
		if err := enc.EncodeToken(xml.CharData("\n")); err != nil {
			return fmt.Errorf("writing details: %w", err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("writing details: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("writing details: %w", err)
	}
	return nil
}

func writeDocument(enc *xml.Encoder, doc *text.Document, links []*duplink.Link) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "Document"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "document_id"}, Value: doc.ID}},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	pos := 0
	for _, l := range links {
		from, to := l.Dest.CharStart(), l.Dest.CharEnd()
		if from > pos {
			if err := enc.EncodeToken(xml.CharData(doc.Slice(pos, from))); err != nil {
				return err
			}
		}
		dup := xml.StartElement{
			Name: xml.Name{Local: "Duplicate"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "source-document_id"}, Value: l.Source.DocumentID()},
				{Name: xml.Name{Local: "source-char_start"}, Value: strconv.Itoa(l.Source.CharStart())},
				{Name: xml.Name{Local: "source-char_end"}, Value: strconv.Itoa(l.Source.CharEnd())},
			},
		}
		if err := enc.EncodeToken(dup); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(doc.Slice(from, to))); err != nil {
			return err
		}
		if err := enc.EncodeToken(dup.End()); err != nil {
			return err
		}
		pos = to
	}
	if rest := doc.Slice(pos, doc.RuneLen()); rest != "" {
		if err := enc.EncodeToken(xml.CharData(rest)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
