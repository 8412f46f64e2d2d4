package report

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/text"
	"github.com/RishiKendai/duplink/internal/tokenize"
)

func linkCorpus(t *testing.T) *duplink.Result {
	t.Helper()
	docs := []*text.Document{
		tokenize.Document(tokenize.Word(), "1", 1, "one two three four five"),
		tokenize.Document(tokenize.Word(), "2", 2, "zero one two three four five six"),
		tokenize.Document(tokenize.Word(), "3", 3, "one two three four five & more"),
	}
	l, err := duplink.New(duplink.Options{Gap: -5, Penalty: -10, MinScore: 3})
	require.NoError(t, err)
	res, err := l.Link(context.Background(), docs)
	require.NoError(t, err)
	return res
}

func TestWriteRecords(t *testing.T) {
	res := linkCorpus(t)
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, res.Clusters))

	id := duplink.ClusterID("1:0-23")
	want := strings.Join([]string{
		Header,
		"1 " + id + " 0 23 *",
		"2 " + id + " 5 28 100.00",
		"3 " + id + " 0 23 100.00",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))
	assert.Equal(t, Header+"\n", buf.String())
}

func TestWriteDetails(t *testing.T) {
	res := linkCorpus(t)
	var buf bytes.Buffer
	require.NoError(t, WriteDetails(&buf, res.Documents, res.Links))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<Documents>\n"))
	assert.Contains(t, out, `<Document document_id="1">one two three four five</Document>`)
	assert.Contains(t, out, `<Document document_id="2">zero <Duplicate source-document_id="1" source-char_start="0" source-char_end="23">one two three four five</Duplicate> six</Document>`)
	assert.Contains(t, out, `</Duplicate> &amp; more</Document>`)

	// the report must stay well formed
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.EqualError(t, err, "EOF")
			break
		}
	}
}
