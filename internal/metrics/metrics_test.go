package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/duplink/internal/align"
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/text"
)

func TestObserverCounts(t *testing.T) {
	doc := text.NewDocument("1", 1, "a b", []text.Token{{Raw: "a", Start: 0, End: 1}, {Raw: "b", Start: 2, End: 3}})
	link := &duplink.Link{Source: doc.Span(0, 1), Dest: doc.Span(1, 2)}

	skipped := testutil.ToFloat64(PairCount.WithLabelValues("skipped"))
	aligned := testutil.ToFloat64(PairCount.WithLabelValues("aligned"))
	empty := testutil.ToFloat64(PairCount.WithLabelValues("no_alignment"))
	links := testutil.ToFloat64(LinkCount)
	inserts := testutil.ToFloat64(DiffCount.WithLabelValues("insertion"))

	var o Observer
	o.PairSkipped(doc.Whole(), doc.Whole())
	o.PairAligned(doc.Whole(), doc.Whole(), 2)
	o.PairAligned(doc.Whole(), doc.Whole(), 0)
	o.AlignmentFound(link, align.Alignment{})
	o.DiffEmitted(link, duplink.Diff{Dest: doc.Span(1, 2), Tokens: 1})

	assert.Equal(t, skipped+1, testutil.ToFloat64(PairCount.WithLabelValues("skipped")))
	assert.Equal(t, aligned+1, testutil.ToFloat64(PairCount.WithLabelValues("aligned")))
	assert.Equal(t, empty+1, testutil.ToFloat64(PairCount.WithLabelValues("no_alignment")))
	assert.Equal(t, links+1, testutil.ToFloat64(LinkCount))
	assert.Equal(t, inserts+1, testutil.ToFloat64(DiffCount.WithLabelValues("insertion")))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(RequestCount.WithLabelValues("GET", "/health", "200"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(RequestCount.WithLabelValues("GET", "/health", "200")))
}

func TestInitPrometheusTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		InitPrometheus()
		InitPrometheus()
	})
	ObserveDetection("completed", 10*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(DetectionCount.WithLabelValues("completed")), 1.0)
}
