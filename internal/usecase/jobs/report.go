package jobs

import (
	"time"

	"github.com/kailas-cloud/pkgdex/internal/metrics"
)

// Job names used in logs and metrics.
const (
	JobEmbeddings = "embeddings"
	JobIndex      = "index"
)

// DefaultPageSize is the number of records read per store round trip.
const DefaultPageSize = 200

// Report summarizes one job run.
type Report struct {
	Processed  int   `json:"processed"`
	Failed     int   `json:"failed"`
	Skipped    int   `json:"skipped"`
	Deleted    int   `json:"deleted,omitempty"`
	DurationMs int64 `json:"durationMs"`
}

// Progress is called after every record with the running count and the
// expected total. total may be 0 when unknown.
type Progress func(done, total int)

func (p Progress) report(done, total int) {
	if p != nil {
		p(done, total)
	}
}

func (r *Report) finish(job string, start time.Time) {
	elapsed := time.Since(start)
	r.DurationMs = elapsed.Milliseconds()
	metrics.SyncDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	metrics.SyncRecordsTotal.WithLabelValues(job, "processed").Add(float64(r.Processed))
	metrics.SyncRecordsTotal.WithLabelValues(job, "failed").Add(float64(r.Failed))
	metrics.SyncRecordsTotal.WithLabelValues(job, "skipped").Add(float64(r.Skipped))
}
