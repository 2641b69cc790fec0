package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weeklyreport/weeklyreport/internal/report"
)

// Recorder counts discarded rows by reason.
type Recorder struct {
	skipped *prometheus.CounterVec
}

// NewRecorder registers the row counters with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		skipped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Total number of sheet rows that contributed no submission, by reason.",
		}, []string{"reason"}),
	}
	for _, reason := range []string{
		report.ReasonFetch,
		report.ReasonEmpty,
		report.ReasonTimestamp,
		report.ReasonUnknownMember,
		report.ReasonOutsideWindow,
	} {
		r.skipped.WithLabelValues(reason)
	}
	return r
}

// RowSkipped matches report.WithSkipHook.
func (r *Recorder) RowSkipped(re *report.RowError) {
	r.skipped.WithLabelValues(re.Reason).Inc()
}
