package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weeklyreport/weeklyreport/internal/report"
)

const namespace = "weeklyreport"

// Source is the part of report.Engine the collector needs.
type Source interface {
	Snapshot(ctx context.Context) (*report.Snapshot, error)
	Members() []string
}

// Collector implements prometheus.Collector over a Source.
type Collector struct {
	src     Source
	timeout time.Duration

	members   *prometheus.Desc
	submitted *prometheus.Desc
	memberSub *prometheus.Desc
	memberAge *prometheus.Desc
	sourceUp  *prometheus.Desc
}

// NewCollector returns a Collector that gives each scrape at most timeout to
// read the sheet.
func NewCollector(src Source, timeout time.Duration) *Collector {
	return &Collector{
		src:     src,
		timeout: timeout,
		members: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "members"),
			"Number of members on the roster.", nil, nil),
		submitted: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "submitted"),
			"Number of members with a report inside the current window.", nil, nil),
		memberSub: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "member", "submitted"),
			"1 if the member submitted inside the current window, else 0.",
			[]string{"member"}, nil),
		memberAge: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "member", "report_age_days"),
			"Age in days of the member's counted report.",
			[]string{"member"}, nil),
		sourceUp: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "source_up"),
			"1 if the last scrape could read the sheet, else 0.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.members
	ch <- c.submitted
	ch <- c.memberSub
	ch <- c.memberAge
	ch <- c.sourceUp
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	snap, err := c.src.Snapshot(ctx)
	if err != nil {
		slog.Warn("metrics: snapshot failed", "err", err)
		ch <- prometheus.MustNewConstMetric(c.sourceUp, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.sourceUp, prometheus.GaugeValue, 1)

	st := snap.Stats()
	ch <- prometheus.MustNewConstMetric(c.members, prometheus.GaugeValue, float64(st.Total))
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.GaugeValue, float64(st.Submitted))

	for _, name := range c.src.Members() {
		rec, _ := snap.Record(name)
		v := 0.0
		if rec.Submitted {
			v = 1
			ch <- prometheus.MustNewConstMetric(c.memberAge, prometheus.GaugeValue,
				rec.Age.Seconds()/86400, name)
		}
		ch <- prometheus.MustNewConstMetric(c.memberSub, prometheus.GaugeValue, v, name)
	}
}
