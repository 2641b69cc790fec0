package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weeklyreport/weeklyreport/internal/report"
	"github.com/weeklyreport/weeklyreport/internal/sheet"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) string {
	return testNow.Add(-d).Format("01/02/2006 15:04:05")
}

func newEngine(t *testing.T, table *sheet.Memory, opts ...report.Option) *report.Engine {
	t.Helper()
	roster, err := report.NewRoster([]string{"A", "B", "C"})
	require.NoError(t, err)
	opts = append([]report.Option{
		report.WithClock(func() time.Time { return testNow }),
		report.WithLocation(time.UTC),
	}, opts...)
	return report.New(roster, table, opts...)
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func gaugeValue(mf *dto.MetricFamily) float64 {
	return mf.GetMetric()[0].GetGauge().GetValue()
}

// byLabel indexes a family's samples by the value of label.
func byLabel(mf *dto.MetricFamily, label string) map[string]*dto.Metric {
	out := make(map[string]*dto.Metric)
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label {
				out[lp.GetValue()] = m
			}
		}
	}
	return out
}

func TestCollector_Snapshot(t *testing.T) {
	table := &sheet.Memory{Rows: [][]string{
		{"Timestamp", "Email", "Name", "Report"},
		{ago(36 * time.Hour), "", "A", "done"},
		{ago(time.Hour), "", "C", "done"},
	}}
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(newEngine(t, table), time.Second))

	fams := gather(t, reg)
	assert.Equal(t, 1.0, gaugeValue(fams["weeklyreport_source_up"]))
	assert.Equal(t, 3.0, gaugeValue(fams["weeklyreport_members"]))
	assert.Equal(t, 2.0, gaugeValue(fams["weeklyreport_submitted"]))

	sub := byLabel(fams["weeklyreport_member_submitted"], "member")
	require.Len(t, sub, 3)
	assert.Equal(t, 1.0, sub["A"].GetGauge().GetValue())
	assert.Equal(t, 0.0, sub["B"].GetGauge().GetValue())
	assert.Equal(t, 1.0, sub["C"].GetGauge().GetValue())

	age := byLabel(fams["weeklyreport_member_report_age_days"], "member")
	require.Len(t, age, 2, "only submitted members carry an age")
	assert.InDelta(t, 1.5, age["A"].GetGauge().GetValue(), 1e-9)
	assert.NotContains(t, age, "B")
}

func TestCollector_SourceDown(t *testing.T) {
	table := &sheet.Memory{Err: errors.New("permission denied")}
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(newEngine(t, table), time.Second))

	fams := gather(t, reg)
	require.Len(t, fams, 1)
	assert.Equal(t, 0.0, gaugeValue(fams["weeklyreport_source_up"]))
}

func TestRecorder_CountsSkippedRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	table := &sheet.Memory{
		Rows: [][]string{
			{"Timestamp", "Email", "Name", "Report"},
			{ago(time.Hour), "", "A", "ok"},
			{"not a time", "", "B", "x"},
			{ago(time.Hour), "", "Z", "stranger"},
			{ago(8 * 24 * time.Hour), "", "C", "old"},
		},
		RowErrs: map[int]error{6: errors.New("quota")},
	}
	e := newEngine(t, table, report.WithScan(2, 7), report.WithSkipHook(rec.RowSkipped))
	_, err := e.Snapshot(t.Context())
	require.NoError(t, err)

	skipped := byLabel(gather(t, reg)["weeklyreport_rows_skipped_total"], "reason")
	want := map[string]float64{
		report.ReasonFetch:         1,
		report.ReasonEmpty:         1,
		report.ReasonTimestamp:     1,
		report.ReasonUnknownMember: 1,
		report.ReasonOutsideWindow: 1,
	}
	require.Len(t, skipped, len(want))
	for reason, v := range want {
		assert.Equal(t, v, skipped[reason].GetCounter().GetValue(), reason)
	}
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg).RowSkipped(&report.RowError{Row: 3, Reason: report.ReasonEmpty})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, "# TYPE weeklyreport_rows_skipped_total counter")
	assert.Contains(t, out, `weeklyreport_rows_skipped_total{reason="empty"} 1`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}
