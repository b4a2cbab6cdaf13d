// Package csvmetrics counts decoded and encoded records and codec diagnostics
// with Prometheus collectors.
package csvmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oleg578/linecsv"
)

const namespace = "linecsv"

// Direction label values for RecordsTotal.
const (
	DirectionDecode = "decode"
	DirectionEncode = "encode"
)

// Recorder holds the codec metrics. It implements linecsv.DiagnosticSink so
// it can be attached directly to a Reader or a record mapper.
type Recorder struct {
	DiagnosticsTotal *prometheus.CounterVec
	RecordsTotal     *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Total number of non-fatal CSV diagnostics by kind",
			},
			[]string{"kind"},
		),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total number of CSV records decoded or encoded",
			},
			[]string{"direction"},
		),
	}
	if reg == nil {
		return r, nil
	}
	for _, c := range []prometheus.Collector{r.DiagnosticsTotal, r.RecordsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Report counts d under its kind.
func (r *Recorder) Report(d linecsv.Diagnostic) {
	r.DiagnosticsTotal.WithLabelValues(d.Kind.String()).Inc()
}

// RecordsDecoded adds n to the decode counter.
func (r *Recorder) RecordsDecoded(n int) {
	r.RecordsTotal.WithLabelValues(DirectionDecode).Add(float64(n))
}

// RecordsEncoded adds n to the encode counter.
func (r *Recorder) RecordsEncoded(n int) {
	r.RecordsTotal.WithLabelValues(DirectionEncode).Add(float64(n))
}
