// Package metrics exposes bot and spreadsheet counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m3rciful/tracker/internal/logger"
)

// Recorder records tracker metrics. A nil *Recorder discards everything.
type Recorder struct {
	updates        *prometheus.CounterVec
	messagesSent   prometheus.Counter
	handlerErrors  *prometheus.CounterVec
	entriesLogged  *prometheus.CounterVec
	rollovers      prometheus.Counter
	sheetsRequests *prometheus.CounterVec
	sheetsDuration *prometheus.HistogramVec
}

// NewRecorder registers the tracker collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		updates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_updates_total",
			Help: "Telegram updates received by kind",
		}, []string{"kind"}),
		messagesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "tracker_messages_sent_total",
			Help: "Messages sent or edited in reply to updates",
		}),
		handlerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_handler_errors_total",
			Help: "Conversation handler failures by handler",
		}, []string{"handler"}),
		entriesLogged: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_entries_logged_total",
			Help: "Entries written to spreadsheets by entry type",
		}, []string{"entry_type"}),
		rollovers: f.NewCounter(prometheus.CounterOpts{
			Name: "tracker_rollovers_total",
			Help: "Day blocks closed and reopened",
		}),
		sheetsRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_sheets_requests_total",
			Help: "Spreadsheet API calls by operation and status",
		}, []string{"op", "status"}),
		sheetsDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_sheets_request_duration_seconds",
			Help:    "Spreadsheet API call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

// UpdateReceived counts an inbound update of kind ("message", "callback").
func (r *Recorder) UpdateReceived(kind string) {
	if r == nil {
		return
	}
	r.updates.WithLabelValues(kind).Inc()
}

// MessagesSent adds n outbound messages.
func (r *Recorder) MessagesSent(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.messagesSent.Add(float64(n))
}

// HandlerError counts a failed conversation step.
func (r *Recorder) HandlerError(handler string) {
	if r == nil {
		return
	}
	r.handlerErrors.WithLabelValues(handler).Inc()
}

// EntryLogged counts a written entry.
func (r *Recorder) EntryLogged(entryType string) {
	if r == nil {
		return
	}
	r.entriesLogged.WithLabelValues(entryType).Inc()
}

// Rollover counts a day block change.
func (r *Recorder) Rollover() {
	if r == nil {
		return
	}
	r.rollovers.Inc()
}

// ObserveSheetsRequest records one spreadsheet API call.
func (r *Recorder) ObserveSheetsRequest(op string, err error, took time.Duration) {
	if r == nil {
		return
	}
	r.sheetsRequests.WithLabelValues(op, logger.Status(err)).Inc()
	r.sheetsDuration.WithLabelValues(op).Observe(took.Seconds())
}
