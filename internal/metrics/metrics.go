package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame classes for FramesSent.
const (
	ClassCommand = "command"
	ClassPing    = "ping"
)

var (
	FramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xena_ws_frames_received_total",
		Help: "Text frames received from the venue.",
	}, []string{"client"})

	FramesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xena_ws_frames_sent_total",
		Help: "Text frames written to the venue, by class.",
	}, []string{"client", "class"})

	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xena_ws_decode_errors_total",
		Help: "Inbound frames that failed to decode, by reason.",
	}, []string{"client", "reason"})

	Disconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xena_ws_disconnects_total",
		Help: "Transport disconnects, by type.",
	}, []string{"client", "type"})

	InboundQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "xena_ws_inbound_queue_depth",
		Help: "Frames waiting to be decoded and dispatched.",
	}, []string{"client"})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xena_md_active_subscriptions",
		Help: "Market-data streams currently subscribed.",
	})

	HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xena_handler_duration_seconds",
		Help:    "Time spent dispatching one inbound message.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"client"})

	RecorderRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xena_recorder_rows_total",
		Help: "Market-data rows handled by the recorder, by result.",
	}, []string{"result"})
)
