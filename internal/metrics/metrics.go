// Package metrics implements Prometheus metrics for the RTDE session.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DataPackagesReceivedTotal counts data packages decoded from the controller.
	DataPackagesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtde_data_packages_received_total",
			Help: "Total number of data packages received and decoded",
		},
	)

	// DataPackagesSentTotal counts input data packages written to the controller.
	DataPackagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtde_data_packages_sent_total",
			Help: "Total number of input data packages sent",
		},
	)

	// FramesSkippedTotal counts frames consumed without being delivered,
	// by wire command name (stale data packages, tolerated unknown types).
	FramesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtde_frames_skipped_total",
			Help: "Total number of frames consumed transparently",
		},
		[]string{"command"},
	)

	// ControllerMessagesTotal counts text messages received, by severity.
	ControllerMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtde_controller_messages_total",
			Help: "Total number of controller text messages received",
		},
		[]string{"level"},
	)

	// SessionFailuresTotal counts errors that rendered the session unusable.
	SessionFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtde_session_failures_total",
			Help: "Total number of unrecoverable session failures",
		},
	)

	// SessionState reports the current connection state (0=disconnected,
	// 1=connected, 2=negotiated, 3=recipes_set, 4=streaming, 5=paused).
	SessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtde_session_state",
			Help: "Current session state",
		},
	)
)
