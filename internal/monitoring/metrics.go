package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GenerationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_generation_events_total",
			Help: "Content generation lifecycle events by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	DeleteCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_delete_commits_total",
			Help: "Confirmed deletes by target kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	WSMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_ws_messages_total",
			Help: "Websocket messages by type and direction",
		},
		[]string{"type", "direction"},
	)

	OpenViews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "study_open_views",
			Help: "Number of connected study views",
		},
	)

	initOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(GenerationEvents)
		prometheus.MustRegister(DeleteCommits)
		prometheus.MustRegister(WSMessages)
		prometheus.MustRegister(OpenViews)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
