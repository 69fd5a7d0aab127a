// internal/notifications/metrics.go

package notifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total notifications created, by type",
	},
	[]string{"type"},
)

func recordCreated(t NotificationType) {
	notificationsCreatedTotal.WithLabelValues(string(t)).Inc()
}
