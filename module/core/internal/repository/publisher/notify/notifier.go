package notify

import (
	"context"
	"log/slog"

	"github.com/nikoksr/notify"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/metrics"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher"
)

var _ publisher.AlertSink = (*AlertNotifier)(nil)

// AlertNotifier sends alerts to people through nikoksr/notify services.
// With no service configured the channel counts as unauthorized and alerts
// are dropped with a warning.
type AlertNotifier struct {
	notifier *notify.Notify
	enabled  bool
}

func NewAlertNotifier(services ...notify.Notifier) *AlertNotifier {
	n := notify.New()
	n.UseServices(services...)
	return &AlertNotifier{notifier: n, enabled: len(services) > 0}
}

func (a *AlertNotifier) Notify(ctx context.Context, alert domain.Alert) {
	if !a.enabled {
		slog.Warn("no notification service configured, alert not delivered",
			"entity_id", alert.EntityID,
			"title", alert.Title,
		)
		return
	}

	if err := a.notifier.Send(ctx, alert.Title, alert.Body); err != nil {
		metrics.SinkFailures.WithLabelValues("notify").Inc()
		slog.Error("send notification failed",
			"entity_id", alert.EntityID,
			"error", err,
		)
		return
	}

	slog.Info("notification sent",
		"entity_id", alert.EntityID,
		"title", alert.Title,
	)
}
