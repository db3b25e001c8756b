package publisher

import (
	"context"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

// AlertSink delivers a one-shot alert. Delivery is fire-and-forget:
// implementations log and swallow failures, including an unauthorized
// channel, and never report them to the caller.
type AlertSink interface {
	Notify(ctx context.Context, alert domain.Alert)
}
