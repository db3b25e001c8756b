package publisher

import (
	"context"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

var _ AlertSink = Fanout(nil)

// Fanout delivers every alert to each sink in order.
type Fanout []AlertSink

func (f Fanout) Notify(ctx context.Context, alert domain.Alert) {
	for _, s := range f {
		if s != nil {
			s.Notify(ctx, alert)
		}
	}
}
