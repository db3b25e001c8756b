package publisher

import (
	"context"
	"testing"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

type countingSink struct {
	order *[]string
	name  string
}

func (s countingSink) Notify(_ context.Context, _ domain.Alert) {
	*s.order = append(*s.order, s.name)
}

func TestFanout(t *testing.T) {
	var order []string
	f := Fanout{
		countingSink{order: &order, name: "rabbitmq"},
		nil,
		countingSink{order: &order, name: "mail"},
	}

	f.Notify(context.Background(), domain.Alert{EntityID: "elephantId6"})

	if len(order) != 2 || order[0] != "rabbitmq" || order[1] != "mail" {
		t.Errorf("expected [rabbitmq mail], got %v", order)
	}
}
