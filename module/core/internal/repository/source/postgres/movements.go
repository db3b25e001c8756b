package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	store "github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/database/postgres"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
)

var _ source.PositionSource = (*MovementSource)(nil)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
)

type snapshotLoader interface {
	LoadSnapshot(ctx context.Context, entityID string) (domain.Snapshot, error)
}

// MovementSource pushes snapshots out of the position store. Each
// subscription LISTENs on the store's notify channel and reloads the
// entity's full snapshot on every matching notification.
type MovementSource struct {
	dsn    string
	loader snapshotLoader
}

func NewMovementSource(dsn string, loader snapshotLoader) *MovementSource {
	return &MovementSource{dsn: dsn, loader: loader}
}

func (s *MovementSource) Subscribe(entityID string, onSnapshot source.SnapshotHandler, onError source.ErrorHandler) (source.Subscription, error) {
	listener := pq.NewListener(s.dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("postgres listener event", "entity_id", entityID, "event", ev, "error", err)
		}
	})
	if err := listener.Listen(store.NotifyChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", store.NotifyChannel, err)
	}

	sub := newSubscription(entityID, s.loader, listener.Notify, onSnapshot, onError, listener.Close)
	go sub.run()
	return sub, nil
}

type subscription struct {
	entityID      string
	loader        snapshotLoader
	notifications <-chan *pq.Notification
	onSnapshot    source.SnapshotHandler
	onError       source.ErrorHandler
	closeFn       func() error

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newSubscription(
	entityID string,
	loader snapshotLoader,
	notifications <-chan *pq.Notification,
	onSnapshot source.SnapshotHandler,
	onError source.ErrorHandler,
	closeFn func() error,
) *subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &subscription{
		entityID:      entityID,
		loader:        loader,
		notifications: notifications,
		onSnapshot:    onSnapshot,
		onError:       onError,
		closeFn:       closeFn,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (s *subscription) run() {
	if !s.reload() {
		return
	}
	for {
		select {
		case <-s.ctx.Done():
			return
		case n, ok := <-s.notifications:
			if !ok {
				return
			}
			// nil is sent after a reconnect; changes may have been missed
			if n != nil && n.Extra != s.entityID {
				continue
			}
			if !s.reload() {
				return
			}
		}
	}
}

func (s *subscription) reload() bool {
	snap, err := s.loader.LoadSnapshot(s.ctx, s.entityID)
	if s.ctx.Err() != nil {
		return false
	}
	if err != nil {
		s.onError(fmt.Errorf("load snapshot: %w", err))
		return false
	}
	s.onSnapshot(snap)
	return true
}

func (s *subscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		if s.closeFn != nil {
			err = s.closeFn()
		}
	})
	return err
}
