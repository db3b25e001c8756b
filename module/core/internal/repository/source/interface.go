package source

import "github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"

// SnapshotHandler receives a full replacement snapshot on every change.
type SnapshotHandler func(snap domain.Snapshot)

// ErrorHandler receives a terminal subscription failure. No snapshot is
// delivered after it is called.
type ErrorHandler func(err error)

type PositionSource interface {
	Subscribe(entityID string, onSnapshot SnapshotHandler, onError ErrorHandler) (Subscription, error)
}

type Subscription interface {
	Unsubscribe() error
}
