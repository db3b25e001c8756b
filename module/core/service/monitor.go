package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/metrics"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/publisher"
	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/internal/repository/source"
)

const (
	DefaultAlertTitle = "Elephant Out of Area!"
	DefaultAlertBody  = "Elephant %s has moved outside the defined area."
)

type MonitorConfig struct {
	Fence  domain.Geofence
	Policy InitialPolicy
	// AlertBody may hold one %s, replaced with the entity id.
	AlertTitle string
	AlertBody  string
}

func (c MonitorConfig) alertFor(entityID string, p domain.Position) domain.Alert {
	title := c.AlertTitle
	if title == "" {
		title = DefaultAlertTitle
	}
	body := c.AlertBody
	if body == "" {
		body = DefaultAlertBody
	}
	if strings.Contains(body, "%s") {
		body = fmt.Sprintf(body, entityID)
	}
	return domain.Alert{
		EntityID: entityID,
		Event:    domain.GeofenceExit,
		Title:    title,
		Body:     body,
		Position: p,
	}
}

// EntityMonitor evaluates the geofence for one entity. Snapshots from the
// source land in a single-slot mailbox where a newer snapshot replaces one
// not yet processed; one goroutine drains it, so evaluations never overlap.
type EntityMonitor struct {
	entityID string
	cfg      MonitorConfig
	source   source.PositionSource
	sink     publisher.AlertSink
	tracker  *Tracker

	offerMu sync.Mutex
	mailbox chan domain.Snapshot
	errCh   chan error

	viewMu sync.RWMutex
	view   domain.MonitorView

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	sub    source.Subscription
}

func NewEntityMonitor(entityID string, cfg MonitorConfig, src source.PositionSource, sink publisher.AlertSink) *EntityMonitor {
	return &EntityMonitor{
		entityID: entityID,
		cfg:      cfg,
		source:   src,
		sink:     sink,
		tracker:  NewTracker(entityID, cfg.Fence, cfg.Policy),
		mailbox:  make(chan domain.Snapshot, 1),
		errCh:    make(chan error, 1),
		view: domain.MonitorView{
			EntityID: entityID,
			Status:   domain.StatusLoading,
			History:  []domain.Position{},
			Inside:   true,
		},
	}
}

// Start subscribes to the position source and launches the consumer. A
// subscribe failure leaves the monitor in the error state.
func (m *EntityMonitor) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	sub, err := m.source.Subscribe(m.entityID, m.offer, m.fail)
	if err != nil {
		m.cancel()
		m.terminate(err)
		return fmt.Errorf("subscribe %s: %w", m.entityID, err)
	}
	m.sub = sub
	m.done = make(chan struct{})

	go m.run()
	return nil
}

// Stop cancels monitoring, waits for an in-flight evaluation and releases
// the subscription. No alert is raised for the entity once Stop returns.
func (m *EntityMonitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.done != nil {
		<-m.done
	}
}

// Done is closed when the consumer goroutine has exited.
func (m *EntityMonitor) Done() <-chan struct{} {
	if m.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return m.done
}

func (m *EntityMonitor) View() domain.MonitorView {
	m.viewMu.RLock()
	defer m.viewMu.RUnlock()
	v := m.view
	if v.Latest != nil {
		latest := *v.Latest
		v.Latest = &latest
	}
	return v
}

func (m *EntityMonitor) offer(snap domain.Snapshot) {
	if m.ctx.Err() != nil {
		return
	}
	m.offerMu.Lock()
	defer m.offerMu.Unlock()
	select {
	case <-m.mailbox:
	default:
	}
	m.mailbox <- snap
}

func (m *EntityMonitor) fail(err error) {
	select {
	case m.errCh <- err:
	default:
	}
}

func (m *EntityMonitor) run() {
	defer close(m.done)
	defer m.release()

	for {
		select {
		case <-m.ctx.Done():
			m.setStatus(domain.StatusStopped)
			return
		case err := <-m.errCh:
			m.terminate(err)
			m.cancel()
			return
		case snap := <-m.mailbox:
			if m.ctx.Err() != nil {
				m.setStatus(domain.StatusStopped)
				return
			}
			m.evaluate(snap)
		}
	}
}

func (m *EntityMonitor) evaluate(snap domain.Snapshot) {
	red, ok := ReduceSnapshot(snap)
	if red.Discarded > 0 {
		metrics.RecordsDiscarded.WithLabelValues(m.entityID).Add(float64(red.Discarded))
		slog.Debug("discarded malformed position records",
			"entity_id", m.entityID,
			"count", red.Discarded,
		)
	}
	if !ok {
		m.publish(red.History)
		return
	}

	event, exited := m.tracker.Observe(red.Latest)
	state := m.tracker.State()
	metrics.Evaluations.WithLabelValues(m.entityID).Inc()
	metrics.Inside.WithLabelValues(m.entityID).Set(metrics.BoolGauge(state.Inside))

	switch {
	case exited:
		metrics.Alerts.WithLabelValues(m.entityID).Inc()
		slog.Info("entity exited geofence",
			"entity_id", m.entityID,
			"latitude", red.Latest.Lat,
			"longitude", red.Latest.Lon,
			"timestamp", red.Latest.Timestamp,
		)
		m.sink.Notify(m.ctx, m.cfg.alertFor(m.entityID, red.Latest))
	case event == domain.GeofenceEntry:
		slog.Info("entity re-entered geofence", "entity_id", m.entityID)
	}

	m.publish(red.History)
}

func (m *EntityMonitor) publish(history []domain.Position) {
	state := m.tracker.State()

	m.viewMu.Lock()
	defer m.viewMu.Unlock()
	m.view.Status = domain.StatusReady
	m.view.Error = ""
	m.view.History = history
	m.view.Latest = state.Latest
	m.view.Inside = state.Inside
	m.view.Revision++
}

func (m *EntityMonitor) setStatus(status domain.MonitorStatus) {
	m.viewMu.Lock()
	defer m.viewMu.Unlock()
	if m.view.Status != domain.StatusError {
		m.view.Status = status
	}
}

func (m *EntityMonitor) terminate(err error) {
	msg := fmt.Sprintf("Failed to load movement data for %s: %v", m.entityID, err)
	metrics.MonitorErrors.WithLabelValues(m.entityID).Inc()
	slog.Error("monitoring stopped", "entity_id", m.entityID, "error", err)

	m.viewMu.Lock()
	defer m.viewMu.Unlock()
	m.view.Status = domain.StatusError
	m.view.Error = msg
}

func (m *EntityMonitor) release() {
	if m.sub == nil {
		return
	}
	if err := m.sub.Unsubscribe(); err != nil {
		slog.Warn("unsubscribe failed", "entity_id", m.entityID, "error", err)
	}
}
