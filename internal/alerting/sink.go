// Package alerting owns alert emission: the per-token tier gate that
// guarantees at-most-once per (mint, tier), and the sinks alerts are
// delivered to.
package alerting

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// AlertSink receives emitted alerts. Implementations must be safe for
// concurrent use.
type AlertSink interface {
	Record(ctx context.Context, alert *domain.AlertRecord) error
}

// StoreSink persists alerts to an AlertStore. A duplicate key from the store
// is treated as success: the gate already guarantees single emission per
// process, so a duplicate means another process (or a restart) got there
// first.
type StoreSink struct {
	store storage.AlertStore
}

// NewStoreSink creates a sink backed by an alert store.
func NewStoreSink(store storage.AlertStore) *StoreSink {
	return &StoreSink{store: store}
}

// Record persists the alert.
func (s *StoreSink) Record(ctx context.Context, alert *domain.AlertRecord) error {
	err := s.store.Insert(ctx, alert)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	return err
}

// MultiSink fans out to several sinks. Every sink is attempted; the first
// error is returned after all have run.
type MultiSink struct {
	sinks []AlertSink
	log   *logrus.Entry
}

// NewMultiSink creates a fan-out sink.
func NewMultiSink(logger *logrus.Logger, sinks ...AlertSink) *MultiSink {
	return &MultiSink{
		sinks: sinks,
		log:   logger.WithField("component", "alert_sink"),
	}
}

// Record delivers the alert to all sinks.
func (m *MultiSink) Record(ctx context.Context, alert *domain.AlertRecord) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Record(ctx, alert); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"mint": alert.MintAddress,
				"tier": alert.Tier.String(),
			}).Error("alert sink delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

var (
	_ AlertSink = (*StoreSink)(nil)
	_ AlertSink = (*MultiSink)(nil)
)
