// Package events broadcasts inventory changes over NATS so dashboards and
// sync listeners can refresh without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) PublishItemChange(ctx context.Context, event domain.ItemChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := changeSubject(event.OrgID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func changeSubject(orgID string) string {
	return fmt.Sprintf("inventory.%s.changed", orgID)
}
