package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// Ensure Publisher implements the interface.
var _ driving.Publisher = (*Publisher)(nil)

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	// Floor is the minimum importance score that is delivered.
	Floor int

	// Channels resolves channel keys to external channel ids.
	Channels map[string]string

	// SendPacing is the pause between two channel sends of one item.
	SendPacing time.Duration

	Clock   Clock
	Sleeper Sleeper
}

// Publisher delivers items to their target channels.
type Publisher struct {
	sender   driven.Sender
	items    driven.ItemStore
	receipts driven.ReceiptStore
	cfg      PublisherConfig
}

// NewPublisher creates a publisher.
func NewPublisher(
	sender driven.Sender,
	items driven.ItemStore,
	receipts driven.ReceiptStore,
	cfg PublisherConfig,
) *Publisher {
	if cfg.Floor == 0 {
		cfg.Floor = domain.DefaultPublishFloor
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = SleepContext
	}
	if cfg.Channels == nil {
		cfg.Channels = map[string]string{}
	}
	return &Publisher{sender: sender, items: items, receipts: receipts, cfg: cfg}
}

// Floor returns the publish floor.
func (p *Publisher) Floor() int {
	return p.cfg.Floor
}

// FormatMessage renders the message for item at the current time.
func (p *Publisher) FormatMessage(item *domain.ContentItem) string {
	return FormatMessage(item, p.cfg.Clock())
}

// Publish sends item to every resolvable target channel.
// Items below the floor are left untouched and false is returned.
// If no channel accepted the item it is marked skipped and the returned
// error wraps domain.ErrNoDeliverableChannel.
// Once started, every channel is attempted even if ctx is cancelled.
func (p *Publisher) Publish(ctx context.Context, item *domain.ContentItem) (bool, error) {
	if item.ImportanceScore < p.cfg.Floor {
		logger.Debug("publisher: item %s below floor (%d < %d)", item.ID, item.ImportanceScore, p.cfg.Floor)
		return false, nil
	}
	if item.Status.IsTerminal() {
		return item.Status == domain.ItemPublished, nil
	}

	work := context.WithoutCancel(ctx)
	text := p.FormatMessage(item)
	attempted, sent := 0, 0

	for _, channel := range item.TargetChannels {
		id, ok := p.cfg.Channels[channel]
		if !ok || id == "" {
			logger.Warn("publisher: channel %s has no configured id, skipping", channel)
			continue
		}
		if attempted > 0 {
			if err := p.cfg.Sleeper(work, p.cfg.SendPacing); err != nil {
				logger.Warn("publisher: pacing interrupted: %v", err)
			}
		}
		attempted++

		receipt := &domain.DeliveryReceipt{
			ItemID:      item.ID,
			Channel:     channel,
			AttemptedAt: p.cfg.Clock(),
		}
		extID, err := p.sender.Send(work, id, text)
		if err != nil {
			sendErr := &domain.SendError{Channel: channel, Cause: err}
			logger.Warn("publisher: %v", sendErr)
			receipt.Error = sendErr.Error()
		} else {
			receipt.Sent = true
			receipt.ExternalMessageID = extID
			sent++
			logger.Info("publisher: item %s sent to %s", item.ID, channel)
		}

		if err := p.receipts.Append(work, receipt); err != nil {
			return false, domain.WrapStorage("append receipt", err)
		}
	}

	if sent > 0 {
		now := p.cfg.Clock()
		if err := p.items.UpdateStatus(work, item.ID, domain.ItemPublished, now); err != nil {
			return false, domain.WrapStorage("mark published", err)
		}
		item.Status = domain.ItemPublished
		item.PublishedAt = now
		return true, nil
	}

	if err := p.items.UpdateStatus(work, item.ID, domain.ItemSkipped, time.Time{}); err != nil {
		return false, domain.WrapStorage("mark skipped", err)
	}
	item.Status = domain.ItemSkipped
	return false, fmt.Errorf("publish item %s (%d attempted): %w", item.ID, attempted, domain.ErrNoDeliverableChannel)
}

// PublishPending publishes stored ready items, oldest first.
// Cancellation is honoured between items; remaining items stay ready.
func (p *Publisher) PublishPending(ctx context.Context, limit int) (int, error) {
	items, err := p.items.ListByStatus(ctx, domain.ItemReady, limit)
	if err != nil {
		return 0, domain.WrapStorage("list ready items", err)
	}

	published := 0
	for i := range items {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		ok, err := p.Publish(ctx, &items[i])
		if err != nil {
			if domain.IsFatal(err) {
				return published, err
			}
			logger.Warn("publisher: %v", err)
			continue
		}
		if ok {
			published++
		}
	}
	return published, nil
}
