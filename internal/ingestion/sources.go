package ingestion

import (
	"context"
	"fmt"
	"sort"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/storage"
)

// EventIngestor delivers launch and trade events to the engine. A closed
// channel means the source is exhausted (replay) or permanently gone (live);
// the engine drains and returns either way.
type EventIngestor interface {
	// Subscribe starts delivery and returns the event channel. The channel
	// is closed when the source ends or ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan *domain.Event, error)
}

// ChannelIngestor adapts an externally fed channel into an EventIngestor.
// The upstream feed decoder publishes into it; tests drive the engine
// through it directly.
type ChannelIngestor struct {
	ch chan *domain.Event
}

// NewChannelIngestor creates a channel ingestor with the given buffer size.
func NewChannelIngestor(buffer int) *ChannelIngestor {
	if buffer <= 0 {
		buffer = 1024
	}
	return &ChannelIngestor{ch: make(chan *domain.Event, buffer)}
}

// Subscribe returns the event channel.
func (c *ChannelIngestor) Subscribe(ctx context.Context) (<-chan *domain.Event, error) {
	return c.ch, nil
}

// Publish delivers an event, blocking while the buffer is full.
// Returns ctx.Err() if the context is cancelled first.
func (c *ChannelIngestor) Publish(ctx context.Context, e *domain.Event) error {
	select {
	case c.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Buffered returns the number of events waiting in the channel.
func (c *ChannelIngestor) Buffered() int {
	return len(c.ch)
}

// Close ends the stream. Publish must not be called after Close.
func (c *ChannelIngestor) Close() {
	close(c.ch)
}

// ReplayIngestor re-emits persisted tokens and trades for a time range in
// timestamp order, so a fresh engine reproduces the original alert decisions
// deterministically.
type ReplayIngestor struct {
	tokenStore storage.TokenStore
	tradeStore storage.TradeStore
	fromMs     int64
	toMs       int64
}

// NewReplayIngestor creates a replay ingestor over [fromMs, toMs].
func NewReplayIngestor(tokens storage.TokenStore, trades storage.TradeStore, fromMs, toMs int64) *ReplayIngestor {
	return &ReplayIngestor{
		tokenStore: tokens,
		tradeStore: trades,
		fromMs:     fromMs,
		toMs:       toMs,
	}
}

// Subscribe loads the range up front, then streams it ordered by timestamp
// with each token's launch preceding its trades. The channel is closed when
// the range is exhausted.
func (r *ReplayIngestor) Subscribe(ctx context.Context) (<-chan *domain.Event, error) {
	tokens, err := r.tokenStore.GetLaunchedSince(ctx, r.fromMs)
	if err != nil {
		return nil, fmt.Errorf("load tokens for replay: %w", err)
	}

	var events []*domain.Event
	for _, tok := range tokens {
		if tok.LaunchedAt > r.toMs {
			continue
		}
		events = append(events, &domain.Event{Type: domain.EventNewToken, Token: tok})

		trades, err := r.tradeStore.GetByMintSince(ctx, tok.MintAddress, r.fromMs)
		if err != nil {
			return nil, fmt.Errorf("load trades for replay: mint %s: %w", tok.MintAddress, err)
		}
		for _, t := range trades {
			if t.Timestamp > r.toMs {
				continue
			}
			events = append(events, &domain.Event{Type: domain.EventTrade, Trade: t})
		}
	}

	// Stable sort keeps a token's launch ahead of trades sharing its
	// timestamp, since launches were appended first.
	sort.SliceStable(events, func(i, j int) bool {
		return eventTimestamp(events[i]) < eventTimestamp(events[j])
	})

	ch := make(chan *domain.Event)
	go func() {
		defer close(ch)
		for _, e := range events {
			select {
			case ch <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func eventTimestamp(e *domain.Event) int64 {
	if e.Type == domain.EventNewToken {
		return e.Token.LaunchedAt
	}
	return e.Trade.Timestamp
}
