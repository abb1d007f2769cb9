package domain

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Validation errors for incoming events. Malformed events are dropped by
// the engine; they never abort processing for other tokens.
var (
	ErrMalformedEvent      = errors.New("malformed event")
	ErrTimestampRegression = errors.New("timestamp regression beyond tolerance")
	ErrNegativeAmount      = errors.New("negative amount")
)

// EventType discriminates the event union delivered by the upstream feed.
type EventType string

const (
	EventNewToken EventType = "NEW_TOKEN"
	EventTrade    EventType = "TRADE"
)

// Event is the discrete unit delivered by an EventIngestor. Exactly one of
// Token/Trade is set, selected by Type. The feed guarantees a token's
// NEW_TOKEN event precedes any of its TRADE events and per-token timestamps
// are non-decreasing; no cross-token ordering is guaranteed.
type Event struct {
	Type  EventType
	Token *Token
	Trade *Trade
}

// Validate checks structural validity of the event. It does not check
// per-token timestamp monotonicity; that requires engine state.
func (e *Event) Validate() error {
	switch e.Type {
	case EventNewToken:
		if e.Token == nil {
			return fmt.Errorf("%w: NEW_TOKEN without token payload", ErrMalformedEvent)
		}
		if err := ValidateAddress(e.Token.MintAddress); err != nil {
			return fmt.Errorf("%w: mint: %v", ErrMalformedEvent, err)
		}
		if e.Token.LaunchedAt <= 0 {
			return fmt.Errorf("%w: missing launch timestamp", ErrMalformedEvent)
		}
		return nil

	case EventTrade:
		if e.Trade == nil {
			return fmt.Errorf("%w: TRADE without trade payload", ErrMalformedEvent)
		}
		t := e.Trade
		if t.Signature == "" {
			return fmt.Errorf("%w: missing signature", ErrMalformedEvent)
		}
		if err := ValidateAddress(t.MintAddress); err != nil {
			return fmt.Errorf("%w: mint: %v", ErrMalformedEvent, err)
		}
		if err := ValidateAddress(t.WalletAddress); err != nil {
			return fmt.Errorf("%w: wallet: %v", ErrMalformedEvent, err)
		}
		if !t.Side.IsValid() {
			return fmt.Errorf("%w: invalid side %q", ErrMalformedEvent, t.Side)
		}
		if t.Timestamp <= 0 {
			return fmt.Errorf("%w: missing timestamp", ErrMalformedEvent)
		}
		if t.AmountSOL < 0 || t.TokenAmount < 0 {
			return fmt.Errorf("%w: sol=%f tokens=%f", ErrNegativeAmount, t.AmountSOL, t.TokenAmount)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown event type %q", ErrMalformedEvent, e.Type)
	}
}

// ValidateAddress checks that addr is a plausible Solana address:
// base58-decodable to 32 bytes.
func ValidateAddress(addr string) error {
	if len(addr) < 32 || len(addr) > 44 {
		return fmt.Errorf("address length %d out of range", len(addr))
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("decoded length %d, want 32", len(raw))
	}
	return nil
}
