package config

import (
	"sync/atomic"
	"time"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/motion"
)

// Provider hands out the current immutable Config snapshot. Readers never
// lock; Replace swaps the whole snapshot atomically.
type Provider struct {
	current atomic.Pointer[Config]
}

// NewProvider creates a provider around an initial config.
func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(cfg)
	return p
}

// Current returns the live snapshot. Callers must not mutate it.
func (p *Provider) Current() *Config {
	return p.current.Load()
}

// Replace validates and swaps in a new snapshot. An invalid config is
// rejected and the previous snapshot stays live.
func (p *Provider) Replace(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.current.Store(cfg)
	return nil
}

// Threshold accessors, read per evaluation so a Replace applies to the next
// evaluation without restarting the pipeline.

func (p *Provider) Tier0Thresholds() motion.Tier0Thresholds {
	return p.Current().Tier0
}

func (p *Provider) Tier1Thresholds() motion.Tier1Thresholds {
	return p.Current().Tier1
}

func (p *Provider) Tier1MinAge() time.Duration {
	return p.Current().Tier1MinAge()
}

// WalletThresholds maps the wallet config into the domain type.
func (p *Provider) WalletThresholds() domain.WalletThresholds {
	c := p.Current()
	return domain.WalletThresholds{
		MinTrades:      c.Wallets.MinTrades,
		MinWinRate:     c.Wallets.MinWinRate,
		MinTotalPnLSOL: c.Wallets.MinTotalPnLSOL,
	}
}
