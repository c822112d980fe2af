package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Poller fetches stats on a fixed interval and forwards every successful
// snapshot to its callback. Failures are swallowed: they are logged at debug
// level and the previous numbers stand until the next tick. The poller is
// independent of the chat connection and keeps running while it is down.
type Poller struct {
	client   *Client
	interval time.Duration
	onStats  func(Stats)
	logger   zerolog.Logger
}

// NewPoller creates a poller calling onStats after each successful fetch.
func NewPoller(client *Client, interval time.Duration, onStats func(Stats)) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		client:   client,
		interval: interval,
		onStats:  onStats,
		logger:   zerolog.Nop(),
	}
}

// SetLogger overrides the no-op default logger.
func (p *Poller) SetLogger(l zerolog.Logger) {
	p.logger = l
}

// Run polls until ctx is cancelled. The first request goes out after one full
// interval, not immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	snapshot, err := p.client.Fetch(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("stats poll failed")
		return
	}
	if p.onStats != nil {
		p.onStats(snapshot)
	}
}
