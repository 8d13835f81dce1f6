package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/ports"
)

const defaultAlertPollInterval = 30 * time.Second

// AlertSink receives the unread alert count whenever it is refreshed.
type AlertSink interface {
	PublishAlerts(count int)
}

// AlertPoller keeps the unread alert badge current for identities allowed to
// see it. Polling starts and stops as the identity changes.
type AlertPoller struct {
	api        ports.AlertsAPI
	identities ports.IdentityStream
	sink       AlertSink
	interval   time.Duration
	log        zerolog.Logger

	mu    sync.Mutex
	count int
}

func NewAlertPoller(api ports.AlertsAPI, identities ports.IdentityStream, sink AlertSink, interval time.Duration, log zerolog.Logger) *AlertPoller {
	if interval <= 0 {
		interval = defaultAlertPollInterval
	}
	return &AlertPoller{
		api:        api,
		identities: identities,
		sink:       sink,
		interval:   interval,
		log:        log,
	}
}

// Count is the last published value.
func (p *AlertPoller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Run blocks until ctx is cancelled.
func (p *AlertPoller) Run(ctx context.Context) {
	updates, cancel := p.identities.Observe()
	defer cancel()

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-updates:
			if !ok {
				return
			}
			stop()
			if !CanViewAlerts(identity) {
				p.publish(0)
				continue
			}
			p.log.Debug().Int64("user_id", identity.ID).Msg("alert polling started")
			p.poll(ctx)
			ticker = time.NewTicker(p.interval)
			tick = ticker.C
		case <-tick:
			p.poll(ctx)
		}
	}
}

func (p *AlertPoller) poll(ctx context.Context) {
	n, err := p.api.UnreadAlertCount(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn().Err(err).Msg("unread alert count failed")
		}
		p.publish(0)
		return
	}
	p.publish(n)
}

func (p *AlertPoller) publish(n int) {
	p.mu.Lock()
	p.count = n
	p.mu.Unlock()
	if p.sink != nil {
		p.sink.PublishAlerts(n)
	}
}
