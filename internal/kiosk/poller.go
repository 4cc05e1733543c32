package kiosk

import (
	"context"
	"log"
	"time"

	"github.com/ishiasaka/labshop/internal/upstream"
)

// CardSource is the single upstream call the capture poll needs.
type CardSource interface {
	CapturedCard(ctx context.Context) (upstream.CapturedCard, error)
}

// CapturePoller watches for a freshly tapped IC card awaiting
// registration. Each cycle arms the next one only after the request
// finishes, so a slow upstream delays the next poll but never overlaps
// it. Errors are logged and polling continues.
type CapturePoller struct {
	source   CardSource
	interval time.Duration
	events   chan string
}

func NewCapturePoller(source CardSource, interval time.Duration) *CapturePoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &CapturePoller{
		source:   source,
		interval: interval,
		events:   make(chan string, 1),
	}
}

// Events delivers captured card UIDs. A UID waiting in the buffer is
// replaced by a newer one rather than blocking the poll.
func (p *CapturePoller) Events() <-chan string {
	return p.events
}

// Run polls until the context is cancelled. The pending timer is always
// stopped on the way out.
func (p *CapturePoller) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		card, err := p.source.CapturedCard(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("capture poll error: %v", err)
		} else if card.UID != nil && *card.UID != "" {
			select {
			case p.events <- *card.UID:
			default:
				select {
				case <-p.events:
				default:
				}
				p.events <- *card.UID
			}
		}

		timer.Reset(p.interval)
	}
}
