package kiosk

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Runtime is the kiosk agent loop: one goroutine owns the dashboard
// state and reacts to the refresh ticker, captured-card events, and
// payback triggers from the socket.
type Runtime struct {
	dash            *Dashboard
	poller          *CapturePoller
	socket          *Socket
	refreshInterval time.Duration
	triggers        chan json.RawMessage

	// capturedUID mirrors the registration form field the capture poll
	// populates on the admin panel. Written by the agent goroutine,
	// read from anywhere.
	mu          sync.Mutex
	capturedUID string
}

type RuntimeOptions struct {
	WSURL           string
	CaptureInterval time.Duration
	RefreshInterval time.Duration
	ReconnectDelay  time.Duration
}

func NewRuntime(dash *Dashboard, opts RuntimeOptions) *Runtime {
	r := &Runtime{
		dash:            dash,
		refreshInterval: opts.RefreshInterval,
		triggers:        make(chan json.RawMessage, 4),
	}
	if r.refreshInterval <= 0 {
		r.refreshInterval = 5 * time.Second
	}
	r.poller = NewCapturePoller(dash.api, opts.CaptureInterval)
	if opts.WSURL != "" {
		r.socket = NewSocket(opts.WSURL, opts.ReconnectDelay, func(msg json.RawMessage) {
			select {
			case r.triggers <- msg:
			default:
				log.Printf("kiosk: dropping payback trigger, queue full")
			}
		})
	}
	return r
}

// Run drives the agent until the context is cancelled. Teardown stops
// the capture poll and closes the socket, reconnect timer included.
func (r *Runtime) Run(ctx context.Context) {
	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	go r.poller.Run(pollCtx)

	if r.socket != nil {
		r.socket.Connect()
		defer r.socket.Close()
	}

	r.dash.Refresh(ctx)

	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.dash.Refresh(ctx)
		case uid := <-r.poller.Events():
			r.setCapturedUID(uid)
			log.Printf("new card captured: %s", uid)
		case msg := <-r.triggers:
			r.handleTrigger(ctx, msg)
		}
	}
}

// paybackTrigger is the payload pushed over /ws/tablet when a student
// taps their card at the kiosk.
type paybackTrigger struct {
	Event     string `json:"event"`
	StudentID int    `json:"student_id"`
}

func (r *Runtime) handleTrigger(ctx context.Context, msg json.RawMessage) {
	var trigger paybackTrigger
	if err := json.Unmarshal(msg, &trigger); err != nil {
		log.Printf("kiosk: unreadable trigger payload: %v", err)
		return
	}
	// Any trigger means upstream state changed; re-pull the dashboard.
	r.dash.Refresh(ctx)
}

func (r *Runtime) setCapturedUID(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capturedUID = uid
}

// CapturedUID reports the most recently captured card awaiting
// registration, empty when none has been seen.
func (r *Runtime) CapturedUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturedUID
}

func (r *Runtime) SocketState() ConnState {
	if r.socket == nil {
		return StateDisconnected
	}
	return r.socket.State()
}
