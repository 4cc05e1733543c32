package kiosk

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Socket keeps a persistent connection to the payback trigger endpoint.
// On close it schedules exactly one reconnect attempt after the
// configured delay; Close cancels any pending reconnect and suppresses
// the reconnect-on-intentional-close path.
type Socket struct {
	url       string
	delay     time.Duration
	dialer    *websocket.Dialer
	onMessage func(json.RawMessage)

	mu        sync.Mutex
	state     ConnState
	conn      *websocket.Conn
	reconnect *time.Timer
	closed    bool
}

func NewSocket(url string, delay time.Duration, onMessage func(json.RawMessage)) *Socket {
	if delay <= 0 {
		delay = 3 * time.Second
	}
	return &Socket{
		url:       url,
		delay:     delay,
		dialer:    websocket.DefaultDialer,
		onMessage: onMessage,
	}
}

func (s *Socket) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect is a no-op while a connection is already connecting or
// connected, and after Close.
func (s *Socket) Connect() {
	s.mu.Lock()
	if s.closed || s.state != StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.mu.Unlock()

	go s.dialAndRead()
}

func (s *Socket) dialAndRead() {
	conn, resp, err := s.dialer.Dial(s.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		log.Printf("socket dial %s: %v", s.url, err)
		s.handleClose()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.state = StateConnected
	s.mu.Unlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var payload json.RawMessage
		if err := json.Unmarshal(data, &payload); err != nil {
			// Non-JSON frames (e.g. echoes) are dropped silently.
			log.Printf("socket: ignoring non-JSON message")
			continue
		}
		if s.onMessage != nil {
			s.onMessage(payload)
		}
	}

	s.handleClose()
}

func (s *Socket) handleClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.state = StateDisconnected
	if s.closed || s.reconnect != nil {
		return
	}
	s.reconnect = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.reconnect = nil
		s.mu.Unlock()
		s.Connect()
	})
}

// Close tears the socket down unconditionally: the pending reconnect
// timer is cancelled, no further reconnects are scheduled, and the
// active connection is closed.
func (s *Socket) Close() {
	s.mu.Lock()
	s.closed = true
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
	conn := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}
