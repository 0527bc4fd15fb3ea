// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nassif-clinic/triage/lib/clock"
)

// Event is one decoded push payload from the dashboard websocket. The
// server sends these on every conversation change. Subscribers treat
// an Event purely as a change signal — the fields are informational
// (status bar, logs) and are never merged into local state; the
// consistency mechanism is a full refetch.
type Event struct {
	// Type is the event kind (e.g., "conversation_updated",
	// "new_conversation"). Unknown types are delivered, not dropped.
	Type string `json:"type"`

	// ConversationID identifies the changed conversation, when the
	// server includes it.
	ConversationID string `json:"conversation_id,omitempty"`

	// Status is the conversation's new status, when included.
	Status string `json:"status,omitempty"`

	// Raw is the full payload for logging and debugging.
	Raw json.RawMessage `json:"-"`
}

// Default connection timings. The warm-up delay tolerates a backend
// that is still initializing when the dashboard starts; the backoff
// bounds reconnection pressure after a disconnect.
const (
	DefaultWarmupDelay    = 3 * time.Second
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 30 * time.Second

	handshakeTimeout = 10 * time.Second

	// maxEventSize bounds a single websocket message read. Push
	// payloads are change notifications, not data transfers.
	maxEventSize = 1 << 20
)

// Config holds configuration for creating a Manager.
type Config struct {
	// Endpoint resolves the websocket URL (e.g.,
	// "ws://127.0.0.1:8000/dashboard/ws"). It is called once per
	// connection attempt, never cached, so an environment promotion
	// (local to deployed) takes effect on the next reconnect.
	// Required.
	Endpoint func() (string, error)

	// WarmupDelay is the wait before the first connection attempt.
	// Defaults to DefaultWarmupDelay.
	WarmupDelay time.Duration

	// InitialBackoff and MaxBackoff bound the reconnection delay.
	// The actual delay is full-jittered: uniform in (0, current
	// backoff]. Defaults to DefaultInitialBackoff/DefaultMaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Clock supplies time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Manager owns one logical push-channel connection to the dashboard
// websocket: delayed first connect, automatic reconnection with
// bounded jittered backoff, and a live/dead status flag. Decoded
// events are forwarded to exactly one subscriber callback; malformed
// payloads are dropped and logged without disturbing the connection.
//
// The original web dashboard reconnected only via a full page reload.
// The Manager reconnects automatically instead — channel loss is
// routine (laptop sleep, backend redeploys) and the list refetches on
// reconnect anyway, so self-healing is strictly better for the
// operator.
type Manager struct {
	endpoint       func() (string, error)
	warmupDelay    time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	clock          clock.Clock
	logger         *slog.Logger

	mu         sync.Mutex
	started    bool
	connected  bool
	lastEvent  *Event
	reconnects int
	conn       *websocket.Conn
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewManager creates a Manager. The connection lifecycle does not
// begin until Start is called.
func NewManager(config Config) (*Manager, error) {
	if config.Endpoint == nil {
		return nil, fmt.Errorf("channel: Endpoint resolver is required")
	}

	manager := &Manager{
		endpoint:       config.Endpoint,
		warmupDelay:    config.WarmupDelay,
		initialBackoff: config.InitialBackoff,
		maxBackoff:     config.MaxBackoff,
		clock:          config.Clock,
		logger:         config.Logger,
	}
	if manager.warmupDelay == 0 {
		manager.warmupDelay = DefaultWarmupDelay
	}
	if manager.initialBackoff == 0 {
		manager.initialBackoff = DefaultInitialBackoff
	}
	if manager.maxBackoff == 0 {
		manager.maxBackoff = DefaultMaxBackoff
	}
	if manager.clock == nil {
		manager.clock = clock.Real()
	}
	if manager.logger == nil {
		manager.logger = slog.Default()
	}
	return manager, nil
}

// Start begins the connection lifecycle in a background goroutine:
// warm-up delay, dial, read loop, reconnect on failure. Decoded
// events are delivered to onEvent, one at a time, from the manager's
// goroutine. Returns an error if the manager is already started.
func (m *Manager) Start(onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("channel: onEvent subscriber is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("channel: already started")
	}
	m.started = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx, onEvent)
	return nil
}

// Stop tears the channel down: closes any live connection with a
// clean-shutdown close frame and stops the reconnect loop. Events
// already read but not yet delivered are discarded. Calling Stop on a
// manager that was never started is a no-op; Stop is idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.cancel()
	conn := m.conn
	m.conn = nil
	done := m.done
	m.mu.Unlock()

	if conn != nil {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "dashboard closing")
		conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
		conn.Close()
	}
	<-done
}

// Connected reports whether the websocket is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// LastEvent returns the most recently received event, if any.
func (m *Manager) LastEvent() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastEvent == nil {
		return Event{}, false
	}
	return *m.lastEvent, true
}

// ReconnectAttempts returns the number of consecutive failed or
// dropped connections since the last successful open. Zero while
// connected.
func (m *Manager) ReconnectAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnects
}

// run is the connection lifecycle loop. Runs until the context is
// cancelled by Stop.
func (m *Manager) run(ctx context.Context, onEvent func(Event)) {
	defer close(m.done)

	// Warm-up: give a just-deployed backend time to come up before
	// the first dial.
	select {
	case <-ctx.Done():
		return
	case <-m.clock.After(m.warmupDelay):
	}

	backoff := m.initialBackoff
	for {
		err := m.runConnection(ctx, onEvent)
		if ctx.Err() != nil {
			return
		}

		m.mu.Lock()
		m.reconnects++
		attempts := m.reconnects
		m.mu.Unlock()

		if err == nil {
			// Clean server-side close: reconnect promptly, but from
			// a reset backoff so a flapping backend cannot induce a
			// tight redial loop.
			backoff = m.initialBackoff
		}

		// Full jitter: uniform in (0, backoff]. Decorrelates
		// reconnect storms when several dashboards lose the same
		// backend.
		delay := time.Duration(rand.Int64N(int64(backoff))) + 1
		m.logger.Warn("dashboard channel disconnected",
			"error", err,
			"attempt", attempts,
			"retry_in", delay,
		)
		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(delay):
		}
		if err != nil {
			backoff = min(backoff*2, m.maxBackoff)
		}
	}
}

// runConnection dials once and reads events until the connection ends.
// Returns the error that ended it; a nil return means the connection
// opened and later closed cleanly (backoff resets).
func (m *Manager) runConnection(ctx context.Context, onEvent func(Event)) error {
	endpoint, err := m.endpoint()
	if err != nil {
		return fmt.Errorf("resolving endpoint: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", endpoint, err)
	}
	conn.SetReadLimit(maxEventSize)

	m.mu.Lock()
	m.conn = conn
	m.connected = true
	m.reconnects = 0
	m.mu.Unlock()

	m.logger.Info("dashboard channel connected", "endpoint", endpoint)

	readErr := m.readLoop(ctx, conn, onEvent)

	m.mu.Lock()
	m.connected = false
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
	conn.Close()

	if websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		m.logger.Info("dashboard channel closed cleanly")
		return nil
	}
	return readErr
}

// readLoop decodes incoming messages and forwards them to the
// subscriber. A payload that fails to parse is dropped and logged; it
// neither ends the connection nor flips the connected flag.
func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn, onEvent func(Event)) error {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			m.logger.Warn("dropping malformed channel payload",
				"error", err,
				"bytes", len(payload),
			)
			continue
		}
		event.Raw = payload

		// Stop may have raced the read; never deliver after it.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m.mu.Lock()
		m.lastEvent = &event
		m.mu.Unlock()

		onEvent(event)
	}
}
