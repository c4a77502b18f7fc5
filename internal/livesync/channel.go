// Package livesync implements the live-booking synchronization subsystem:
// per-booking reconnecting websocket channels, the in-memory live booking
// state store, and the content-switch command dispatcher.
package livesync

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/gorilla/websocket"
)

const defaultHandshakeTimeout = 10 * time.Second

// ChannelConfig holds the reconnect policy of a booking channel
type ChannelConfig struct {
	ReconnectFloor   time.Duration
	ReconnectStep    time.Duration
	ReconnectCeiling time.Duration
	HandshakeTimeout time.Duration
}

// backoff implements the saturating reconnect delay policy
type backoff struct {
	floor   time.Duration
	step    time.Duration
	ceiling time.Duration
	delay   time.Duration
}

func newBackoff(floor, step, ceiling time.Duration) *backoff {
	return &backoff{floor: floor, step: step, ceiling: ceiling, delay: floor}
}

// Bump recomputes the delay after a failed attempt. The policy saturates:
// a single failure puts the delay at the ceiling, and repeated failures
// hold it there. Only a successful open brings it back to the floor.
func (b *backoff) Bump() {
	b.delay = max(b.ceiling, b.delay+b.step)
	if b.delay > b.ceiling {
		b.delay = b.ceiling
	}
}

// Reset returns the delay to the floor after a successful open
func (b *backoff) Reset() {
	b.delay = b.floor
}

// Current returns the delay to wait before the next attempt
func (b *backoff) Current() time.Duration {
	return b.delay
}

// Channel maintains one persistent websocket connection to a per-booking
// realtime endpoint, reconnecting with a saturating backoff until its
// context is cancelled. Inbound bulk-sync snapshots are forwarded to the
// onBulkSync callback; all other frames are dropped at this boundary.
type Channel struct {
	endpoint      string
	url           string
	dialer        *websocket.Dialer
	bo            *backoff
	onEstablished func()
	onBulkSync    func([]SlotSync)

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// websocketURL derives the realtime URL from the configured http(s) base
// URL: https becomes wss, http becomes ws. The optional bearer credential
// is appended as a token query parameter.
func websocketURL(baseURL, endpoint, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported base URL scheme: %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + endpoint
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// OpenChannel starts a connection loop for the given endpoint. URL
// construction failure is fatal for the channel: no loop is started and the
// error is returned. Once started, the loop retries until ctx is cancelled
// or Close is called; onEstablished fires once per successful connection,
// not once per lifetime.
func OpenChannel(ctx context.Context, baseURL, endpoint, token string, cfg ChannelConfig, onEstablished func(), onBulkSync func([]SlotSync)) (*Channel, error) {
	wsURL, err := websocketURL(baseURL, endpoint, token)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel %q: %w", endpoint, err)
	}

	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Channel{
		endpoint:      endpoint,
		url:           wsURL,
		dialer:        &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		bo:            newBackoff(cfg.ReconnectFloor, cfg.ReconnectStep, cfg.ReconnectCeiling),
		onEstablished: onEstablished,
		onBulkSync:    onBulkSync,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	go c.run(ctx)

	return c, nil
}

// Endpoint returns the endpoint path the channel was opened for
func (c *Channel) Endpoint() string {
	return c.endpoint
}

// Connected reports whether the channel currently holds a live transport
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Send writes an envelope to the live transport. Concurrent senders are
// serialized. Returns ErrChannelDown when no transport is up; the command
// is then simply lost (fire-and-forget callers accept this).
func (c *Channel) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrChannelDown
	}
	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("failed to send %s envelope: %w", env.Type, err)
	}
	return nil
}

// Close cancels the connection loop and waits for it to exit
func (c *Channel) Close() {
	c.cancel()
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
	<-c.done
}

// run is the connection loop: dial, read until close/error, wait out the
// backoff delay, repeat. Every suspension point observes ctx.
func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	for {
		conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Warn().
				Err(err).
				Str("endpoint", c.endpoint).
				Msg("Websocket dial failed")
			c.bo.Bump()
		} else {
			logger.Log.Info().
				Str("endpoint", c.endpoint).
				Msg("Websocket connected")

			c.setConn(conn)
			c.bo.Reset()
			if c.onEstablished != nil {
				c.onEstablished()
			}

			// Unblock the read when ctx is cancelled mid-connection
			watchDone := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = conn.Close()
				case <-watchDone:
				}
			}()

			clean := c.readLoop(conn)

			close(watchDone)
			c.setConn(nil)
			_ = conn.Close()

			if ctx.Err() != nil {
				return
			}
			if !clean {
				c.bo.Bump()
			}
		}

		logger.Log.Debug().
			Str("endpoint", c.endpoint).
			Dur("delay", c.bo.Current()).
			Msg("Websocket reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.bo.Current()):
		}
	}
}

// readLoop consumes frames until the connection drops. Returns true when
// the peer closed cleanly, false on transport errors.
func (c *Channel) readLoop(conn *websocket.Conn) bool {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			clean := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			if !clean {
				logger.Log.Warn().
					Err(err).
					Str("endpoint", c.endpoint).
					Msg("Websocket read failed")
			}
			return clean
		}
		c.handleFrame(raw)
	}
}

// handleFrame decodes one inbound frame. Malformed payloads and unknown
// envelope types are logged and dropped, never fatal.
func (c *Channel) handleFrame(raw []byte) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		logger.Log.Debug().
			Err(err).
			Str("endpoint", c.endpoint).
			Msg("Dropping malformed websocket frame")
		return
	}

	switch env.Type {
	case TypeInitBookingStates:
		states, err := env.BookingStates()
		if err != nil {
			logger.Log.Debug().
				Err(err).
				Str("endpoint", c.endpoint).
				Msg("Dropping malformed booking states snapshot")
			return
		}
		if len(states) == 0 {
			return
		}
		if c.onBulkSync != nil {
			c.onBulkSync(states)
		}
	default:
		logger.Log.Debug().
			Str("endpoint", c.endpoint).
			Str("type", env.Type).
			Msg("Ignoring unknown envelope type")
	}
}

func (c *Channel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
