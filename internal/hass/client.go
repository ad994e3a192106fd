// Package hass is the Home Assistant boundary: a websocket API client
// feeding a live entity state store, plus mDNS discovery of an instance.
package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
)

// Client speaks the Home Assistant websocket API: auth, an initial
// get_states snapshot, a state_changed subscription and service calls.
type Client struct {
	host  string
	token string

	states *StateStore

	// OnStateChanged fires after every state store update. Set before
	// Connect.
	OnStateChanged func(entityID string)

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int
}

func NewClient(host, token string) *Client {
	return &Client{
		host:   host,
		token:  token,
		states: NewStateStore(),
		nextID: 1,
	}
}

// States returns the live entity state store.
func (c *Client) States() *StateStore { return c.states }

// Host returns the configured instance address; empty until discovery
// fills it in.
func (c *Client) Host() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host
}

// SetHost points the client at a discovered instance.
func (c *Client) SetHost(host string) {
	c.mu.Lock()
	c.host = host
	c.mu.Unlock()
}

type message struct {
	ID          int             `json:"id,omitempty"`
	Type        string          `json:"type"`
	AccessToken string          `json:"access_token,omitempty"`
	EventType   string          `json:"event_type,omitempty"`
	Domain      string          `json:"domain,omitempty"`
	Service     string          `json:"service,omitempty"`
	ServiceData map[string]any  `json:"service_data,omitempty"`
	Success     *bool           `json:"success,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Event       *event          `json:"event,omitempty"`
}

type event struct {
	EventType string    `json:"event_type"`
	Data      eventData `json:"data"`
}

type eventData struct {
	EntityID string       `json:"entity_id"`
	NewState *EntityState `json:"new_state"`
}

// Connect dials the websocket endpoint, authenticates, loads the initial
// state snapshot and subscribes to state_changed events.
func (c *Client) Connect(ctx context.Context) error {
	url := websocketURL(c.Host())
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.authenticate(); err != nil {
		conn.Close()
		return err
	}
	if err := c.loadStates(); err != nil {
		conn.Close()
		return err
	}
	if err := c.send(message{Type: "subscribe_events", EventType: "state_changed"}); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe_events: %w", err)
	}

	logging.Info("home assistant connected",
		zap.String("host", c.Host()),
		zap.Int("entities", c.states.Len()),
	)
	return nil
}

// Listen consumes incoming messages until the connection drops or ctx is
// canceled. State events update the store and trigger OnStateChanged.
func (c *Client) Listen(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		var msg message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		if msg.Type != "event" || msg.Event == nil {
			continue
		}
		if msg.Event.EventType != "state_changed" || msg.Event.Data.NewState == nil {
			continue
		}
		state := *msg.Event.Data.NewState
		state.EntityID = msg.Event.Data.EntityID
		c.states.Update(state)
		if c.OnStateChanged != nil {
			c.OnStateChanged(state.EntityID)
		}
	}
}

// CallService invokes a Home Assistant service. Responses are not awaited;
// a failed call surfaces on the next read.
func (c *Client) CallService(domain, service string, data map[string]any) error {
	return c.send(message{
		Type:        "call_service",
		Domain:      domain,
		Service:     service,
		ServiceData: data,
	})
}

// Close tears the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) authenticate() error {
	var hello message
	if err := c.conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("auth handshake: %w", err)
	}
	if hello.Type != "auth_required" {
		return fmt.Errorf("unexpected handshake message %q", hello.Type)
	}
	if err := c.writeJSON(message{Type: "auth", AccessToken: c.token}); err != nil {
		return fmt.Errorf("auth send: %w", err)
	}
	var result message
	if err := c.conn.ReadJSON(&result); err != nil {
		return fmt.Errorf("auth response: %w", err)
	}
	if result.Type != "auth_ok" {
		return fmt.Errorf("authentication rejected: %s", result.Type)
	}
	return nil
}

func (c *Client) loadStates() error {
	id, err := c.sendWithID(message{Type: "get_states"})
	if err != nil {
		return fmt.Errorf("get_states: %w", err)
	}
	for {
		var msg message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("get_states response: %w", err)
		}
		if msg.ID != id || msg.Result == nil {
			continue
		}
		var states []EntityState
		if err := json.Unmarshal(msg.Result, &states); err != nil {
			return fmt.Errorf("get_states decode: %w", err)
		}
		c.states.ReplaceAll(states)
		return nil
	}
}

func (c *Client) send(msg message) error {
	_, err := c.sendWithID(msg)
	return err
}

func (c *Client) sendWithID(msg message) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return 0, fmt.Errorf("not connected")
	}
	msg.ID = c.nextID
	c.nextID++
	return msg.ID, c.writeJSONLocked(msg)
}

func (c *Client) writeJSON(msg message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeJSONLocked(msg)
}

func (c *Client) writeJSONLocked(msg message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

// websocketURL normalizes a configured host into the websocket endpoint.
// Accepts bare "host:port", "http(s)://host" and "ws(s)://host" forms.
func websocketURL(host string) string {
	switch {
	case strings.HasPrefix(host, "ws://"), strings.HasPrefix(host, "wss://"):
	case strings.HasPrefix(host, "http://"):
		host = "ws://" + strings.TrimPrefix(host, "http://")
	case strings.HasPrefix(host, "https://"):
		host = "wss://" + strings.TrimPrefix(host, "https://")
	default:
		host = "ws://" + host
	}
	return strings.TrimSuffix(host, "/") + "/api/websocket"
}
