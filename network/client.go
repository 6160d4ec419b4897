package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/rs/zerolog"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrNotConnected is returned when sending without a connection.
var ErrNotConnected = errors.New("not connected")

// Client manages a WebSocket connection to the game server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu     sync.RWMutex
	logger zerolog.Logger

	state     ClientState
	lastError error
	joined    messages.JoinAccepted
	conn      *websocket.Conn

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins

	// Reliable messages in arrival order. Replication must never be dropped,
	// so this is an unbounded queue rather than a channel.
	inbox []any
}

func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		logger:     logger,
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.logger.Info().Str("addr", address).Msg("connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		}); err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.logger.Info().
			Uint32("actor", uint32(msg.ActorID)).
			Str("server", msg.ServerName).
			Int("tickRate", msg.TickRate).
			Msg("join accepted")
		c.mu.Lock()
		c.joined = msg
		c.state = StateJoinedGame
		c.mu.Unlock()
		c.push(msg)
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.logger.Warn().Str("reason", msg.Reason).Msg("join rejected")
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.On(func(_ *router.NetworkClient, msg messages.Possessed) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.ReplicationBatch) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.ReplicationDestroy) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.ClientNotifyReceivedDamage) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.ClientNotifyWeaponHit) { c.push(msg) })

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.logger.Info().Err(err).Msg("disconnected")
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.logger.Warn().Err(err).Msg("client error")
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Joined returns the join reply once the server accepted us.
func (c *Client) Joined() (messages.JoinAccepted, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.joined, c.state == StateJoinedGame
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

// Drain returns every reliable message received since the last call, in
// arrival order. Non-blocking.
func (c *Client) Drain() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.inbox
	c.inbox = nil
	return out
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// Call sends a reliable request to the authority. It makes the client a
// replication.Caller.
func (c *Client) Call(msg any) error {
	return c.SendMessage(msg)
}

func (c *Client) push(msg any) {
	c.mu.Lock()
	c.inbox = append(c.inbox, msg)
	c.mu.Unlock()
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}
