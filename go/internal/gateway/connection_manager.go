// Package gateway exposes the timer service to rendering and control
// collaborators: WebSocket fan-out of timer events plus JSON HTTP endpoints
// for state queries and user intents.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/timers/events"
)

// ConnectionManager manages WebSocket connections subscribed to timers.
type ConnectionManager struct {
	// Connection pools organized by timer ID
	timerConnections map[uuid.UUID]map[*Connection]bool
	mu               sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	// Event broadcasting
	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client.
type Connection struct {
	ID      string
	TimerID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents an event to broadcast to a timer's
// connections.
type BroadcastMessage struct {
	TimerID uuid.UUID
	Event   *events.Event
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Local desktop front-ends connect from arbitrary origins.
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		timerConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
		// Ticks arrive at poll cadence for every timer; buffer enough
		// to ride out slow consumers before dropping.
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages. Blocks until the context is
// cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Publish implements events.Sink: it routes a timer event to the
// connections subscribed to that timer. Delivery is best-effort; a full
// broadcast queue drops the event rather than blocking the producer.
func (cm *ConnectionManager) Publish(ctx context.Context, event *events.Event) error {
	timerID, err := uuid.Parse(event.TimerID)
	if err != nil {
		return fmt.Errorf("parse timer ID: %w", err)
	}

	select {
	case cm.broadcastCh <- BroadcastMessage{TimerID: timerID, Event: event}:
	default:
		log.Warn().Str("timer_id", event.TimerID).Msg("broadcast channel full, dropping event")
	}
	return nil
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and registers
// it for the given timer.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, timerID uuid.UUID) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		TimerID:     timerID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("timer_id", timerID.String()).
		Msg("WebSocket connection established")

	return connection, nil
}

// registerConnection adds a connection to the manager.
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.timerConnections[conn.TimerID] == nil {
		cm.timerConnections[conn.TimerID] = make(map[*Connection]bool)
	}
	cm.timerConnections[conn.TimerID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("timer_id", conn.TimerID.String()).
		Int("total_connections", len(cm.timerConnections[conn.TimerID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection from the manager.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if connections, exists := cm.timerConnections[conn.TimerID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)
			close(conn.Send)

			// Clean up empty timer connection pools
			if len(connections) == 0 {
				delete(cm.timerConnections, conn.TimerID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("timer_id", conn.TimerID.String()).
				Msg("connection unregistered")
		}
	}
}

// handleBroadcast sends an event to every connection subscribed to its
// timer.
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.timerConnections[message.TimerID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	// Snapshot the connections so the lock is not held during sends.
	targets := make([]*Connection, 0, len(connections))
	for conn := range connections {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	// Marshal the event once
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- eventData:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}
}

// SendEvent queues an event on a single connection, used for the initial
// state sync after connect.
func (cm *ConnectionManager) SendEvent(conn *Connection, event *events.Event) {
	eventData, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal state sync event")
		return
	}
	select {
	case conn.Send <- eventData:
	default:
		log.Warn().Str("connection_id", conn.ID).Msg("send buffer full, dropping state sync")
	}
}

// ConnectionStats summarizes the active connections.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveTimers     int            `json:"active_timers"`
	TimerConnections map[string]int `json:"timer_connections"`
}

// GetConnectionStats returns statistics about active connections.
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	total := 0
	perTimer := make(map[string]int)
	for timerID, connections := range cm.timerConnections {
		count := len(connections)
		total += count
		perTimer[timerID.String()] = count
	}

	return ConnectionStats{
		TotalConnections: total,
		ActiveTimers:     len(cm.timerConnections),
		TimerConnections: perTimer,
	}
}

// writePump handles sending messages to the WebSocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		// Clients only receive; log anything they send.
		log.Debug().
			Str("connection_id", c.ID).
			RawJSON("message", message).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
