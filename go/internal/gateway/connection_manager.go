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
)

// ConnectionManager manages WebSocket connections for wheel events
type ConnectionManager struct {
	// Connection pools organized by wheel ID
	wheelConnections map[uuid.UUID]map[*Connection]bool
	mu               sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	WheelID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	mu       sync.Mutex
	lastPing time.Time

	// ready is set once the snapshot has been queued; guarded by Manager.mu.
	ready bool
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a message to broadcast to connections.
// A message with a Target delivers a snapshot built by Snapshot to that one
// connection and marks it ready for broadcasts.
type BroadcastMessage struct {
	WheelID  uuid.UUID
	Event    *WheelEvent
	Target   *Connection
	Snapshot SnapshotFunc
}

// SnapshotFunc builds the full-state event a new connection starts from.
type SnapshotFunc func() (*WheelEvent, error)

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = 256
	}
	return &ConnectionManager{
		wheelConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and registers it
// under the given wheel. When snapshot is not nil, it is built on the broadcast
// loop and sent first; broadcasts queued before it are not delivered to the
// new connection, since the snapshot already reflects them.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, wheelID uuid.UUID, snapshot SnapshotFunc) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	now := time.Now()
	connection := &Connection{
		ID:          uuid.New().String(),
		WheelID:     wheelID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: now,
		lastPing:    now,
		ready:       snapshot == nil,
	}

	cm.registerConnection(connection)

	if snapshot != nil {
		select {
		case cm.broadcastCh <- BroadcastMessage{WheelID: wheelID, Target: connection, Snapshot: snapshot}:
		case <-time.After(cm.config.WriteTimeout):
			cm.unregisterConnection(connection)
			conn.Close()
			return nil, fmt.Errorf("broadcast queue full, snapshot not sent")
		}
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("wheel_id", wheelID.String()).
		Msg("WebSocket connection established")

	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.wheelConnections[conn.WheelID] == nil {
		cm.wheelConnections[conn.WheelID] = make(map[*Connection]bool)
	}
	cm.wheelConnections[conn.WheelID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("wheel_id", conn.WheelID.String()).
		Int("total_connections", len(cm.wheelConnections[conn.WheelID])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.wheelConnections[conn.WheelID]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)

	if len(connections) == 0 {
		delete(cm.wheelConnections, conn.WheelID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("wheel_id", conn.WheelID.String()).
		Msg("connection unregistered")
}

// DisconnectWheel closes every connection watching a wheel.
func (cm *ConnectionManager) DisconnectWheel(wheelID uuid.UUID) {
	cm.mu.RLock()
	var targets []*Connection
	for conn := range cm.wheelConnections[wheelID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		cm.unregisterConnection(conn)
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var targets []*Connection
	for _, connections := range cm.wheelConnections {
		for conn := range connections {
			targets = append(targets, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		cm.unregisterConnection(conn)
	}
}

// BroadcastToWheel sends an event to all connections for a specific wheel
func (cm *ConnectionManager) BroadcastToWheel(wheelID uuid.UUID, event *WheelEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{WheelID: wheelID, Event: event}:
	default:
		log.Warn().Str("wheel_id", wheelID.String()).Msg("broadcast channel full, dropping message")
	}
}

func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	if message.Target != nil {
		cm.sendSnapshot(message.Target, message.Snapshot)
		return
	}

	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends happen under the read lock so no Send channel can be closed mid-send.
	cm.mu.RLock()
	connections := cm.wheelConnections[message.WheelID]
	delivered := 0
	var slow []*Connection
	for conn := range connections {
		if !conn.ready {
			continue
		}
		select {
		case conn.Send <- eventData:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("wheel_id", message.WheelID.String()).
		Int("connections", delivered).
		Msg("event broadcasted")
}

// sendSnapshot queues the snapshot as the connection's first message.
func (cm *ConnectionManager) sendSnapshot(conn *Connection, snapshot SnapshotFunc) {
	event, err := snapshot()
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to build snapshot")
		cm.unregisterConnection(conn)
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ID).Msg("failed to marshal snapshot")
		cm.unregisterConnection(conn)
		return
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, ok := cm.wheelConnections[conn.WheelID][conn]; !ok {
		return
	}
	// The Send buffer is empty: nothing is delivered before the snapshot.
	conn.Send <- data
	conn.ready = true
}

// ConnectionStats summarizes active connections
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveWheels     int            `json:"active_wheels"`
	WheelConnections map[string]int `json:"wheel_connections"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveWheels:     len(cm.wheelConnections),
		WheelConnections: make(map[string]int, len(cm.wheelConnections)),
	}
	for wheelID, connections := range cm.wheelConnections {
		stats.TotalConnections += len(connections)
		stats.WheelConnections[wheelID.String()] = len(connections)
	}
	return stats
}

// LastPing returns when the client last answered a ping.
func (c *Connection) LastPing() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPing
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}

// writePump handles sending messages to the WebSocket connection
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
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.touch()
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

		// Clients are render-only; anything they send is logged and dropped.
		log.Debug().
			Str("connection_id", c.ID).
			Int("bytes", len(message)).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
