package watch

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
)

// Keepalive timing of the /events stream. Clients are pinged well inside
// the read deadline so idle connections stay registered.
const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// Event types pushed to clients
const (
	EventReload = "reload"
	EventError  = "error"
)

// Event tells connected clients that the catalog changed
type Event struct {
	Type       string     `json:"type"`
	Package    string     `json:"package"`
	Revision   string     `json:"revision,omitempty"`
	Algorithms int        `json:"algorithms"`
	Skipped    int        `json:"skipped"`
	Files      []string   `json:"files,omitempty"`
	Timestamp  int64      `json:"timestamp"`
	Duration   float64    `json:"duration"` // milliseconds
	Error      *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo holds the diagnostic of a failed rescan
type ErrorInfo struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// NewEvent describes a reload result of pkg
func NewEvent(pkg string, res *ReloadResult) Event {
	ev := Event{
		Type:       EventReload,
		Package:    pkg,
		Revision:   res.Revision,
		Algorithms: res.Algorithms,
		Skipped:    res.Skipped,
		Files:      res.ChangedFiles,
		Timestamp:  time.Now().Unix(),
		Duration:   float64(res.Duration.Milliseconds()),
	}
	if res.Success {
		return ev
	}

	ev.Type = EventError
	ev.Error = &ErrorInfo{Message: "rescan failed"}
	if res.Err != nil {
		ev.Error.Message = res.Err.Error()
	}
	var diag *catalogerrors.Error
	if errors.As(res.Err, &diag) {
		ev.Error.Message = diag.Message
		ev.Error.Code = string(diag.Code)
		ev.Error.File = diag.File
		ev.Error.Line = diag.Location.Line
		ev.Error.Severity = string(diag.Severity)
	}
	return ev
}

// Notifier pushes reload events to WebSocket clients
type Notifier struct {
	pkg         string
	logger      *zap.Logger
	connections map[*websocket.Conn]bool
	broadcast   chan Event
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader

	pingInterval time.Duration
	pongWait     time.Duration
}

// NewNotifier creates a notifier for pkg and starts its dispatch loop.
// Only same-origin and localhost pages may connect.
func NewNotifier(pkg string, logger *zap.Logger) *Notifier {
	return newNotifier(pkg, logger, defaultPingInterval)
}

func newNotifier(pkg string, logger *zap.Logger, pingInterval time.Duration) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{
		pkg:          pkg,
		logger:       logger,
		connections:  make(map[*websocket.Conn]bool),
		broadcast:    make(chan Event, 64),
		register:     make(chan *websocket.Conn),
		unregister:   make(chan *websocket.Conn),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		pongWait:     2 * pingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin:     localOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go n.run()

	return n
}

// localOrigin admits requests without an Origin header, pages served from
// the same host and pages on a loopback host.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	switch host := u.Hostname(); {
	case strings.EqualFold(host, "localhost"):
		return true
	default:
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}
}

func (n *Notifier) run() {
	ticker := time.NewTicker(n.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.done:
			return

		case <-ticker.C:
			n.pingAll()

		case conn := <-n.register:
			n.mutex.Lock()
			n.connections[conn] = true
			count := len(n.connections)
			n.mutex.Unlock()
			n.logger.Debug("client connected", zap.Int("clients", count))

		case conn := <-n.unregister:
			n.mutex.Lock()
			if n.connections[conn] {
				delete(n.connections, conn)
				conn.Close()
			}
			count := len(n.connections)
			n.mutex.Unlock()
			n.logger.Debug("client disconnected", zap.Int("clients", count))

		case ev := <-n.broadcast:
			n.sendToAll(ev)
		}
	}
}

func (n *Notifier) sendToAll(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("failed to encode event", zap.Error(err))
		return
	}

	n.writeAll(func(conn *websocket.Conn) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, payload)
	})
}

func (n *Notifier) pingAll() {
	n.writeAll(func(conn *websocket.Conn) error {
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	})
}

// writeAll applies write to every client and drops the ones that fail. It
// only runs on the dispatch goroutine, which keeps writes serialized.
func (n *Notifier) writeAll(write func(*websocket.Conn) error) {
	n.mutex.RLock()
	var failed []*websocket.Conn
	for conn := range n.connections {
		if err := write(conn); err != nil {
			n.logger.Debug("failed to write to client", zap.Error(err))
			failed = append(failed, conn)
		}
	}
	n.mutex.RUnlock()

	if len(failed) > 0 {
		n.mutex.Lock()
		for _, conn := range failed {
			if n.connections[conn] {
				conn.Close()
				delete(n.connections, conn)
			}
		}
		n.mutex.Unlock()
	}
}

// HandleWebSocket upgrades the request and registers the client
func (n *Notifier) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	select {
	case n.register <- conn:
	case <-n.done:
		conn.Close()
		return
	}

	go n.readMessages(conn)
}

// readMessages drains the client until it goes away. Clients only send
// pongs and close frames; a client that misses pongs for pongWait is
// dropped.
func (n *Notifier) readMessages(conn *websocket.Conn) {
	defer func() {
		select {
		case n.unregister <- conn:
		case <-n.done:
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(n.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(n.pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				n.logger.Debug("websocket error", zap.Error(err))
			}
			return
		}
	}
}

// Publish queues an event for res. It is shaped to be passed to
// Reloader.OnReload.
func (n *Notifier) Publish(res *ReloadResult) {
	select {
	case n.broadcast <- NewEvent(n.pkg, res):
	case <-n.done:
	}
}

// ConnectionCount returns the number of active connections
func (n *Notifier) ConnectionCount() int {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return len(n.connections)
}

// Close disconnects every client and stops the dispatch loop
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.done)

		n.mutex.Lock()
		defer n.mutex.Unlock()
		for conn := range n.connections {
			conn.Close()
		}
		n.connections = make(map[*websocket.Conn]bool)
	})
}
