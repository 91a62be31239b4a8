// Package wsbridge is a development [manager.Surface] backed by a local web
// page. The host serves a wrapper page that embeds the hosted frame and
// relays its postMessage traffic over a websocket, so a full collection
// session can be driven from a desktop browser.
package wsbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	messageLimit = 1 << 20
)

// Outbound websocket commands consumed by the wrapper page.
const (
	cmdRender = "render"
	cmdInject = "inject"
	cmdHide   = "hide"
)

type command struct {
	Command string `json:"command"`
	Session string `json:"session,omitempty"`
	URL     string `json:"url,omitempty"`
	Script  string `json:"script,omitempty"`
}

// Host serves the wrapper page and implements the surface contract over its
// websocket. One browser tab at a time; a new connection displaces the old.
type Host struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	srv *http.Server
	ln  net.Listener

	mu        sync.Mutex
	wmu       sync.Mutex
	conn      *websocket.Conn
	sessionID string
	frameURL  string
	script    string
	visible   bool
	closed    bool
	// pending holds scripts injected while no page was connected; they are
	// replayed after the render command once a page attaches.
	pending []string

	msgs chan []byte
}

// New creates a Host that will listen on addr once started.
func New(addr string, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		log:  logger,
		msgs: make(chan []byte, 32),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// The wrapper page is served from this same host; nothing else
		// is expected to connect.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handlePage)
	mux.HandleFunc("/ws", h.handleWS)
	h.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return h
}

// Start begins listening and serving. It returns once the listener is bound;
// serving continues in the background until Close.
func (h *Host) Start() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.srv.Addr, err)
	}
	h.mu.Lock()
	h.ln = ln
	h.mu.Unlock()

	go func() {
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("surface server stopped", "err", err)
		}
	}()
	h.log.Info("collection surface listening", "url", h.URL())
	return nil
}

// Addr returns the bound listen address. Only valid after Start.
func (h *Host) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ln == nil {
		return h.srv.Addr
	}
	return h.ln.Addr().String()
}

// URL returns the wrapper page URL to open in a browser.
func (h *Host) URL() string {
	return "http://" + h.Addr() + "/"
}

// Render records the frame URL and bootstrap script as the current session
// and pushes them to the connected page. Rendering before a page connects is
// not an error; the session is delivered as soon as one does.
func (h *Host) Render(ctx context.Context, frameURL, bootstrapScript string) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errors.New("surface is closed")
	}
	h.frameURL = frameURL
	h.script = bootstrapScript
	h.visible = true
	h.sessionID = uuid.NewString()
	h.pending = nil
	conn := h.conn
	cmd := h.renderCommandLocked()
	h.mu.Unlock()

	if conn == nil {
		h.log.Debug("render queued until a page connects", "url", frameURL)
		return nil
	}
	return h.writeJSON(conn, cmd)
}

// InjectScript pushes a script into the currently rendered frame. While the
// page is disconnected the script is queued and replayed on reconnect, so a
// transient reconnect never fails the session.
func (h *Host) InjectScript(ctx context.Context, script string) error {
	h.mu.Lock()
	if !h.visible {
		h.mu.Unlock()
		return errors.New("no rendered frame to inject into")
	}
	conn := h.conn
	session := h.sessionID
	if conn == nil {
		h.pending = append(h.pending, script)
		h.mu.Unlock()
		h.log.Debug("inject queued until a page connects")
		return nil
	}
	h.mu.Unlock()
	return h.writeJSON(conn, command{Command: cmdInject, Session: session, Script: script})
}

// Hide blanks the wrapper page. Delivery is best effort; a disconnected page
// has nothing to hide.
func (h *Host) Hide() {
	h.mu.Lock()
	h.visible = false
	h.pending = nil
	conn := h.conn
	session := h.sessionID
	h.mu.Unlock()

	if conn == nil {
		return
	}
	if err := h.writeJSON(conn, command{Command: cmdHide, Session: session}); err != nil {
		h.log.Warn("hide command not delivered", "err", err)
	}
}

// Messages streams raw frame protocol messages relayed by the wrapper page.
func (h *Host) Messages() <-chan []byte {
	return h.msgs
}

// Close shuts the server down and disconnects the page.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conn := h.conn
	h.conn = nil
	h.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return h.srv.Shutdown(ctx)
}

// renderCommandLocked builds the render command for the current session.
// Callers hold mu.
func (h *Host) renderCommandLocked() command {
	return command{
		Command: cmdRender,
		Session: h.sessionID,
		URL:     h.frameURL,
		Script:  h.script,
	}
}

func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(messageLimit)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	prev := h.conn
	h.conn = conn
	visible := h.visible
	cmd := h.renderCommandLocked()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	h.log.Info("surface page connected", "remote", r.RemoteAddr)

	if visible {
		if err := h.writeJSON(conn, cmd); err != nil {
			h.log.Warn("queued render not delivered", "err", err)
		}
		for _, script := range pending {
			if err := h.writeJSON(conn, command{Command: cmdInject, Session: cmd.Session, Script: script}); err != nil {
				h.log.Warn("queued inject not delivered", "err", err)
			}
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		select {
		case h.msgs <- data:
		default:
			h.log.Warn("dropping frame message, consumer is not keeping up")
		}
	}

	h.mu.Lock()
	if h.conn == conn {
		h.conn = nil
	}
	h.mu.Unlock()
	_ = conn.Close()
	h.log.Info("surface page disconnected", "remote", r.RemoteAddr)
}

func (h *Host) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(wrapperPage))
}

// writeJSON serializes a command to the page. Gorilla connections allow one
// concurrent writer, so all writes funnel through wmu.
func (h *Host) writeJSON(conn *websocket.Conn, v any) error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}
