package mdnarrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alnah/go-mdnarrate/internal/assets"
	"github.com/alnah/go-mdnarrate/internal/pipeline"
)

// DefaultWebAddr is the listen address of the web surface.
const DefaultWebAddr = "127.0.0.1:8765"

const (
	shutdownTimeout = 5 * time.Second
	writeTimeout    = 5 * time.Second
)

// Messages pushed to remote clients.
type webMessage struct {
	Type    string    `json:"type"`
	Percent int       `json:"percent,omitempty"`
	State   *Snapshot `json:"state,omitempty"`
	Message string    `json:"message,omitempty"`
}

// remoteData fills the remote template.
type remoteData struct {
	Title string
}

// WebSurface serves the current document with a remote control bar and
// follows narration over a WebSocket.
type WebSurface struct {
	addr     string
	logger   *slog.Logger
	remote   pipeline.SnippetInjector
	upgrader websocket.Upgrader

	mu         sync.RWMutex
	page       string
	state      *Snapshot
	clients    map[*wsClient]struct{}
	dispatcher Dispatcher
	server     *http.Server
	listener   net.Listener
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// WebOption configures a WebSurface.
type WebOption func(*WebSurface)

// WithWebLogger sets the logger.
func WithWebLogger(l *slog.Logger) WebOption {
	return func(s *WebSurface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRemoteTemplate replaces the embedded remote control template.
func WithRemoteTemplate(tmpl string) WebOption {
	return func(s *WebSurface) {
		if inj, err := pipeline.NewSnippetInjection(assets.TemplateRemote, tmpl); err == nil {
			s.remote = inj
		} else {
			s.logger.Warn("remote template ignored", "error", err)
		}
	}
}

// NewWebSurface creates a WebSurface for addr (DefaultWebAddr when empty).
// Call Start to listen.
func NewWebSurface(addr string, opts ...WebOption) (*WebSurface, error) {
	if addr == "" {
		addr = DefaultWebAddr
	}
	s := &WebSurface{
		addr:    addr,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: sameHostOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.remote == nil {
		tmpl, err := assets.LoadTemplate(assets.TemplateRemote)
		if err != nil {
			return nil, fmt.Errorf("loading remote template: %w", convertAssetError(err))
		}
		inj, err := pipeline.NewSnippetInjection(assets.TemplateRemote, tmpl)
		if err != nil {
			return nil, err
		}
		s.remote = inj
	}
	return s, nil
}

// sameHostOrigin accepts pages served by this surface and non-browser clients.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Attach sets the receiver of remote commands.
func (s *WebSurface) Attach(d Dispatcher) {
	s.mu.Lock()
	s.dispatcher = d
	s.mu.Unlock()
}

// Handler serves "/" (current page) and "/ws" (remote channel).
func (s *WebSurface) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *WebSurface) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceServe, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = ln
	s.server = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web surface stopped", "error", err)
		}
	}()
	return nil
}

// URL returns the address clients should open, once started.
func (s *WebSurface) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return "http://" + s.addr + "/"
	}
	return "http://" + s.listener.Addr().String() + "/"
}

func (s *WebSurface) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, page)
}

func (s *WebSurface) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	count := len(s.clients)
	state := s.state
	s.mu.Unlock()
	s.logger.Debug("remote connected", "addr", r.RemoteAddr, "clients", count)

	if state != nil {
		_ = client.writeJSON(webMessage{Type: "state", State: state})
	}
	go s.readLoop(client)
}

func (s *WebSurface) readLoop(client *wsClient) {
	defer func() {
		_ = client.conn.Close()
		s.mu.Lock()
		delete(s.clients, client)
		count := len(s.clients)
		s.mu.Unlock()
		s.logger.Debug("remote disconnected", "clients", count)
	}()

	for {
		var cmd Command
		if err := client.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		s.mu.RLock()
		d := s.dispatcher
		s.mu.RUnlock()
		if d == nil {
			continue
		}
		if err := d.Dispatch(context.Background(), cmd); err != nil {
			s.logger.Info("remote command failed", "command", cmd.Name, "error", err)
			_ = client.writeJSON(webMessage{Type: "error", Message: err.Error()})
		}
	}
}

// Show implements Surface. Connected remotes reload the page.
func (s *WebSurface) Show(ctx context.Context, html string) error {
	page, err := s.remote.InjectSnippet(ctx, html, &remoteData{Title: "mdnarrate remote"})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	s.broadcast(webMessage{Type: "document"})
	return nil
}

// ScrollTo implements Surface.
func (s *WebSurface) ScrollTo(_ context.Context, percent int) error {
	s.broadcast(webMessage{Type: "scroll", Percent: percent})
	return nil
}

// StateChanged implements StateListener.
func (s *WebSurface) StateChanged(_ context.Context, snap Snapshot) {
	s.mu.Lock()
	s.state = &snap
	s.mu.Unlock()
	s.broadcast(webMessage{Type: "state", State: &snap})
}

// broadcast writes msg to every client, dropping clients that fail.
func (s *WebSurface) broadcast(msg webMessage) {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			s.logger.Debug("dropping remote", "error", err)
			_ = c.conn.Close()
		}
	}
}

// Close stops the server and disconnects remotes.
func (s *WebSurface) Close() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	clients := s.clients
	s.clients = make(map[*wsClient]struct{})
	s.mu.Unlock()

	for c := range clients {
		_ = c.conn.Close()
	}
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

var (
	_ Surface       = (*WebSurface)(nil)
	_ StateListener = (*WebSurface)(nil)
)
