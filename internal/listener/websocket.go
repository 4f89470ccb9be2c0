package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait   = 10 * time.Second
	wsSceneBuffer = 16
)

// SceneSubscriber streams the raw snapshots published for a session.
// LatestScene returns the one published last, if any.
type SceneSubscriber interface {
	SubscribeScene(sessionId string, handler func(data []byte)) (func(), error)
	LatestScene(sessionId string) ([]byte, bool)
}

// WebsocketListener serves browser clients. /play carries a session as text
// frames, one line per frame. /scene?session=ID streams that session's scene
// snapshots as JSON.
type WebsocketListener struct {
	port     uint16
	cm       *ConnectionManager
	scenes   SceneSubscriber
	upgrader websocket.Upgrader
	static   map[string][]byte
}

type WebsocketOpt func(*WebsocketListener) error

// WithJSON serves v, marshalled once, with a plain GET on path.
func WithJSON(path string, v any) WebsocketOpt {
	return func(l *WebsocketListener) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling %s: %w", path, err)
		}
		l.static[path] = data
		return nil
	}
}

func NewWebsocketListener(port uint16, cm *ConnectionManager, scenes SceneSubscriber, allowedOrigins []string, opts ...WebsocketOpt) (*WebsocketListener, error) {
	l := &WebsocketListener{
		port:   port,
		cm:     cm,
		scenes: scenes,
		static: map[string][]byte{},
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	if len(allowedOrigins) > 0 {
		allowed := make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[o] = true
		}
		l.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowed["*"] || allowed[r.Header.Get("Origin")]
		}
	}

	return l, nil
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	connCtx, cancelConns := context.WithCancel(context.Background())
	handlers := &handlerGroup{}

	svr := &http.Server{Handler: l.handler(connCtx, handlers)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svr.Shutdown(shutdownCtx)
	}()

	slog.InfoContext(ctx, "listening for websockets", "port", l.port)

	err = svr.Serve(ln)

	// Hijacked websocket connections are not tracked by the http server.
	cancelConns()
	handlers.closeAndWait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websockets on port %d: %w", l.port, err)
	}
	return nil
}

func (l *WebsocketListener) handler(ctx context.Context, handlers *handlerGroup) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/play", handlers.track(func(w http.ResponseWriter, r *http.Request) {
		l.servePlay(ctx, w, r)
	}))
	mux.HandleFunc("/scene", handlers.track(func(w http.ResponseWriter, r *http.Request) {
		l.serveScene(ctx, w, r)
	}))
	for path, data := range l.static {
		mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		})
	}
	return mux
}

func (l *WebsocketListener) servePlay(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblocks a pending read on shutdown.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	slog.InfoContext(ctx, "websocket player connected", "remote", r.RemoteAddr)
	l.cm.AcceptConnection(ctx, newWsReadWriter(conn))

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}

func (l *WebsocketListener) serveScene(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sessionId := r.URL.Query().Get("session")
	if sessionId == "" {
		http.Error(w, "session is required", http.StatusBadRequest)
		return
	}

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan []byte, wsSceneBuffer)
	unsub, err := l.scenes.SubscribeScene(sessionId, func(data []byte) {
		select {
		case msgs <- data:
		default:
			slog.WarnContext(ctx, "dropping scene snapshot for slow client", "session", sessionId)
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "subscribing to scene", "session", sessionId, "error", err)
		return
	}
	defer unsub()

	// Reads only to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(data []byte) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.DebugContext(ctx, "writing scene snapshot", "session", sessionId, "error", err)
			return false
		}
		return true
	}

	// Subscribed first so nothing published from here on is missed. A
	// snapshot may arrive twice; clients go by its version.
	if data, ok := l.scenes.LatestScene(sessionId); ok && !write(data) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-msgs:
			if !write(data) {
				return
			}
		}
	}
}

// handlerGroup tracks long lived handlers, which outlive http.Server.Shutdown
// once their connection is hijacked. After closeAndWait no handler starts.
type handlerGroup struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (g *handlerGroup) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false
	}
	g.wg.Add(1)
	return true
}

func (g *handlerGroup) closeAndWait() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()
}

func (g *handlerGroup) track(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.enter() {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		defer g.wg.Done()
		h(w, r)
	}
}

// wsReadWriter adapts a websocket to the line oriented io.ReadWriter sessions
// use. Every text frame read becomes one line of input.
type wsReadWriter struct {
	conn *websocket.Conn
	buf  []byte

	writeMu sync.Mutex
}

func newWsReadWriter(conn *websocket.Conn) *wsReadWriter {
	return &wsReadWriter{conn: conn}
}

func (w *wsReadWriter) Read(p []byte) (int, error) {
	for len(w.buf) == 0 {
		mt, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		w.buf = data
	}

	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsReadWriter) Write(p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return 0, err
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
