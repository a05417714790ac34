package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/echoflaresat/globeview/boundary"
	"github.com/echoflaresat/globeview/config"
	"github.com/echoflaresat/globeview/globe"
	"github.com/echoflaresat/globeview/interact"
	"github.com/echoflaresat/globeview/logging"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// session is one viewer connection. It is the globe's rendering surface:
// frames go out as JPEG binary messages.
type session struct {
	srv  *Server
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex
	quality int

	mu   sync.Mutex
	loop *globe.Loop
}

func newSession(s *Server, conn *websocket.Conn) *session {
	return &session{
		srv:  s,
		conn: conn,
		log:  s.log.With("session", logging.NewID(), "remote", conn.RemoteAddr().String()),
	}
}

func (sess *session) run(ctx context.Context) {
	defer sess.conn.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, lazy := sess.srv.config()
	sess.quality = cfg.Server.JPEGQuality

	// The boundary data is shared and may still be loading for the first
	// viewer; that is a state, not an error.
	if !lazy.Ready() {
		sess.send(outbound{Type: evStatus, State: "loading"})
	}
	src, err := lazy.Get(ctx)
	if err != nil {
		sess.fail("boundary data unavailable", err)
		return
	}

	g := globe.New(cfg, globe.Deps{
		Source:  src,
		Loader:  sess.srv.textures,
		Metrics: sess.srv.metrics,
		Log:     sess.log,
		Clock:   sess.srv.clock,
	})
	sess.bind(g)

	// Reloads that arrive during Mount queue up and run once the loop starts.
	loop := globe.NewLoop(g, cfg.Server.FrameRate)
	sess.setLoop(loop)
	if err := g.Mount(sess); err != nil {
		sess.setLoop(nil)
		sess.fail("rendering surface failed", err)
		return
	}

	loop.Start(ctx)
	defer loop.Stop()
	go func() {
		<-loop.Done()
		if err := loop.Err(); err != nil {
			sess.log.Warn("globe loop stopped", "error", err)
		}
		sess.conn.Close()
	}()

	sess.read(loop)
}

func (sess *session) setLoop(l *globe.Loop) {
	sess.mu.Lock()
	sess.loop = l
	sess.mu.Unlock()
}

// bind forwards the globe's callbacks to the viewer.
func (sess *session) bind(g *globe.Globe) {
	g.OnHover(func(current, previous *boundary.Feature, _ interact.Event) {
		sess.send(outbound{Type: evHover, Country: countryOf(current), Previous: countryOf(previous)})
	})
	g.OnClick(func(f *boundary.Feature, ev interact.Event) {
		sess.send(outbound{Type: evClick, Country: countryOf(f), Event: &ev})
	})
	g.OnGlobeClick(func(ev interact.Event) {
		sess.send(outbound{Type: evGlobeClick, Event: &ev})
	})
}

func (sess *session) read(loop *globe.Loop) {
	sess.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.log.Warn("websocket read failed", "error", err)
			}
			return
		}
		var m inbound
		if err := json.Unmarshal(data, &m); err != nil {
			sess.log.Debug("dropping malformed message", "error", err)
			continue
		}
		ok := loop.Post(func(g *globe.Globe) {
			if !m.apply(g) {
				sess.log.Debug("dropping unknown message", "type", m.Type)
			}
		})
		if !ok {
			return
		}
	}
}

// reconfigure queues cfg and src on the session's loop.
func (sess *session) reconfigure(cfg config.Config, src *boundary.Source) {
	sess.mu.Lock()
	loop := sess.loop
	sess.mu.Unlock()
	if loop == nil {
		return
	}
	loop.Post(func(g *globe.Globe) {
		sess.quality = cfg.Server.JPEGQuality
		g.SetSource(src)
		if err := g.Configure(cfg); err != nil {
			sess.log.Warn("reconfigure failed", "error", err)
		}
	})
}

// Init announces the surface size.
func (sess *session) Init(width, height int) error {
	return sess.write(websocket.TextMessage, outbound{Type: evReady, Width: width, Height: height})
}

// Present sends one frame.
func (sess *session) Present(img *image.NRGBA) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: sess.quality}); err != nil {
		return err
	}
	return sess.write(websocket.BinaryMessage, buf.Bytes())
}

func (sess *session) send(ev outbound) {
	if err := sess.write(websocket.TextMessage, ev); err != nil {
		sess.log.Debug("event not delivered", "type", ev.Type, "error", err)
	}
}

func (sess *session) write(kind int, payload any) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if kind == websocket.BinaryMessage {
		return sess.conn.WriteMessage(kind, payload.([]byte))
	}
	return sess.conn.WriteJSON(payload)
}

func (sess *session) fail(msg string, err error) {
	sess.log.Warn(msg, "error", err)
	sess.send(outbound{Type: evError, Message: msg, Retry: true})
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseInternalServerErr, msg), time.Now().Add(writeWait))
}

func (sess *session) close() {
	sess.conn.Close()
}
