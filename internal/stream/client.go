package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/raster"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 * 1024

	minFrameInterval = time.Second / document.MaxFPS
)

// Client streams one scene to one socket. The engine is owned by the
// goroutine running WritePump.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	eng      *engine.Engine
	control  chan Message
	reload   chan *document.Document
	SceneID  string
	ClientID string
}

func NewClient(hub *Hub, conn *websocket.Conn, eng *engine.Engine, sceneID, clientID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		eng:      eng,
		control:  make(chan Message, 16),
		reload:   make(chan *document.Document, 1),
		SceneID:  sceneID,
		ClientID: clientID,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			continue
		}

		select {
		case c.control <- msg:
		default:
			slog.Warn("client control buffer full, dropping message", "client", c.ClientID)
		}
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(frameInterval(c.eng.GetFPS()))
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	if err := c.sendUpdate(ctx); err != nil {
		slog.Debug("write error", "error", err, "client", c.ClientID)
		return
	}

	for {
		var err error
		select {
		case <-ticker.C:
			if !c.eng.IsPlaying() {
				continue
			}
			var img *raster.Image
			if img, err = c.eng.Tick(ctx); err == nil {
				err = c.sendFrame(ctx, img)
			}

		case msg := <-c.control:
			if applyErr := c.apply(msg); applyErr != nil {
				err = c.sendMessage(ctx, &Message{Type: TypeError, Error: applyErr.Error()})
				break
			}
			err = c.sendUpdate(ctx)

		case doc, ok := <-c.reload:
			if !ok {
				return
			}
			if loadErr := c.eng.ReplaceDocument(doc); loadErr != nil {
				err = c.sendMessage(ctx, &Message{Type: TypeError, Error: loadErr.Error()})
				break
			}
			ticker.Reset(frameInterval(c.eng.GetFPS()))
			err = c.sendUpdate(ctx)

		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err = c.conn.Ping(pingCtx)
			cancel()

		case <-ctx.Done():
			return
		}

		if err != nil {
			slog.Debug("write error", "error", err, "client", c.ClientID)
			return
		}
	}
}

func (c *Client) apply(msg Message) error {
	switch msg.Type {
	case TypePlay:
		c.eng.Play()
	case TypePause:
		c.eng.Pause()
	case TypeToggle:
		c.eng.TogglePlay()
	case TypeSeek:
		if msg.Frame == nil {
			return fmt.Errorf("seek needs a frame")
		}
		c.eng.SetPlayhead(*msg.Frame)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// sendUpdate sends the playback state followed by the current frame.
func (c *Client) sendUpdate(ctx context.Context) error {
	state := c.eng.GetPlaybackState()
	if err := c.sendMessage(ctx, &Message{Type: TypeState, State: &state}); err != nil {
		return err
	}
	img, err := c.eng.Render(ctx)
	if err != nil {
		return err
	}
	return c.sendFrame(ctx, img)
}

func (c *Client) sendMessage(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.write(ctx, websocket.MessageText, data)
}

func (c *Client) sendFrame(ctx context.Context, img *raster.Image) error {
	var buf bytes.Buffer
	if err := img.Encode(&buf, raster.FormatPNG); err != nil {
		return err
	}
	return c.write(ctx, websocket.MessageBinary, buf.Bytes())
}

func (c *Client) write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, typ, data)
}

// frameInterval is the ticker period for fps, never shorter than
// minFrameInterval.
func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 24
	}
	return max(minFrameInterval, time.Second/time.Duration(fps))
}
