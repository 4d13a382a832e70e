package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softrender/softrender/internal/auth"
	"github.com/softrender/softrender/internal/document"
	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/raster"
	"github.com/softrender/softrender/internal/scenes"
)

type loader map[string]*document.Document

func (l loader) Engine(_ context.Context, sceneID string) (*engine.Engine, error) {
	doc, ok := l[sceneID]
	if !ok {
		return nil, scenes.ErrNotFound
	}
	eng := engine.NewEngine()
	if err := eng.SetDocument(doc); err != nil {
		return nil, err
	}
	return eng, nil
}

func squareDoc(frames, fps int) *document.Document {
	return &document.Document{
		Name:      "square",
		Width:     20,
		Height:    10,
		Color:     "#00ff00",
		Animation: &document.Animation{Frames: frames, FPS: fps},
		Root:      "main",
		Modules: map[string][]document.Op{
			"main": {{Op: document.OpPolygon, Points: [][]float64{{0, 0}, {4, 0}, {4, 4}, {0, 4}}}},
		},
	}
}

func serve(t *testing.T, hub *Hub, authSvc TokenValidator) *httptest.Server {
	t.Helper()
	h := NewHandler(hub, loader{"scene_a": squareDoc(5, 50)}, authSvc, []string{"http://localhost:5173"})
	r := mux.NewRouter()
	r.Handle("/ws/scenes/{sceneId}", h)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) engine.PlaybackState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, TypeState, msg.Type, string(data))
	require.NotNil(t, msg.State)
	return *msg.State
}

func readFrame(t *testing.T, conn *websocket.Conn) *raster.Image {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageBinary, typ)
	img, err := raster.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(msg)))
}

func TestStreamSendsStateAndFrames(t *testing.T) {
	hub := NewHub()
	conn := dial(t, serve(t, hub, nil), "/ws/scenes/scene_a")

	state := readState(t, conn)
	assert.Equal(t, engine.PlaybackState{Frame: 0, Playing: false, FPS: 50, TotalFrames: 5}, state)
	img := readFrame(t, conn)
	assert.Equal(t, 10, img.Rows())
	assert.Equal(t, 16, img.Count(raster.RGB(0, 1, 0)))
	assert.Equal(t, 1, hub.Count("scene_a"))

	send(t, conn, `{"type": "seek", "frame": 3}`)
	assert.Equal(t, 3, readState(t, conn).Frame)
	readFrame(t, conn)

	send(t, conn, `{"type": "seek"}`)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"error"`)

	send(t, conn, `{"type": "play"}`)
	assert.True(t, readState(t, conn).Playing)
	readFrame(t, conn)
	readFrame(t, conn) // next tick
}

func TestStreamReload(t *testing.T) {
	hub := NewHub()
	conn := dial(t, serve(t, hub, nil), "/ws/scenes/scene_a")
	readState(t, conn)
	readFrame(t, conn)

	longer := squareDoc(8, 50)
	longer.Color = "#ff0000"
	assert.Equal(t, 1, hub.Reload("scene_a", longer))
	assert.Equal(t, 0, hub.Reload("scene_b", longer))

	assert.Equal(t, 8, readState(t, conn).TotalFrames)
	assert.Equal(t, 16, readFrame(t, conn).Count(raster.RGB(1, 0, 0)))
}

func TestStreamStopDisconnects(t *testing.T) {
	hub := NewHub()
	conn := dial(t, serve(t, hub, nil), "/ws/scenes/scene_a")
	readState(t, conn)
	readFrame(t, conn)

	hub.Stop()
	assert.Equal(t, 0, hub.Count("scene_a"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestStreamRejects(t *testing.T) {
	svc := auth.NewService("secret")
	srv := serve(t, NewHub(), svc)
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing token", "/ws/scenes/scene_a", http.StatusUnauthorized},
		{"bad token", "/ws/scenes/scene_a?token=nope", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, resp, err := websocket.Dial(ctx, base+tc.path, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	token, err := svc.IssueToken("viewer", time.Minute)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, base+"/ws/scenes/scene_missing?token="+token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn := dial(t, srv, "/ws/scenes/scene_a?token="+token)
	readState(t, conn)
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, time.Second/24, frameInterval(0))
	assert.Equal(t, time.Second/12, frameInterval(12))
	assert.Equal(t, minFrameInterval, frameInterval(document.MaxFPS))
	assert.Equal(t, minFrameInterval, frameInterval(2_000_000_000))
	assert.Positive(t, frameInterval(math.MaxInt))
}
