package mapview

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maps-directions/entities"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readUpdate(t *testing.T, conn *websocket.Conn) Update {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var u Update
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func TestHub_BroadcastsDrawingCalls(t *testing.T) {
	rec := NewRecorder(DefaultStyle(), DefaultRegion())
	rec.AddAnnotation(start)
	hub := NewHub(rec, DefaultStyle(), DefaultRegion(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	initMsg := readUpdate(t, conn)
	assert.Equal(t, "init", initMsg.Type)
	data, ok := initMsg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["annotations"], 1)

	hub.AddAnnotation(end)
	u := readUpdate(t, conn)
	assert.Equal(t, "annotation_added", u.Type)

	hub.FitToAnnotations()
	u = readUpdate(t, conn)
	assert.Equal(t, "viewport", u.Type)

	hub.SetOverlay([]entities.Coordinates{start.Coordinates, end.Coordinates})
	u = readUpdate(t, conn)
	assert.Equal(t, "overlay_set", u.Type)
	overlay := u.Data.(map[string]interface{})
	assert.Len(t, overlay["path"], 2)

	hub.ShowSteps(&entities.Route{ID: 1}, []entities.Step{{Instructions: "Arrive"}})
	u = readUpdate(t, conn)
	assert.Equal(t, "steps", u.Type)
}

func TestHub_DropsWhenQueueFull(t *testing.T) {
	hub := NewHub(nil, DefaultStyle(), DefaultRegion(), zap.NewNop())
	// Run is not started, so nothing drains the queue.
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.ClearOverlay()
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

func TestHub_InitPrecedesQueuedUpdates(t *testing.T) {
	rec := NewRecorder(DefaultStyle(), DefaultRegion())
	rec.AddAnnotation(start)

	for i := 0; i < 10; i++ {
		hub := NewHub(rec, DefaultStyle(), DefaultRegion(), zap.NewNop())
		srv := httptest.NewServer(hub)

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		require.NoError(t, err)

		// queued while the connection waits for Run
		hub.ClearOverlay()
		ctx, cancel := context.WithCancel(context.Background())
		go hub.Run(ctx)

		assert.Equal(t, "init", readUpdate(t, conn).Type)

		hub.AddAnnotation(end)
		u := readUpdate(t, conn)
		for u.Type == "overlay_cleared" {
			u = readUpdate(t, conn)
		}
		assert.Equal(t, "annotation_added", u.Type)

		conn.Close()
		cancel()
		srv.Close()
	}
}
