package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/models"
	"collabCanvas/internal/participant"
	"collabCanvas/internal/protocol"
	"collabCanvas/internal/relay"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relayServer(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	opts := relay.DefaultOptions()
	opts.AutosaveInterval = 0
	hub := relay.NewHub(relay.NewLocalBroker(), nil, opts, nil)
	go func() { _ = hub.Run(ctx) }()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := r.Header.Get("Authorization")
		hub.Serve(ctx, conn, relay.Identity{ParticipantID: id, Name: id, BoardID: 1})
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	time.Sleep(20 * time.Millisecond)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func join(t *testing.T, url, id string) *participant.Participant {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	conn, err := Dial(ctx, url, id, nil)
	require.NoError(t, err)
	p := participant.New(participant.WithID(id), participant.WithTransport(conn))
	go func() { _ = conn.Run(ctx, p) }()
	select {
	case <-conn.Loaded():
	case <-time.After(2 * time.Second):
		t.Fatal("no state-load from relay")
	}
	return p
}

func TestParticipantsConvergeThroughRelay(t *testing.T) {
	url := relayServer(t)
	alice := join(t, url, "alice")
	bob := join(t, url, "bob")

	alice.SetTool(enums.TOOL_RECTANGLE)
	alice.PointerDown(models.Point{X: 50, Y: 50})
	alice.PointerMove(models.Point{X: 30, Y: 40})
	alice.PointerUp(models.Point{X: 10, Y: 30})

	bob.PointerDown(models.Point{X: 1, Y: 1})
	bob.PointerMove(models.Point{X: 2, Y: 2})
	bob.PointerUp(models.Point{X: 3, Y: 3})

	require.Eventually(t, func() bool {
		strokes := alice.Snapshot().Strokes
		return alice.Snapshot().Len() == 2 && bob.Snapshot().Len() == 2 && len(strokes) == 1 && strokes[0].Closed
	}, 2*time.Second, 10*time.Millisecond)

	shapes := bob.Snapshot().Shapes
	require.Len(t, shapes, 1)
	assert.Equal(t, models.Rect{X: 10, Y: 30, Width: 40, Height: 20}, shapes[0].Bounds())
	assert.Equal(t, "alice", shapes[0].AuthorID)

	strokes := alice.Snapshot().Strokes
	require.Len(t, strokes, 1)
	assert.Len(t, strokes[0].Points, 2)
	assert.True(t, strokes[0].Closed)

	require.True(t, bob.Undo())
	require.Eventually(t, func() bool { return alice.Snapshot().Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestEmitNeverBlocksOnFullBuffer(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	hold := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-hold
	}))
	t.Cleanup(func() {
		close(hold)
		server.Close()
	})

	conn, err := Dial(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http"), "", nil)
	require.NoError(t, err)

	// Run is not started, so nothing drains the send buffer.
	emitted := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+10; i++ {
			conn.Emit(protocol.CursorUpdate{Position: models.Point{X: float64(i)}})
		}
		close(emitted)
	}()
	select {
	case <-emitted:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full send buffer")
	}
	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed after overflowing")
	}
}
