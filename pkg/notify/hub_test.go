package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "test cleanup")
	})
	return conn
}

func readNotification(t *testing.T, conn *websocket.Conn) Notification {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)

	var n Notification
	require.NoError(t, json.Unmarshal(data, &n))
	return n
}

func TestHub_PublishKeepsHistory(t *testing.T) {
	h := NewHub(WithHistory(2))

	h.NotifySuccess("Uom created successfully")
	h.NotifyError("Failed to fetch Pallet")
	h.NotifySuccess("Item deleted successfully")

	recent := h.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, KindError, recent[0].Kind)
	assert.Equal(t, "Failed to fetch Pallet", recent[0].Message)
	assert.Equal(t, "Item deleted successfully", recent[1].Message)
	assert.NotEqual(t, recent[0].ID, recent[1].ID)
}

func TestHub_NoHistory(t *testing.T) {
	h := NewHub(WithHistory(0))
	h.NotifySuccess("ok")
	assert.Empty(t, h.Recent())
}

func TestHub_Subscribe(t *testing.T) {
	h := NewHub()
	_, ch, cancel := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	h.NotifyError("boom")
	n := <-ch
	assert.Equal(t, KindError, n.Kind)
	assert.Equal(t, "boom", n.Message)

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_FullQueueDrops(t *testing.T) {
	var buf bytes.Buffer
	h := NewHub(WithBuffer(1), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	_, ch, cancel := h.Subscribe()
	defer cancel()

	h.NotifySuccess("first")
	h.NotifySuccess("second")

	assert.Equal(t, "first", (<-ch).Message)
	select {
	case n := <-ch:
		t.Fatalf("unexpected notification %q", n.Message)
	default:
	}
	assert.Contains(t, buf.String(), "subscriber queue full")
}

func TestHub_WebSocketReplayAndStream(t *testing.T) {
	h := NewHub()
	h.NotifySuccess("Uom created successfully")

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	conn := connectWS(t, ts.URL)

	replayed := readNotification(t, conn)
	assert.Equal(t, "Uom created successfully", replayed.Message)

	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	h.NotifyError("Failed to update Uom")

	live := readNotification(t, conn)
	assert.Equal(t, KindError, live.Kind)
	assert.Equal(t, "Failed to update Uom", live.Message)
}

func TestHub_WebSocketDisconnectReleasesSubscriber(t *testing.T) {
	h := NewHub()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	conn := connectWS(t, ts.URL)
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	assert.Eventually(t, func() bool { return h.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	n.NotifySuccess("Role created successfully")
	n.NotifyError("Failed to delete Role")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "Role created successfully", first["msg"])
	assert.Equal(t, "success", first["kind"])
	assert.Equal(t, "notify", first["component"])
	assert.Equal(t, "WARN", second["level"])
	assert.Equal(t, "error", second["kind"])
}

func TestLogNotifier_NilLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.NotPanics(t, func() {
		n.NotifySuccess("x")
		n.NotifyError("y")
	})
}

func TestMulti(t *testing.T) {
	a, b := NewHub(), NewHub()
	m := Multi{a, b}

	m.NotifySuccess("ok")
	m.NotifyError("bad")

	for _, h := range []*Hub{a, b} {
		recent := h.Recent()
		require.Len(t, recent, 2)
		assert.Equal(t, KindSuccess, recent[0].Kind)
		assert.Equal(t, KindError, recent[1].Kind)
	}
}
