package wsmonitor

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/scalesim/pkg/log"
	"github.com/bft-labs/scalesim/pkg/scalesim"
)

func startMonitor(t *testing.T) *Plugin {
	t.Helper()
	p := New(Config{Addr: "127.0.0.1:0", ClientBuffer: 4})

	err := p.Initialize(context.Background(), scalesim.PluginConfig{
		InputFile:    "scales_input.csv",
		ChannelCount: 6,
		Loop:         true,
		Logger:       log.NewNoopLogger(),
		Status:       func() scalesim.State { return scalesim.StateRunning },
		Stats: func() scalesim.Stats {
			return scalesim.Stats{FramesSent: 12, SendFailures: 1, Passes: 2}
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func dial(t *testing.T, p *Plugin) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+p.Addr()+"/ws", nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return p.hub.ClientCount() == 1 },
		2*time.Second, 5*time.Millisecond)
	return conn
}

func TestMonitor_Status(t *testing.T) {
	p := startMonitor(t)

	resp, err := http.Get("http://" + p.Addr() + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "Running", status.State)
	assert.Equal(t, "scales_input.csv", status.Session.InputFile)
	assert.Equal(t, 6, status.Session.ChannelCount)
	assert.True(t, status.Session.Loop)
	assert.Equal(t, scalesim.Stats{FramesSent: 12, SendFailures: 1, Passes: 2}, status.Stats)
	assert.Zero(t, status.Clients)
}

func TestMonitor_StatusRejectsPost(t *testing.T) {
	p := startMonitor(t)

	resp, err := http.Post("http://"+p.Addr()+"/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMonitor_BroadcastsFrames(t *testing.T) {
	p := startMonitor(t)
	conn := dial(t, p)

	frame := "/\r\nA    :      1 Kg\r\nB    :      2 Kg\r\nC    :      3 Kg\r\nD    :      4 Kg\r\nTOTAL:     10 Kg\r\n\\\r\n"
	p.ObserveFrame(scalesim.FrameEvent{
		Pass:   1,
		Line:   2,
		Masses: []int{1, 2, 3, 4},
		Total:  10,
		Frame:  []byte(frame),
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg FrameMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, 1, msg.Pass)
	assert.Equal(t, 2, msg.Line)
	assert.Equal(t, []int{1, 2, 3, 4}, msg.Masses)
	assert.Equal(t, 10, msg.Total)
	assert.Equal(t, frame, msg.Frame)
	assert.NotEmpty(t, msg.SentAt)
}

func TestMonitor_ClientDisconnect(t *testing.T) {
	p := startMonitor(t)
	conn := dial(t, p)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return p.hub.ClientCount() == 0 },
		2*time.Second, 5*time.Millisecond)

	// Nobody listening: must not block or panic.
	p.ObserveFrame(scalesim.FrameEvent{Masses: []int{1, 2, 3, 4}, Total: 10})
}

func TestMonitor_ShutdownClosesClients(t *testing.T) {
	p := New(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, p.Initialize(context.Background(), scalesim.PluginConfig{Logger: log.NewNoopLogger()}))
	addr := p.Addr()
	conn := dial(t, p)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Empty(t, p.Addr())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	_, err = http.Get("http://" + addr + "/status")
	assert.Error(t, err)

	require.NoError(t, p.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestMonitor_ListenError(t *testing.T) {
	first := startMonitor(t)

	second := New(Config{Addr: first.Addr()})
	err := second.Initialize(context.Background(), scalesim.PluginConfig{Logger: log.NewNoopLogger()})
	assert.Error(t, err)
}

func TestHub_DropsSlowClient(t *testing.T) {
	p := startMonitor(t)
	dial(t, p)

	// The client never reads; once its queue and socket buffers fill it is dropped.
	payload := make([]byte, 64<<10)
	for i := 0; i < 1000 && p.hub.ClientCount() > 0; i++ {
		p.hub.Broadcast(payload)
	}
	assert.Zero(t, p.hub.ClientCount())
}
