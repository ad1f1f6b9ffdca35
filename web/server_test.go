package web

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

const testSeed = 0xC8

func newTestServer(t *testing.T, program []byte, configs ...ServerConfigCb) (*Server, *httptest.Server) {
	t.Helper()

	configs = append([]ServerConfigCb{func(config *ServerConfig) {
		config.Seed = testSeed
		config.StaticDir = ""
	}}, configs...)
	server := NewServer(configs...)
	assert.NoError(t, server.Cpu().Boot())
	assert.NoError(t, server.LoadProgram(program))

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return server, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+path, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	assert.NoError(t, err)
	resp.Body.Close()

	return resp
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf(`timed out waiting: %s`, msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestControls(t *testing.T) {
	server, ts := newTestServer(t, []byte{
		0x60, 0x0A,
		0x70, 0x05,
	})

	resp := get(t, ts, "/stop")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.False(t, server.Cpu().IsRunning())

	get(t, ts, "/step")
	get(t, ts, "/step")
	state := server.Cpu().State()
	assert.Equal(t, byte(15), state.V[0])
	assert.Equal(t, uint16(0x204), state.Pc)

	get(t, ts, "/start")
	assert.True(t, server.Cpu().IsRunning())

	get(t, ts, "/reset")
	assert.False(t, server.Cpu().IsRunning())
	assert.Equal(t, uint16(0x200), server.Cpu().State().Pc)
}

func TestSpeed(t *testing.T) {
	server, ts := newTestServer(t, nil)

	speed := func(query string) (int, string) {
		resp, err := http.Get(ts.URL + "/speed" + query)
		assert.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		assert.NoError(t, err)

		return resp.StatusCode, string(body)
	}

	status, body := speed("?hz=1000")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1000", body)
	assert.Equal(t, uint(1000), server.Cpu().SpeedInHz())

	_, body = speed("")
	assert.Equal(t, "1000", body)

	_, body = speed("?hz=1")
	assert.Equal(t, fmt.Sprintf("%d", chip8.MinSpeed), body, "clamped")

	status, _ = speed("?hz=-3")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, chip8.MinSpeed, server.Cpu().SpeedInHz())
}

func TestStepReportsFaults(t *testing.T) {
	_, ts := newTestServer(t, []byte{
		0x00, 0xEE,
	})

	resp := get(t, ts, "/step")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestKeys(t *testing.T) {
	server, ts := newTestServer(t, nil)
	conn := dial(t, ts, "/keys")

	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x5, 1}))
	eventually(t, func() bool { return server.IsPressed(0x5) }, "key 5 down")

	// malformed messages are ignored
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x5}))
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x10, 1}))

	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x5, 0}))
	eventually(t, func() bool { return !server.IsPressed(0x5) }, "key 5 up")
}

func TestDisplay(t *testing.T) {
	server, ts := newTestServer(t, []byte{
		0xD0, 0x01,
	})
	conn := dial(t, ts, "/display")
	eventually(t, func() bool {
		server.wsMutex.RLock()
		defer server.wsMutex.RUnlock()
		return server.socket != nil
	}, "display connected")

	// I = 0 points at the glyph of 0
	assert.NoError(t, server.Cpu().Step())
	assert.NoError(t, server.Cpu().Tick())

	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, msg, err := conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	assert.Equal(t, chip8.DISPLAY_WIDTH*chip8.DISPLAY_HEIGHT/8, len(msg))
	assert.Equal(t, byte(0xF0), msg[0])
}

func TestRenderWithoutDisplay(t *testing.T) {
	server, _ := newTestServer(t, nil)

	fb := chip8.Framebuffer{}
	assert.NoError(t, server.Render(fb.Pack(), chip8.SmallScreen))
}

func TestDebugger(t *testing.T) {
	server, ts := newTestServer(t, []byte{
		0x60, 0x0A,
		0x22, 0x08,
	}, func(config *ServerConfig) {
		config.UseDebugger = true
	})
	assert.False(t, server.Cpu().IsRunning(), "the debugger starts on pause")

	conn := dial(t, ts, "/debugger")
	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, msg, err := conn.ReadMessage()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x0A, 0x02, 0x00}, msg[:4])

	get(t, ts, "/step")
	get(t, ts, "/step")

	// states may be coalesced, read until the call shows up
	for {
		_, msg, err = conn.ReadMessage()
		assert.NoError(t, err)
		if msg[2] == 0x02 && msg[3] == 0x08 {
			break
		}
	}
	assert.Equal(t, byte(0x0A), msg[4], "V0")
	assert.Equal(t, byte(0), msg[22], "sp")
	assert.Equal(t, []byte{0x02, 0x04}, msg[23:25], "return address")
}

func TestOnlyOneDebugger(t *testing.T) {
	_, ts := newTestServer(t, nil, func(config *ServerConfig) {
		config.UseDebugger = true
	})
	conn := dial(t, ts, "/debugger")
	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/debugger", nil)
	assert.True(t, err != nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
