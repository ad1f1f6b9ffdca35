package web

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

var upgrader = websocket.Upgrader{} // use default options

// HttpDebugger streams the registers of the machine to a websocket after every cycle
type HttpDebugger struct {
	cpu *chip8.Cpu

	send chan chip8.State

	connMutex sync.Mutex
}

// NewHttpDebugger creates a new debugger
// This method will pause the cpu and register the hooks
func NewHttpDebugger(cpu *chip8.Cpu) *HttpDebugger {
	deb := &HttpDebugger{
		cpu:  cpu,
		send: make(chan chip8.State, 1),
	}

	cpu.AddAfterCycleHook(deb.afterCycle)
	cpu.AddErrorHook(deb.afterCycle)

	cpu.Stop()

	return deb
}

// afterCycle runs with the CPU locked, states are dropped if nobody is listening
func (d *HttpDebugger) afterCycle(cpu *chip8.Cpu) {
	state := cpu.Machine().State()
	select {
	case d.send <- state:
	default:
		// replace the stale state with the newest one
		select {
		case <-d.send:
		default:
		}
		select {
		case d.send <- state:
		default:
		}
	}
}

func (d *HttpDebugger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !d.connMutex.TryLock() {
		http.Error(w, "a debugger is already connected", http.StatusConflict)
		return
	}
	defer d.connMutex.Unlock()

	slog.Info("Connecting to debugger")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Upgrading the debugger connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	settings := d.cpu.ScreenSettings
	if err := conn.WriteMessage(websocket.BinaryMessage, formatAsEvent(d.cpu.State(), settings)); err != nil {
		slog.Error("Error writing debugger message", slog.Any("error", err))
		return
	}

	closed := watchClose(conn)

	slog.Info("Listening for events")
	for {
		select {
		case state := <-d.send:
			if err := conn.WriteMessage(websocket.BinaryMessage, formatAsEvent(state, settings)); err != nil {
				slog.Error("Error writing debugger message", slog.Any("error", err))
				return
			}

		case <-closed:
			slog.Info("Disconnecting from debugger")
			return

		case <-r.Context().Done():
			return
		}
	}
}

// formatAsEvent encodes the state as
// opcode(2) pc(2) V0..VF(16) I(2) sp(1) stack(2 each) dt(1) st(1) width(1) height(1)
// Multi-byte values are big endian. An empty stack has sp=0xFF.
func formatAsEvent(state chip8.State, settings chip8.ScreenSettings) []byte {
	buf := make([]byte, 0, 28+2*len(state.Stack))

	buf = append(buf, byte((state.Opcode&0xFF00)>>8))
	buf = append(buf, byte((state.Opcode&0x00FF)>>0))

	buf = append(buf, byte((state.Pc&0xFF00)>>8))
	buf = append(buf, byte((state.Pc&0x00FF)>>0))
	buf = append(buf, state.V[:]...)
	buf = append(buf, byte((state.I&0xFF00)>>8))
	buf = append(buf, byte((state.I&0x00FF)>>0))
	buf = append(buf, byte(state.Sp))
	for _, b := range state.Stack {
		buf = append(buf, byte((b&0xFF00)>>8))
		buf = append(buf, byte((b&0x00FF)>>0))
	}
	buf = append(buf, state.Dt)
	buf = append(buf, state.St)
	buf = append(buf, byte(settings.Width))
	buf = append(buf, byte(settings.Height))

	return buf
}

// watchClose drains the connection and closes the returned channel when the peer goes away
func watchClose(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return closed
}
