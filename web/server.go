package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

// Server exposes a CPU over HTTP.
// The screen is pushed through the /display websocket and the keypad is read from /keys.
type Server struct {
	*chip8.InMemoryKeyboard
	*chip8.DummyBuzzer

	cpu      *chip8.Cpu
	debugger *HttpDebugger

	socket  *websocket.Conn
	wsMutex sync.RWMutex

	staticDir string
	statsAddr string
}

const faultPollInterval = 100 * time.Millisecond

type ServerConfig struct {
	ScreenSettings chip8.ScreenSettings
	Quirks         chip8.Quirks
	Seed           uint64
	Speed          uint
	UseDebugger    bool
	// StaticDir is served on / when not empty
	StaticDir string
	// StatsAddr enables the runtime statistics server when not empty
	StatsAddr string
	Logger    *slog.Logger
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		ScreenSettings: chip8.SmallScreen,
		Quirks:         chip8.CowgodQuirks(),
		Seed:           chip8.RandomSeed(),
		Speed:          chip8.DefaultSpeed,
		UseDebugger:    false,
		StaticDir:      "./static",
		Logger:         slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: chip8.NewInMemoryKeyboard(),
		DummyBuzzer:      chip8.NewDummyBuzzer(),

		staticDir: config.StaticDir,
		statsAddr: config.StatsAddr,
	}

	machine := chip8.NewMachine(config.Quirks, config.Seed)
	s.cpu = chip8.NewCpu(machine, s, s, s.DummyBuzzer, func(c *chip8.CpuConfig) {
		c.Speed = config.Speed
		c.ScreenSettings = config.ScreenSettings
		c.Logger = config.Logger
	})
	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.cpu)
	}

	return s
}

// Cpu returns the CPU driven by the server
func (server *Server) Cpu() *chip8.Cpu {
	return server.cpu
}

// Speed sets the instructions per second and returns the speed in use after clamping
func (server *Server) Speed(hz uint) uint {
	server.cpu.SetSpeedInHz(hz)

	return server.cpu.SpeedInHz()
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	return server.cpu.LoadProgram(program)
}

// Handler returns the routes of the server
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if server.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(server.staticDir)))
	}

	HandleControls(mux, server.cpu)
	mux.HandleFunc("/display", server.serveDisplay)
	mux.HandleFunc("/keys", server.serveKeys)
	mux.HandleFunc("/speed", server.serveSpeed)
	if server.debugger != nil {
		mux.Handle("/debugger", server.debugger)
	}

	return mux
}

// Listen boots the CPU, runs it and serves the routes until ctx is done
func (server *Server) Listen(ctx context.Context, port int) error {
	if err := server.cpu.Boot(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if server.statsAddr != "" {
		LaunchStats(ctx, server.statsAddr)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go server.runCpu(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening on port", slog.Int("port", port))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// runCpu keeps the CPU running until ctx is done.
// After a fault the CPU waits on pause until it is reset.
func (server *Server) runCpu(ctx context.Context) {
	for {
		err := server.cpu.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Error("The CPU stopped, waiting for a reset", slog.Any("error", err))
		server.cpu.Stop()

		ticker := time.NewTicker(faultPollInterval)
		for server.cpu.LastError() != nil {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
			}
		}
		ticker.Stop()
	}
}

func (server *Server) serveDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Upgrading the display connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to display")
	server.setWs(conn)
	defer server.unsetWs(conn)

	select {
	case <-watchClose(conn):
	case <-r.Context().Done():
	}
	slog.Info("Disconnecting from display")
}

// serveSpeed sets the speed from the hz query parameter and answers with the speed in use
func (server *Server) serveSpeed(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	hz := server.cpu.SpeedInHz()
	if param := r.URL.Query().Get("hz"); param != "" {
		v, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid speed %q", param), http.StatusBadRequest)
			return
		}
		hz = server.Speed(uint(v))
		slog.Info("Speed changed", slog.Uint64("hz", uint64(hz)))
	}

	fmt.Fprintf(w, "%d", hz)
}

// serveKeys reads two-byte messages: the key (0x0-0xF) and 1 when it is down or 0 when it is up
func (server *Server) serveKeys(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Upgrading the keys connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to keys")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Info("Disconnecting from keys")
			return
		}
		if len(msg) != 2 || msg[0] >= chip8.KeyCount {
			slog.Warn("Ignoring malformed key message", slog.Any("message", msg))
			continue
		}

		server.Set(msg[0], msg[1] != 0)
	}
}

// HandleControls registers the /start, /stop, /reset and /step routes of the CPU
func HandleControls(mux *http.ServeMux, cpu *chip8.Cpu) {
	mux.HandleFunc("/start", control(func() {
		slog.Info("Starting")
		cpu.Start()
	}))
	mux.HandleFunc("/stop", control(func() {
		slog.Info("Stopping")
		cpu.Stop()
	}))
	mux.HandleFunc("/reset", control(func() {
		slog.Info("Stopping and resetting")
		cpu.Stop()
		cpu.Reset()
	}))
	mux.HandleFunc("/step", func(w http.ResponseWriter, r *http.Request) {
		setHeaders(w)

		slog.Info("Single step")
		if err := cpu.Step(); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
		}
	})
}

func control(action func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setHeaders(w)
		action()
	}
}

func setHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}
