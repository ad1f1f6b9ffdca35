package chip8

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrCpuIsNotBooted = errors.New("the CPU has not been booted properly")

// TimerFrequency is the rate at which the delay and sound timers decrement
const TimerFrequency = 60

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 5000
	MinSpeed     uint = 5
)

type CpuConfig struct {
	Speed          uint
	ScreenSettings ScreenSettings
	Logger         *slog.Logger
}
type CpuConfigCb func(config *CpuConfig)

// Cpu drives a Machine: it runs instructions at the configured speed,
// ticks the timers at 60Hz and talks to the display, keyboard and buzzer.
type Cpu struct {
	mu sync.Mutex

	machine *Machine

	cycles uint
	frames uint

	speedInHz uint
	step      time.Duration

	ScreenSettings ScreenSettings

	Display  Display
	Keyboard Keyboard
	Buzzer   Buzzer

	logger *slog.Logger

	isBooted  bool
	isPaused  bool
	isPlaying bool
	lastError error

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

func NewCpu(machine *Machine, display Display, keyboard Keyboard, buzzer Buzzer, configs ...CpuConfigCb) *Cpu {
	config := &CpuConfig{
		Speed:          DefaultSpeed,
		ScreenSettings: SmallScreen,
		Logger:         slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	cpu := &Cpu{
		machine: machine,

		ScreenSettings: config.ScreenSettings,

		Display:  display,
		Keyboard: keyboard,
		Buzzer:   buzzer,

		logger: config.Logger,

		beforeFrameHooks: make([]Hook, 0),
		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
	cpu.setSpeedInHz(config.Speed)

	return cpu
}

// Machine returns the machine driven by the CPU.
// It must not be mutated while the CPU is running.
func (cpu *Cpu) Machine() *Machine {
	return cpu.machine
}

func (cpu *Cpu) IsRunning() bool {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return !cpu.isPaused
}

func (cpu *Cpu) SpeedInHz() uint {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.speedInHz
}

// SetSpeedInHz sets the number of instructions per second, clamped to [MinSpeed, MaxSpeed]
func (cpu *Cpu) SetSpeedInHz(inHz uint) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.setSpeedInHz(inHz)
}

func (cpu *Cpu) setSpeedInHz(inHz uint) {
	cpu.speedInHz = min(max(inHz, MinSpeed), MaxSpeed)
	cpu.step = time.Second / time.Duration(cpu.speedInHz)
}

func (cpu *Cpu) Cycles() uint {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.cycles
}

func (cpu *Cpu) Frames() uint {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.frames
}

// LastError returns the error that stopped the CPU, if any
func (cpu *Cpu) LastError() error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.lastError
}

// State returns a copy of the machine registers
func (cpu *Cpu) State() State {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.machine.State()
}

// Boot initializes all the components
// If the CPU was already booted, this method is a noop
func (cpu *Cpu) Boot() error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if cpu.isBooted {
		return nil
	}

	if err := cpu.Display.Boot(); err != nil {
		return err
	}

	if err := cpu.Keyboard.Boot(); err != nil {
		return err
	}

	if err := cpu.Buzzer.Boot(); err != nil {
		return err
	}

	cpu.isBooted = true

	return nil
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (cpu *Cpu) LoadProgram(program []byte) error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if err := cpu.machine.LoadProgram(program); err != nil {
		return err
	}
	cpu.reset()

	cpu.logger.Info("Program loaded", slog.Int("size", len(program)))

	return nil
}

// Reset restarts the loaded program and clears the last error
func (cpu *Cpu) Reset() {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.machine.Reset()
	cpu.reset()
}

func (cpu *Cpu) reset() {
	cpu.frames = 0
	cpu.cycles = 0
	cpu.lastError = nil
	cpu.silence()

	if cpu.isBooted {
		if err := cpu.render(); err != nil {
			cpu.logger.Warn("Error rendering the screen", slog.Any("error", err))
		}
	}
}

// Start resumes the execution
func (cpu *Cpu) Start() {
	cpu.mu.Lock()
	cpu.isPaused = false
	cpu.mu.Unlock()
}

// Stop pauses the execution. Timers are paused as well.
func (cpu *Cpu) Stop() {
	cpu.mu.Lock()
	cpu.isPaused = true
	cpu.mu.Unlock()
}

// RunAtSpeed sets the speed and starts the loop
func (cpu *Cpu) RunAtSpeed(ctx context.Context, speedInHz uint) error {
	cpu.SetSpeedInHz(speedInHz)
	return cpu.Run(ctx)
}

// Run executes instructions at the current speed and ticks the timers at 60Hz
// until the context is done or an instruction fails.
func (cpu *Cpu) Run(ctx context.Context) error {
	if err := cpu.precondition(); err != nil {
		return err
	}

	timers := time.NewTicker(time.Second / TimerFrequency)
	defer timers.Stop()

	cpu.mu.Lock()
	step := cpu.step
	cpu.mu.Unlock()
	instructions := time.NewTicker(step)
	defer instructions.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timers.C:
			if err := cpu.runFrame(false); err != nil {
				return err
			}

		case <-instructions.C:
			if err := cpu.runCycle(false); err != nil {
				return err
			}

			cpu.mu.Lock()
			if cpu.step != step {
				step = cpu.step
				instructions.Reset(step)
			}
			cpu.mu.Unlock()
		}
	}
}

// Step runs a single cycle bypassing the pause state
func (cpu *Cpu) Step() error {
	if err := cpu.precondition(); err != nil {
		return err
	}

	return cpu.runCycle(true)
}

// Tick runs a single timer frame bypassing the pause state
func (cpu *Cpu) Tick() error {
	if err := cpu.precondition(); err != nil {
		return err
	}

	return cpu.runFrame(true)
}

func (cpu *Cpu) precondition() error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if !cpu.isBooted {
		return ErrCpuIsNotBooted
	}

	return cpu.lastError
}

func (cpu *Cpu) runCycle(force bool) error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if cpu.lastError != nil {
		return cpu.lastError
	}
	if cpu.isPaused && !force {
		return nil
	}

	cpu.runHooks(cpu.beforeCycleHooks)

	cpu.machine.SetKeys(Snapshot(cpu.Keyboard))
	ins, err := cpu.machine.Step()
	if err != nil {
		return cpu.fail(err)
	}
	if ins.Op == OpNop {
		cpu.logger.Debug("Unknown opcode ignored",
			slog.String("opcode", ins.String()),
			slog.Int("pc", int(cpu.machine.Pc)-2))
	}
	cpu.cycles++

	cpu.runHooks(cpu.afterCycleHooks)

	return nil
}

func (cpu *Cpu) runFrame(force bool) error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if cpu.lastError != nil {
		return cpu.lastError
	}
	if cpu.isPaused && !force {
		return nil
	}

	cpu.runHooks(cpu.beforeFrameHooks)

	cpu.machine.TickTimers()

	if cpu.machine.IsSoundTimerActive() != cpu.isPlaying {
		cpu.isPlaying = cpu.machine.IsSoundTimerActive()
		if cpu.isPlaying {
			cpu.Buzzer.Play()
		} else {
			cpu.Buzzer.Stop()
		}
	}

	if cpu.machine.ScreenChanged() {
		if err := cpu.render(); err != nil {
			return cpu.fail(err)
		}
	}

	cpu.frames++

	cpu.runHooks(cpu.afterFrameHooks)

	return nil
}

func (cpu *Cpu) render() error {
	return cpu.Display.Render(cpu.machine.Framebuffer.Pack(), cpu.ScreenSettings)
}

// silence stops a tone left playing by a program that no longer runs
func (cpu *Cpu) silence() {
	if cpu.isPlaying {
		cpu.isPlaying = false
		cpu.Buzzer.Stop()
	}
}

func (cpu *Cpu) fail(err error) error {
	cpu.lastError = err
	cpu.silence()
	cpu.logger.Error("CPU stopped", slog.Any("error", err))
	if cpu.logger.Enabled(context.Background(), slog.LevelDebug) {
		cpu.logger.Debug("Memory at the fault", slog.String("memory", cpu.machine.Memory.String()))
	}
	cpu.runHooks(cpu.errorHooks)

	return err
}
