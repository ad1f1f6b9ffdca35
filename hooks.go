package chip8

// Hook is called by the CPU while it holds its lock.
// Hooks must read the state through cpu.Machine() and must not call back into the CPU.
type Hook func(cpu *Cpu)

// AddBeforeCycleHook adds a hook that will run before every cycle of the CPU
func (cpu *Cpu) AddBeforeCycleHook(h Hook) int {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.beforeCycleHooks = append(cpu.beforeCycleHooks, h)

	return len(cpu.beforeCycleHooks)
}

// AddAfterCycleHook adds a hook that will run after every cycle of the CPU
func (cpu *Cpu) AddAfterCycleHook(h Hook) int {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.afterCycleHooks = append(cpu.afterCycleHooks, h)

	return len(cpu.afterCycleHooks)
}

// AddBeforeFrameHook adds a hook that will run before every timer frame
func (cpu *Cpu) AddBeforeFrameHook(h Hook) int {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.beforeFrameHooks = append(cpu.beforeFrameHooks, h)

	return len(cpu.beforeFrameHooks)
}

// AddAfterFrameHook adds a hook that will run after every timer frame
func (cpu *Cpu) AddAfterFrameHook(h Hook) int {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.afterFrameHooks = append(cpu.afterFrameHooks, h)

	return len(cpu.afterFrameHooks)
}

// AddErrorHook adds a hook that will run when an instruction faults
func (cpu *Cpu) AddErrorHook(h Hook) int {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.errorHooks = append(cpu.errorHooks, h)

	return len(cpu.errorHooks)
}

func (cpu *Cpu) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(cpu)
	}
}
