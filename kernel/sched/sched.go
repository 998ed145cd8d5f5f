// Package sched implements the round-robin thread scheduler: an intrusive
// doubly-linked ready queue where the tail is always the currently running
// thread, driven by the timer's tick handler.
package sched

import (
	"unsafe"

	"github.com/marmot-os/kernel/kernel/cpu"
	"github.com/marmot-os/kernel/kernel/irq"
	"github.com/marmot-os/kernel/kernel/mem/pmm"
	"github.com/marmot-os/kernel/kernel/seg"
	"github.com/marmot-os/kernel/kernel/timer"
	"github.com/marmot-os/kernel/kernel/vmm"
)

// Process owns a page directory. Threads are scheduled independently of one
// another but share their process's address space.
type Process struct {
	PageDirectory pmm.Frame
}

// Thread is one schedulable unit: a saved register/return-frame snapshot
// and the process it belongs to. next/prev are the intrusive ready-queue
// links; a thread not currently queued has both nil.
type Thread struct {
	Context irq.Context
	Process *Process

	next, prev *Thread
}

var (
	head, tail     *Thread
	currentProcess *Process

	// the following functions are mocked by tests and are automatically
	// inlined by the compiler.
	writeCR3Fn                = cpu.WriteCR3
	setKernelStackFn          = seg.SetKernelStack
	registerTickFn            = timer.RegisterHandler
	setThreadDestroyHandlerFn = vmm.SetThreadDestroyHandler
)

// Initialize empties the ready queue and registers Schedule as the timer
// tick handler, and wires thread-destroy page faults back to the
// scheduler's own dequeue/removal logic.
func Initialize() {
	head, tail = nil, nil
	currentProcess = nil

	registerTickFn(Schedule)
	setThreadDestroyHandlerFn(destroyCurrentThread)
}

// destroyCurrentThread is invoked by vmm's page-fault handler when a thread
// cooperatively exits by faulting on layout.ThreadDestroy.
func destroyCurrentThread() {
	Dequeue()
}

// Schedule is the timer tick handler: it pops the head of the ready queue,
// appends it to the tail, and context-switches into it. An empty queue is a
// no-op (idle).
//
// Wrapped in cpu.CriticalSection like the other ready-queue mutators: a
// nested timer tick (or a kernel-context Enqueue/Dequeue/Remove racing this
// one) must not observe the queue mid-splice.
func Schedule() {
	cpu.CriticalSection(func() {
		advance()
	})
}

// advance pops the head, appends it as the new tail and context-switches
// into it. Shared by Schedule and Dequeue, which both need "whatever was
// next in line now runs".
func advance() {
	next := popHead()
	if next == nil {
		return
	}
	appendTail(next)
	ContextSwitch(next)
}

// ContextSwitch switches to thread's process if it differs from the one
// currently active, publishes thread's context as the one the interrupt
// return path restores, and points TSS.esp0 one word past the saved
// context so the CPU lands on it on the next ring-3 to ring-0 transition.
func ContextSwitch(thread *Thread) {
	SwitchProcess(thread.Process)

	irq.ActiveContext = &thread.Context

	contextAddr := uintptr(unsafe.Pointer(&thread.Context))
	setKernelStackFn(contextAddr + unsafe.Sizeof(thread.Context))
}

// SwitchProcess writes CR3 with p's page directory and updates
// currentProcess, but only if p differs from the process already active:
// CR3 writes flush non-global TLB entries, so redundant writes are not
// merely wasted work, they are a correctness hazard if done every tick.
func SwitchProcess(p *Process) {
	if p == currentProcess {
		return
	}
	writeCR3Fn(p.PageDirectory.Address())
	currentProcess = p
}
