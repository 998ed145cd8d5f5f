package sched

import "github.com/marmot-os/kernel/kernel/cpu"

// popHead unlinks and returns the current head, or nil if the queue is
// empty.
func popHead() *Thread {
	h := head
	if h == nil {
		return nil
	}
	unlink(h)
	return h
}

// appendTail links thread in as the new tail, after whatever is currently
// there.
func appendTail(thread *Thread) {
	thread.next = nil
	thread.prev = tail
	if tail != nil {
		tail.next = thread
	} else {
		head = thread
	}
	tail = thread
}

// unlink removes thread from the queue, wherever it sits, patching up its
// neighbors' links and head/tail as needed. thread's own links are cleared.
func unlink(thread *Thread) {
	if thread.prev != nil {
		thread.prev.next = thread.next
	} else {
		head = thread.next
	}
	if thread.next != nil {
		thread.next.prev = thread.prev
	} else {
		tail = thread.prev
	}
	thread.next, thread.prev = nil, nil
}

// New appends thread as the new tail and context-switches to it
// immediately: the new thread runs now, and whatever was previously running
// becomes second-to-last.
func New(thread *Thread) {
	appendTail(thread)
	ContextSwitch(thread)
}

// Enqueue inserts thread just before the tail, preserving the "tail is the
// running thread" invariant. An empty queue is a special case: thread
// becomes both head and tail (but enqueueing into an empty queue does not,
// by itself, make it run — the caller drives that via New or the next
// tick).
//
// Called from ordinary kernel context, so the splice is wrapped in
// cpu.CriticalSection: a timer tick landing mid-splice would see the ready
// queue half-linked, same hazard pmm guards against on the free-frame
// stack.
func Enqueue(thread *Thread) {
	cpu.CriticalSection(func() {
		enqueueLocked(thread)
	})
}

func enqueueLocked(thread *Thread) {
	if tail == nil {
		thread.next, thread.prev = nil, nil
		head, tail = thread, thread
		return
	}

	before := tail.prev
	thread.prev = before
	thread.next = tail
	tail.prev = thread
	if before != nil {
		before.next = thread
	} else {
		head = thread
	}
}

// Dequeue pops the tail (the currently running thread) and, if any thread
// remains, advances the queue so the new head starts running. It returns
// the descheduled thread so the caller can destroy or park it.
//
// Called from ordinary kernel context; guarded by cpu.CriticalSection for
// the same reason as Enqueue.
func Dequeue() *Thread {
	var removed *Thread
	cpu.CriticalSection(func() {
		removed = dequeueLocked()
	})
	return removed
}

func dequeueLocked() *Thread {
	removed := tail
	if removed == nil {
		return nil
	}
	unlink(removed)

	if head != nil {
		advance()
	}

	return removed
}

// Remove deschedules thread. If it is the currently running thread this is
// equivalent to Dequeue (and advances the queue); otherwise thread is
// simply unlinked from wherever it sits.
//
// Called from ordinary kernel context; guarded by cpu.CriticalSection for
// the same reason as Enqueue. Uses dequeueLocked directly rather than
// calling Dequeue so the whole operation runs under a single
// critical section instead of nesting them (cpu.CriticalSection's
// disable/restore pairing is not reentrant).
func Remove(thread *Thread) *Thread {
	var removed *Thread
	cpu.CriticalSection(func() {
		if thread == Current() {
			removed = dequeueLocked()
			return
		}
		unlink(thread)
		removed = thread
	})
	return removed
}

// Current returns the tail-associated thread, or nil if the queue is
// empty.
func Current() *Thread {
	return tail
}
