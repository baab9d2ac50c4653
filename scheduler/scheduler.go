// Package scheduler implements the guest machine's single global event
// queue: a minimum-heap of (deadline-cycle, event-kind) pairs ordered by
// deadline with insertion-order tie-breaking, plus the monotonic cycle
// counter every device measures its own progress against.
//
// The teacher codebase (jeebie/events/events.go) models its GameBoy event
// queue as a buffered channel; that shape cannot give stable deadline
// ordering or insertion-order tie-breaks, both of which the guest machine's
// scheduler fairness property requires (equal-deadline events must fire in
// the order they were scheduled). This package keeps the teacher's event
// enum + Schedule/GetNextEvent API shape but backs it with container/heap.
package scheduler

import "container/heap"

// EventKind enumerates every kind of event a device can post.
type EventKind int

const (
	Vblank EventKind = iota
	HblankStart
	HblankEnd
	DmaFinished0
	DmaFinished1
	DmaFinished2
	DmaFinished3
	DmaFinished4
	DmaFinished5
	DmaFinished6
	CDExecuteCommand
	CDLatchInterrupts
	CDCheckCommands
	CDCommandTransfer
	CDParamTransfer
	CDResponseTransfer
	CDResponseClear
	Timer0
	Timer1
	Timer2
	CDCheckIrqs
	CDGetId
	CDGetTOC
	CDSeek
	CDStat
	CDRead
	TickSpu
	ControllerByteTransfer
)

// DmaFinished returns the event kind for the given DMA channel (0..6).
func DmaFinished(channel int) EventKind {
	return DmaFinished0 + EventKind(channel)
}

// Timer returns the event kind for the given timer id (0..2).
func Timer(id int) EventKind {
	return Timer0 + EventKind(id)
}

type event struct {
	deadline uint64
	kind     EventKind
	seq      uint64 // insertion order, for stable tie-break
	index    int    // heap index, maintained by container/heap
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x any) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler owns the monotonic cycle counter and the pending-event heap.
type Scheduler struct {
	now    uint64
	nextID uint64
	heap   eventHeap
}

// New returns a scheduler with the cycle counter at zero and no events.
func New() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.heap)
	return s
}

// Now returns the current cycle count.
func (s *Scheduler) Now() uint64 { return s.now }

// Schedule inserts an event to fire at now+delay. delay==0 fires on the next
// GetNextEvent call.
func (s *Scheduler) Schedule(kind EventKind, delay uint64) {
	e := &event{deadline: s.now + delay, kind: kind, seq: s.nextID}
	s.nextID++
	heap.Push(&s.heap, e)
}

// ScheduleAt inserts an event to fire at an absolute cycle deadline. The
// periodic handlers in this repository (GPU HblankEnd, SPU TickSpu) do not
// call it: they re-arm with Schedule, relative to the cycle they ran at, so
// any overshoot of the prior deadline carries into the next one.
func (s *Scheduler) ScheduleAt(kind EventKind, deadline uint64) {
	e := &event{deadline: deadline, kind: kind, seq: s.nextID}
	s.nextID++
	heap.Push(&s.heap, e)
}

// Remove cancels all pending events of the given kind. Returns the number
// removed.
func (s *Scheduler) Remove(kind EventKind) int {
	removed := 0
	kept := s.heap[:0]
	for _, e := range s.heap {
		if e.kind == kind {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.heap = kept
	heap.Init(&s.heap)
	return removed
}

// Tick advances the cycle counter by n.
func (s *Scheduler) Tick(n uint64) {
	s.now += n
}

// GetNextEvent pops and returns the head event if its deadline has passed,
// along with how many cycles the scheduler overshot it by. ok is false if
// no event is due yet.
func (s *Scheduler) GetNextEvent() (kind EventKind, cyclesLate uint64, ok bool) {
	if len(s.heap) == 0 {
		return 0, 0, false
	}
	head := s.heap[0]
	if head.deadline > s.now {
		return 0, 0, false
	}
	heap.Pop(&s.heap)
	return head.kind, s.now - head.deadline, true
}

// Pending reports whether any event of the given kind is currently queued.
func (s *Scheduler) Pending(kind EventKind) bool {
	for _, e := range s.heap {
		if e.kind == kind {
			return true
		}
	}
	return false
}
