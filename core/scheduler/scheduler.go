package scheduler

import (
	"container/heap"
	"sync"
)

// Process is a suspended activity resumed by the Scheduler.
type Process interface {
	Resume(now float64)
}

// ProcessFunc adapts a function to the Process interface.
type ProcessFunc func(now float64)

// Resume implements Process.
func (f ProcessFunc) Resume(now float64) { f(now) }

type event struct {
	at   float64
	seq  uint64
	proc Process
}

// eventHeap orders events by time, then by insertion sequence.
type eventHeap []event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = event{}
	*h = old[0 : n-1]
	return x
}

// Scheduler is a logical clock with a time-ordered queue of pending
// resumptions. The queue is guarded so processes may schedule from any
// goroutine, but resumptions themselves run one at a time.
type Scheduler struct {
	mu     sync.Mutex
	now    float64
	seq    uint64
	events eventHeap
}

// New returns a Scheduler with its clock at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulated time in seconds.
func (s *Scheduler) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After schedules p to resume once delay simulated seconds have elapsed.
// Negative delays are treated as zero.
func (s *Scheduler) After(delay float64, p Process) {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(s.now+delay, p)
}

// At schedules p to resume at the absolute time t, or now if t is in the past.
func (s *Scheduler) At(t float64, p Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t < s.now {
		t = s.now
	}
	s.push(t, p)
}

func (s *Scheduler) push(at float64, p Process) {
	s.seq++
	heap.Push(&s.events, event{at: at, seq: s.seq, proc: p})
}

// Pending returns the number of queued resumptions.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// RunUntil executes pending resumptions in order until the queue is empty or
// the next one lies beyond end. In the latter case the clock is advanced to
// end. It returns the number of resumptions executed.
func (s *Scheduler) RunUntil(end float64) int {
	executed := 0
	for {
		s.mu.Lock()
		if len(s.events) == 0 {
			s.mu.Unlock()
			return executed
		}
		if s.events[0].at > end {
			if end > s.now {
				s.now = end
			}
			s.mu.Unlock()
			return executed
		}
		ev := heap.Pop(&s.events).(event)
		s.now = ev.at
		s.mu.Unlock()

		ev.proc.Resume(ev.at)
		executed++
	}
}
