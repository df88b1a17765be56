package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Virtual is a manually advanced Scheduler. Callbacks only run inside
// Advance or RunUntilIdle, ordered by due time and then by scheduling order.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue timerQueue
}

func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTimer{owner: v, due: v.now.Add(d), seq: v.seq, fn: fn}
	heap.Push(&v.queue, t)
	return t
}

// Advance moves virtual time forward by d and runs every callback that
// becomes due, including ones scheduled while advancing. It returns the
// number of callbacks run.
func (v *Virtual) Advance(d time.Duration) int {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()
	return v.runUntil(target)
}

// RunUntilIdle advances time until no callbacks remain.
func (v *Virtual) RunUntilIdle() int {
	ran := 0
	for {
		v.mu.Lock()
		if len(v.queue) == 0 {
			v.mu.Unlock()
			return ran
		}
		next := v.queue[0].due
		v.mu.Unlock()
		ran += v.runUntil(next)
	}
}

// Pending reports how many callbacks are waiting to run.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}

func (v *Virtual) runUntil(target time.Time) int {
	ran := 0
	for {
		v.mu.Lock()
		if len(v.queue) == 0 || v.queue[0].due.After(target) {
			if target.After(v.now) {
				v.now = target
			}
			v.mu.Unlock()
			return ran
		}
		t := heap.Pop(&v.queue).(*virtualTimer)
		if t.due.After(v.now) {
			v.now = t.due
		}
		v.mu.Unlock()

		t.fn()
		ran++
	}
}

type virtualTimer struct {
	owner *Virtual
	due   time.Time
	seq   uint64
	fn    func()
	index int
}

func (t *virtualTimer) Stop() bool {
	v := t.owner
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.index < 0 || t.index >= len(v.queue) || v.queue[t.index] != t {
		return false
	}
	heap.Remove(&v.queue, t.index)
	return true
}

type timerQueue []*virtualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*virtualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
