package scheduler

import (
	"container/heap"

	"github.com/ostepan8/scheduled/internal/task"
)

// taskHeap is a min-heap of ScheduledTask ordered by event Time, following
// the same container/heap.Interface shape as a Nagios-style check-event
// queue: Less compares the scheduled instant, Swap keeps each element's
// queue index current for any future positional lookups.
type taskHeap struct {
	items []*task.ScheduledTask
	index map[string]int
}

func newTaskHeap() *taskHeap {
	return &taskHeap{index: make(map[string]int)}
}

func (h *taskHeap) Len() int { return len(h.items) }

func (h *taskHeap) Less(i, j int) bool {
	return h.items[i].Time.Before(h.items[j].Time)
}

func (h *taskHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].ID] = i
	h.index[h.items[j].ID] = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task.ScheduledTask)
	h.index[t.ID] = len(h.items)
	h.items = append(h.items, t)
}

func (h *taskHeap) Pop() any {
	old := h.items
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	delete(h.index, t.ID)
	return t
}

var _ heap.Interface = (*taskHeap)(nil)
