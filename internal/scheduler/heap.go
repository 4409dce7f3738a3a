package scheduler

import "container/heap"

// eventHeap implements container/heap.Interface, earliest TriggerAt first.
type eventHeap []Event

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapUpsert queues e, replacing any queued event with the same key.
func heapUpsert(h *eventHeap, e Event) {
	heapRemoveByKey(h, e.Key)
	heap.Push(h, e)
}

// heapPop removes and returns the earliest event. Panics if h is empty.
func heapPop(h *eventHeap) Event {
	return heap.Pop(h).(Event)
}

// heapRemoveByKey reports whether an event with key was queued and removed.
func heapRemoveByKey(h *eventHeap, key string) bool {
	for i, e := range *h {
		if e.Key == key {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
